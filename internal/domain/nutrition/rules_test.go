package nutrition

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStructuralRules_EnforcementSplit(t *testing.T) {
	tables := DefaultTables()
	wantValidator := []string{
		"SR-001", "SR-005", "SR-007", "SR-008", "SR-009",
		"SR-010", "SR-011", "SR-012", "SR-013", "SR-014",
	}
	wantPrompt := []string{"SR-002", "SR-003", "SR-004", "SR-006"}

	if diff := cmp.Diff(wantValidator, tables.MechanicallyChecked()); diff != "" {
		t.Fatalf("validator rules mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantPrompt, tables.PromptOnly()); diff != "" {
		t.Fatalf("prompt rules mismatch (-want +got):\n%s", diff)
	}
}

func TestStructuralRules_ReturnsCopy(t *testing.T) {
	tables := DefaultTables()
	rules := tables.StructuralRules()
	if len(rules) != 14 {
		t.Fatalf("expected 14 rules, got %d", len(rules))
	}
	rules[0].Severity = SeverityInfo

	if tables.StructuralRules()[0].Severity != SeverityBlock {
		t.Fatalf("catalogue mutated through returned slice")
	}
}

func TestStructuralRules_AdvisoryRulesAreWarn(t *testing.T) {
	for _, r := range DefaultTables().StructuralRules() {
		switch r.RuleID {
		case RuleMaxIngredients, RuleMicroCompleteness, RuleMealWeight:
			if r.Severity != SeverityWarn {
				t.Fatalf("%s should be WARN, got %s", r.RuleID, r.Severity)
			}
		default:
			if r.Severity != SeverityBlock {
				t.Fatalf("%s should be BLOCK, got %s", r.RuleID, r.Severity)
			}
		}
		if !strings.HasPrefix(r.RuleID, "SR-") {
			t.Fatalf("unexpected rule id %q", r.RuleID)
		}
	}
}

func TestStructuralRules_TextsFollowLimits(t *testing.T) {
	tables := DefaultTables()
	tables.Limits.MaxSingleIngredientPct = 40
	tables.Limits.MaxIngredients = 10
	tables.RestrictedIngredients[0].MaxPctByWeight = 3

	byID := make(map[string]StructuralRule)
	for _, r := range tables.StructuralRules() {
		byID[r.RuleID] = r
	}

	if got := byID[RuleSingleIngredientShare].Prompt; got != "No single ingredient may exceed 40% of recipe weight." {
		t.Fatalf("unexpected SR-001 prompt %q", got)
	}
	if got := byID[RuleSingleIngredientShare].Check; !strings.Contains(got, "<= 40") {
		t.Fatalf("unexpected SR-001 check %q", got)
	}
	if got := byID[RuleMaxIngredients].Description; !strings.HasPrefix(got, "Maximum 10 ingredients") {
		t.Fatalf("unexpected SR-005 description %q", got)
	}
	if got := byID[RuleRestrictedCap].Prompt; !strings.Contains(got, "liver 3%") {
		t.Fatalf("SR-008 prompt should carry the liver cap: %q", got)
	}
	if strings.Contains(byID[RuleRestrictedCap].Prompt, "{{") {
		t.Fatalf("template not expanded: %q", byID[RuleRestrictedCap].Prompt)
	}
}

func TestStructuralRules_PromptOnlyRulesAreNotAudited(t *testing.T) {
	tables := DefaultTables()
	for i := range tables.Rules {
		if tables.Rules[i].RuleID == RuleMaxIngredients {
			tables.Rules[i].Enforcement = EnforcedByPrompt
		}
	}
	if tables.enforces(RuleMaxIngredients) {
		t.Fatalf("SR-005 should no longer be enforced by the validator")
	}
	if !tables.enforces(RuleToxin) {
		t.Fatalf("SR-012 must stay enforced")
	}
	if tables.enforces("SR-099") {
		t.Fatalf("unknown rules are never enforced")
	}
}
