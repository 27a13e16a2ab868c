package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dog-meal-planner/internal/domain/nutrition"
)

// -------------------------
// Fixtures
// -------------------------

func writeJSONFile(t *testing.T, dir, name string, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func inputFiles(t *testing.T) (profile, energy string) {
	t.Helper()
	dir := t.TempDir()
	profile = writeJSONFile(t, dir, "profile.json", map[string]any{
		"weight_kg":         20,
		"bcs":               5,
		"age_months":        36,
		"breed_size":        "medium",
		"neuter_status":     "neutered",
		"sex":               "female",
		"activity_level":    "moderate",
		"known_allergies":   []string{},
		"health_conditions": []string{"kidney_disease"},
	})
	energy = writeJSONFile(t, dir, "energy.json", map[string]any{
		"daily_kcal":           1000,
		"ideal_body_weight_kg": 20,
		"life_stage":           "adult",
		"weight_goal":          "maintain",
	})
	return profile, energy
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// -------------------------
// Tests
// -------------------------

func TestResolve_PrintsConstraints(t *testing.T) {
	profile, energy := inputFiles(t)

	out, err := runCmd(t, "resolve", "--profile", profile, "--energy", energy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var c nutrition.RecipeConstraints
	if err := json.Unmarshal([]byte(out), &c); err != nil {
		t.Fatalf("expected JSON constraints, got %q: %v", out, err)
	}
	if !c.VetReferralTriggered {
		t.Fatalf("kidney disease must trigger vet referral")
	}
	if len(c.AppliedOverrides) != 1 || c.AppliedOverrides[0] != "kidney_disease" {
		t.Fatalf("unexpected overrides %v", c.AppliedOverrides)
	}
}

func TestResolve_InvalidProfile(t *testing.T) {
	dir := t.TempDir()
	profile := writeJSONFile(t, dir, "profile.json", map[string]any{"weight_kg": 0})
	_, energy := inputFiles(t)

	_, err := runCmd(t, "resolve", "--profile", profile, "--energy", energy)
	if !errors.Is(err, nutrition.ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
}

func TestResolve_RequiresFlags(t *testing.T) {
	if _, err := runCmd(t, "resolve"); err == nil {
		t.Fatalf("expected error without --profile/--energy")
	}
}

func TestPrompt_RendersBlock(t *testing.T) {
	profile, energy := inputFiles(t)

	out, err := runCmd(t, "prompt", "--profile", profile, "--energy", energy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<canine-recipe-constraints>") {
		t.Fatalf("unexpected prompt output %q", out)
	}
}

func TestValidate_RejectedRecipeReturnsErrRejected(t *testing.T) {
	profile, energy := inputFiles(t)
	recipe := writeJSONFile(t, t.TempDir(), "recipe.json", map[string]any{
		"recipe_name": "Beef with onions",
		"total_kcal":  1000,
		"ingredients": []map[string]any{
			{"name": "lean beef", "weight_g": 400, "nutrients": map[string]float64{"protein": 60, "fat": 20}},
			{"name": "onion", "weight_g": 30, "nutrients": map[string]float64{}},
		},
	})

	out, err := runCmd(t, "validate", "--profile", profile, "--energy", energy, "--recipe", recipe)
	if !errors.Is(err, errRejected) {
		t.Fatalf("expected errRejected, got %v", err)
	}

	var got validateOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("expected JSON report, got %q: %v", out, err)
	}
	if got.Accepted {
		t.Fatalf("recipe with onion must be rejected")
	}
	found := false
	for _, r := range got.Results {
		if r.RuleID == nutrition.RuleToxin {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected %s finding, got %+v", nutrition.RuleToxin, got.Results)
	}
}

func TestRules_ListsStructuralRules(t *testing.T) {
	out, err := runCmd(t, "rules")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var rules []nutrition.StructuralRule
	if err := json.Unmarshal([]byte(out), &rules); err != nil {
		t.Fatalf("decode rules: %v", err)
	}
	if len(rules) != len(nutrition.DefaultTables().Rules) {
		t.Fatalf("expected %d rules, got %d", len(nutrition.DefaultTables().Rules), len(rules))
	}
}

func TestRules_RendersCustomTables(t *testing.T) {
	b, err := os.ReadFile(filepath.Join("..", "..", "internal", "domain", "nutrition", "tables", "canine_v1.yaml"))
	if err != nil {
		t.Fatalf("read tables: %v", err)
	}
	doc := strings.Replace(string(b), "max_single_ingredient_pct: 50", "max_single_ingredient_pct: 45", 1)
	path := filepath.Join(t.TempDir(), "tables.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write tables: %v", err)
	}

	out, err := runCmd(t, "rules", "--tables", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var rules []nutrition.StructuralRule
	if err := json.Unmarshal([]byte(out), &rules); err != nil {
		t.Fatalf("decode rules: %v", err)
	}
	if rules[0].RuleID != nutrition.RuleSingleIngredientShare || rules[0].Prompt != "No single ingredient may exceed 45% of recipe weight." {
		t.Fatalf("unexpected first rule %+v", rules[0])
	}
}

func TestVersion(t *testing.T) {
	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, Version) {
		t.Fatalf("unexpected version output %q", out)
	}
}
