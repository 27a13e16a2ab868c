// mealcheck resuelve targets y audita recetas desde archivos JSON, sin levantar
// el servidor. Pensado para pipelines offline y debugging de tablas.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"dog-meal-planner/internal/domain/nutrition"
	"dog-meal-planner/internal/platform/logger"

	"github.com/spf13/cobra"
)

const (
	appName = "mealcheck"
	Version = "0.1.0"
)

// errRejected => exit code 2 (la receta tiene al menos un BLOCK).
var errRejected = errors.New("recipe rejected")

func main() {
	err := newRootCmd().Execute()
	switch {
	case err == nil:
	case errors.Is(err, errRejected):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootFlags struct {
	tablesPath string
	precedence string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Resolve canine nutrient targets and audit candidate recipes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&f.tablesPath, "tables", "", "Reference tables YAML (default: embedded tables)")
	cmd.PersistentFlags().StringVar(&f.precedence, "precedence", string(nutrition.PrecedenceScanOrder), "Override precedence (scan_order, most_restrictive)")
	cmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newResolveCmd(&f),
		newPromptCmd(&f),
		newValidateCmd(&f),
		newRulesCmd(&f),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

type inputFlags struct {
	profilePath string
	energyPath  string
}

func (in *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&in.profilePath, "profile", "", "Dog profile JSON file")
	cmd.Flags().StringVar(&in.energyPath, "energy", "", "Energy context JSON file")
	_ = cmd.MarkFlagRequired("profile")
	_ = cmd.MarkFlagRequired("energy")
}

func newResolveCmd(f *rootFlags) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the resolved recipe constraints as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolve(cmd, f, in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		},
	}
	in.register(cmd)
	return cmd
}

func newPromptCmd(f *rootFlags) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the constraints block for the recipe generator",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolve(cmd, f, in)
			if err != nil {
				return err
			}
			out, err := nutrition.RenderPromptConstraints(c)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	in.register(cmd)
	return cmd
}

type validateOutput struct {
	Accepted bool                         `json:"accepted"`
	Gaps     []string                     `json:"gaps"`
	Results  []nutrition.ValidationResult `json:"results"`
}

func newValidateCmd(f *rootFlags) *cobra.Command {
	var (
		in         inputFlags
		recipePath string
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Audit a candidate recipe against the resolved constraints (exit 2 if rejected)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var recipe nutrition.CandidateRecipe
			if err := readJSON(recipePath, &recipe); err != nil {
				return err
			}
			if err := nutrition.ValidateRecipe(recipe); err != nil {
				return err
			}

			tables, err := loadTables(f.tablesPath)
			if err != nil {
				return err
			}
			c, err := resolveWith(cmd, f, in, tables)
			if err != nil {
				return err
			}

			v := nutrition.NewValidator(tables)
			results := v.Validate(recipe, c)
			results = append(results, v.ScanClaims(recipe.Name+"\n"+recipe.Description)...)

			out := validateOutput{
				Accepted: nutrition.Accepted(results),
				Gaps:     nutrition.Gaps(results),
				Results:  results,
			}
			if out.Gaps == nil {
				out.Gaps = []string{}
			}
			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if !out.Accepted {
				return errRejected
			}
			return nil
		},
	}
	in.register(cmd)
	cmd.Flags().StringVar(&recipePath, "recipe", "", "Candidate recipe JSON file")
	_ = cmd.MarkFlagRequired("recipe")
	return cmd
}

func newRulesCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the structural rules and how each one is enforced",
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := loadTables(f.tablesPath)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tables.StructuralRules())
		},
	}
}

func resolve(cmd *cobra.Command, f *rootFlags, in inputFlags) (nutrition.RecipeConstraints, error) {
	tables, err := loadTables(f.tablesPath)
	if err != nil {
		return nutrition.RecipeConstraints{}, err
	}
	return resolveWith(cmd, f, in, tables)
}

func resolveWith(cmd *cobra.Command, f *rootFlags, in inputFlags, tables *nutrition.ReferenceTables) (nutrition.RecipeConstraints, error) {
	var (
		p nutrition.DogProfile
		e nutrition.EnergyContext
	)
	if err := readJSON(in.profilePath, &p); err != nil {
		return nutrition.RecipeConstraints{}, err
	}
	if err := readJSON(in.energyPath, &e); err != nil {
		return nutrition.RecipeConstraints{}, err
	}
	if err := nutrition.ValidateInput(p, e); err != nil {
		return nutrition.RecipeConstraints{}, err
	}

	precedence, err := nutrition.ParsePrecedence(f.precedence)
	if err != nil {
		return nutrition.RecipeConstraints{}, err
	}

	c := nutrition.NewResolver(tables, precedence).Resolve(p, e)

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(f.logLevel),
		App:    appName,
		Output: cmd.ErrOrStderr(),
	})
	log.Debug("constraints resolved", map[string]any{
		"tables_version": tables.Version,
		"precedence":     string(precedence),
		"overrides":      c.AppliedOverrides,
		"vet_referral":   c.VetReferralTriggered,
	})
	return c, nil
}

func loadTables(path string) (*nutrition.ReferenceTables, error) {
	if path == "" {
		return nutrition.DefaultTables(), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tables: %w", err)
	}
	defer fh.Close()
	return nutrition.LoadTables(fh)
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
