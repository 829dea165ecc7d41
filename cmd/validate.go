package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/fixturegen/introspect"
	"github.com/ridoystarlord/fixturegen/schema"
	"github.com/ridoystarlord/fixturegen/store"
	"github.com/ridoystarlord/fixturegen/synth"
	"github.com/ridoystarlord/fixturegen/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [model...]",
	Short: "Check model definitions before generating",
	Long: `Check your model definitions against what the generator can produce.

This command reports:
- Invalid or duplicate model and field names
- Types with no synthesis strategy in the generation config
- Inverted or negative length and value bounds
- Defaults that are not among the field's choices
- Unique fields that can only hold a few distinct values

With --db it also checks that every model's table exists (Postgres only).

Examples:
  fixturegen validate                     # Validate fixtures.yaml
  fixturegen validate -m models/          # Validate tagged Go structs
  fixturegen validate --format json       # Output validation results as JSON
  fixturegen validate --db                # Also check the database tables
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := validateModels(cmd, args); err != nil {
			fmt.Printf("❌ Model validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var (
	validateFormat string
	validateWithDB bool
)

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
	validateCmd.Flags().BoolVar(&validateWithDB, "db", false, "Also check that the tables exist in the database")
}

func validateModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	models, err := loadModels(args)
	if err != nil {
		return err
	}
	s, err := synth.New(cfg)
	if err != nil {
		return err
	}

	result := validator.ValidateModels(models, s)
	if validateWithDB {
		if err := checkTables(models, result); err != nil {
			return err
		}
	}

	if validateFormat == "json" {
		if err := outputJSON(result); err != nil {
			return err
		}
	} else {
		outputText(result)
	}
	if !result.Valid {
		os.Exit(1)
	}
	return nil
}

func checkTables(models []schema.Model, result *validator.ValidationResult) error {
	ctx := context.Background()
	conn, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	pg, ok := conn.(*store.PgStore)
	if !ok {
		return fmt.Errorf("table checks need a Postgres database")
	}
	tables, err := introspect.IntrospectDatabase(ctx, pg.Pool())
	if err != nil {
		return err
	}
	existing := make(map[string]bool, len(tables))
	for _, t := range tables {
		existing[t.TableName] = true
	}
	validator.CheckTables(models, existing, result)
	return nil
}

func outputJSON(result *validator.ValidationResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputText(result *validator.ValidationResult) {
	if result.Valid {
		color.Green("✅ Model validation passed!")
	} else {
		color.Red("❌ Model validation failed!")
	}

	printFindings("\n🔴 Errors (%d):\n", result.Errors)
	printFindings("\n🟡 Warnings (%d):\n", result.Warnings)
	printFindings("\n🔵 Info (%d):\n", result.Info)

	fmt.Printf("\n📊 Summary:\n")
	fmt.Printf("  • Errors: %d\n", len(result.Errors))
	fmt.Printf("  • Warnings: %d\n", len(result.Warnings))
	fmt.Printf("  • Info: %d\n", len(result.Info))

	if result.Valid {
		fmt.Printf("\n🎉 Your models are ready for generation!\n")
	} else {
		fmt.Printf("\n💡 Fix the errors above before generating records.\n")
	}
}

func printFindings(header string, findings []validator.ValidationError) {
	if len(findings) == 0 {
		return
	}
	fmt.Printf(header, len(findings))
	for i, f := range findings {
		fmt.Printf("  %d. ", i+1)
		if f.Model != "" {
			fmt.Printf("[%s]", f.Model)
		}
		if f.Field != "" {
			fmt.Printf(".%s", f.Field)
		}
		fmt.Printf(": %s\n", f.Message)
	}
}
