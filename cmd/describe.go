package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/fixturegen/constraint"
	"github.com/ridoystarlord/fixturegen/factory"
	"github.com/ridoystarlord/fixturegen/schema"
	"github.com/ridoystarlord/fixturegen/synth"
)

var describeSample bool

var describeCmd = &cobra.Command{
	Use:   "describe [model...]",
	Short: "Show how each field will be generated",
	Long: `Show the constraints derived from each field and the strategy that
produces its values.

With --sample, one record is built per model and every field shows the
value it got, how it was produced and the parameters passed to the strategy.

Examples:
  fixturegen describe
  fixturegen describe User --sample --seed 42
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := describeModels(cmd, args); err != nil {
			fmt.Println("❌ Describe failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	describeCmd.Flags().BoolVar(&describeSample, "sample", false, "Build one record per model and show how each value was produced")
}

func describeModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	models, err := loadModels(args)
	if err != nil {
		return err
	}
	f, err := factory.New(cfg, nil)
	if err != nil {
		return err
	}

	for _, model := range models {
		color.New(color.Bold).Printf("\n📋 %s", model.Name)
		fmt.Printf(" (table %s)\n", model.TableName())

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  FIELD\tTYPE\tSTRATEGY\tCONSTRAINTS")
		for _, field := range model.Fields {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", field.Name, field.Type,
				fieldStrategy(f.Synthesizer(), field), describeConstraints(field))
		}
		w.Flush()

		if describeSample {
			if err := describeSampleRecord(f, model); err != nil {
				return err
			}
		}
	}
	return nil
}

func fieldStrategy(s *synth.Synthesizer, field schema.Field) string {
	rec := constraint.Extract(field)
	switch {
	case field.Auto:
		return "database"
	case !s.NeedsStrategy(rec) && rec.Default != nil:
		return "default"
	case !s.NeedsStrategy(rec):
		return synth.ChoiceStrategy
	}
	name, err := s.StrategyFor(field.Type)
	if err != nil {
		return color.RedString("unregistered")
	}
	return name
}

func describeConstraints(field schema.Field) string {
	rec := constraint.Extract(field)
	var parts []string
	if field.Primary {
		parts = append(parts, "primary")
	}
	if rec.Unique {
		parts = append(parts, "unique")
	}
	if field.Nullable {
		parts = append(parts, "nullable")
	}
	if rec.MinLength != nil {
		parts = append(parts, fmt.Sprintf("min_length=%d", *rec.MinLength))
	}
	if rec.MaxLength != nil {
		parts = append(parts, fmt.Sprintf("max_length=%d", *rec.MaxLength))
	}
	if rec.MinValue != nil {
		parts = append(parts, fmt.Sprintf("min_value=%v", rec.MinValue))
	}
	if rec.MaxValue != nil {
		parts = append(parts, fmt.Sprintf("max_value=%v", rec.MaxValue))
	}
	if rec.Default != nil {
		parts = append(parts, fmt.Sprintf("default=%v", rec.Default.Value))
	}
	if len(rec.Choices) > 0 {
		vals := make([]string, len(rec.Choices))
		for i, c := range rec.Choices {
			vals[i] = fmt.Sprint(c.Value)
		}
		parts = append(parts, "choices="+strings.Join(vals, "|"))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

func describeSampleRecord(f *factory.Factory, model schema.Model) error {
	rec, traces, err := f.BuildTrace(context.Background(), model, nil)
	if err != nil {
		return err
	}
	fmt.Println("\n  Sample:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  FIELD\tVALUE\tORIGIN\tPARAMS")
	for _, tr := range traces {
		origin := tr.Origin.String()
		if tr.Overridden {
			origin = "override"
		}
		if tr.Retries > 0 {
			origin += fmt.Sprintf(" (%d retries)", tr.Retries)
		}
		params := "-"
		if len(tr.Params) > 0 {
			params = fmt.Sprint(map[string]any(tr.Params))
		}
		fmt.Fprintf(w, "  %s\t%v\t%s\t%s\n", tr.Field, rec[tr.Field], origin, params)
	}
	return w.Flush()
}
