package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/fixturegen/introspect"
	"github.com/ridoystarlord/fixturegen/loader"
	"github.com/ridoystarlord/fixturegen/store"
)

var introspectOut string

var introspectCmd = &cobra.Command{
	Use:   "introspect [table...]",
	Short: "Write model definitions for the tables of a Postgres database",
	Long: `Read the tables of the public schema and print them as model definitions.

Column types map to semantic types, varchar lengths become max_length,
serial and identity columns are marked auto, and literal column defaults
become field defaults.

Examples:
  fixturegen introspect                   # Print YAML for every table
  fixturegen introspect users -o fixtures.yaml
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runIntrospect(args); err != nil {
			fmt.Println("❌ Introspecting database:", err)
			os.Exit(1)
		}
	},
}

func init() {
	introspectCmd.Flags().StringVarP(&introspectOut, "out", "o", "", "Write the YAML to a file instead of stdout")
}

func runIntrospect(args []string) error {
	ctx := context.Background()
	conn, _, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	pg, ok := conn.(*store.PgStore)
	if !ok {
		return fmt.Errorf("introspection needs a Postgres database")
	}
	models, err := introspect.IntrospectModels(ctx, pg.Pool())
	if err != nil {
		return err
	}
	models, err = loader.Select(models, args)
	if err != nil {
		return err
	}

	data, err := loader.MarshalModelsYAML(models)
	if err != nil {
		return err
	}
	if introspectOut == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(introspectOut, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", introspectOut, err)
	}
	fmt.Printf("✅ Wrote %d model(s) to %s\n", len(models), introspectOut)
	return nil
}
