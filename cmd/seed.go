package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/fixturegen/factory"
	"github.com/ridoystarlord/fixturegen/generator"
	"github.com/ridoystarlord/fixturegen/runner"
	"github.com/ridoystarlord/fixturegen/schema"
	"github.com/ridoystarlord/fixturegen/store"
	"github.com/ridoystarlord/fixturegen/utils"
)

var (
	seedCount  int
	seedSets   []string
	dryRunSeed bool
	seedSaveTo string
)

var seedCmd = &cobra.Command{
	Use:   "seed [model...]",
	Short: "Insert generated records into the database",
	Long: `Insert generated records into the database named by DATABASE_URL or --url.

Records are inserted one at a time, so each unique field is checked against
the rows inserted before it. A record the database rejects for a unique
violation is skipped and counted; any other error stops the run.

Examples:
  fixturegen seed --count 50               # 50 records per model
  fixturegen seed User Post -n 10          # Only some models
  fixturegen seed --dry-run                # Print the INSERTs, write nothing
  fixturegen seed --save seeds             # Also keep the INSERTs as .sql files
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSeed(cmd, args); err != nil {
			fmt.Println("❌ Seeding failed:", err)
			os.Exit(1)
		}
	},
}

func init() {
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 10, "Records to insert per model")
	seedCmd.Flags().StringArrayVar(&seedSets, "set", nil, "Fix a field's value, as field=value (repeatable)")
	seedCmd.Flags().BoolVar(&dryRunSeed, "dry-run", false, "Print the SQL that would be executed without inserting")
	seedCmd.Flags().StringVar(&seedSaveTo, "save", "", "Directory to write the inserted rows to as .sql seed files")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	models, err := loadModels(args)
	if err != nil {
		return err
	}
	sets, err := parseSets(seedSets)
	if err != nil {
		return err
	}

	ctx := context.Background()
	conn, dialect, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			utils.Errorf("closing database: %v", cerr)
		}
	}()

	var st store.Store = conn
	if dryRunSeed {
		st = store.NewOverlay(conn)
	}
	f, err := factory.New(cfg, st)
	if err != nil {
		return err
	}

	reports, err := runner.NewSeeder(f, st).SeedAll(ctx, models, seedCount, sets)
	// report what was inserted even when the run stopped early
	for i, r := range reports {
		if dryRunSeed {
			if perr := printSeedSQL(dialect, models[i], r); perr != nil {
				return perr
			}
			continue
		}
		printSeedReport(r)
		if seedSaveTo != "" && len(r.Records) > 0 {
			if serr := saveSeedFile(dialect, models[i], r); serr != nil {
				return serr
			}
		}
	}
	if err != nil {
		return err
	}

	if dryRunSeed {
		fmt.Println("(Dry run only. Nothing was inserted.)")
		return nil
	}
	color.Green("✅ Seeding completed.")
	return nil
}

func reportRecords(r runner.SeedReport) []map[string]any {
	out := make([]map[string]any, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec
	}
	return out
}

func printSeedSQL(dialect store.Dialect, model schema.Model, r runner.SeedReport) error {
	stmts, err := generator.InsertSQL(dialect, model, reportRecords(r))
	if err != nil {
		return err
	}
	fmt.Printf("-- %s (%d record(s))\n", model.Name, len(stmts))
	for _, stmt := range stmts {
		fmt.Println(stmt)
	}
	return nil
}

func printSeedReport(r runner.SeedReport) {
	fmt.Printf("🌱 %s: %d inserted into %s", r.Model, r.Inserted, r.Table)
	if r.Skipped > 0 {
		color.New(color.FgYellow).Printf(", %d skipped on unique violations", r.Skipped)
	}
	if r.Exhausted > 0 {
		color.New(color.FgYellow).Printf(", %d unique field(s) out of retries", r.Exhausted)
	}
	fmt.Println()
}

func saveSeedFile(dialect store.Dialect, model schema.Model, r runner.SeedReport) error {
	stmts, err := generator.InsertSQL(dialect, model, reportRecords(r))
	if err != nil {
		return err
	}
	filename, err := generator.WriteSeedFile(seedSaveTo, model, stmts)
	if err != nil {
		return err
	}
	fmt.Println("📝 Seed file written:", filename)
	return nil
}
