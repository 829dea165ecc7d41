package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/fixturegen/config"
	"github.com/ridoystarlord/fixturegen/database"
	"github.com/ridoystarlord/fixturegen/loader"
	"github.com/ridoystarlord/fixturegen/schema"
	"github.com/ridoystarlord/fixturegen/store"
	"github.com/ridoystarlord/fixturegen/utils"
)

var (
	configFile    string
	modelsSource  string
	databaseURL   string
	seedFlag      int64
	toleranceFlag int
	defaultFactor float64
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "fixturegen",
	Short: "Constraint-aware fixture data for your models",
	Long: `fixturegen builds records whose values respect each field's declared
length, range, choices, defaults and uniqueness, then prints them or
inserts them into a database.

Examples:

  fixturegen init
  fixturegen generate --count 5
  fixturegen seed User --count 100
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.LoadEnv()
		utils.SetVerbose(verbose)
	},
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "fixturegen.yaml", "Generation config file")
	flags.StringVarP(&modelsSource, "models", "m", "fixtures.yaml", "Model definitions: a YAML file or a directory of Go structs")
	flags.StringVar(&databaseURL, "url", "", "Database URL (defaults to DATABASE_URL)")
	flags.Int64Var(&seedFlag, "seed", 0, "Random seed (0 picks one from the clock)")
	flags.IntVar(&toleranceFlag, "tolerance", 0, "Retries allowed per unique field")
	flags.Float64Var(&defaultFactor, "default-factor", 1, "Probability that a field with a default receives it")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log how every value was produced")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(introspectCmd)
	rootCmd.AddCommand(healthCmd)
}

// loadConfig reads the config file when present and applies the flags that
// were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(configFile); err == nil {
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, err
		}
		utils.Debugf("loaded generation config from %s", configFile)
	} else if cmd.Flags().Changed("config") {
		return nil, fmt.Errorf("config file %s: %w", configFile, err)
	}

	flags := cmd.Flags()
	cfg = cfg.With(func(c *config.Config) {
		if flags.Changed("seed") {
			c.Seed = seedFlag
		}
		if flags.Changed("tolerance") {
			c.Tolerance = toleranceFlag
		}
		if flags.Changed("default-factor") {
			c.DefaultValueFactor = defaultFactor
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadModels reads the model source and keeps the models named in args.
func loadModels(args []string) ([]schema.Model, error) {
	models, err := loader.Load(modelsSource)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, fmt.Errorf("no models found in %s", modelsSource)
	}
	return loader.Select(models, args)
}

func openDatabase(ctx context.Context) (database.Conn, store.Dialect, error) {
	url := databaseURL
	if url == "" {
		url = utils.GetDatabaseURL()
	}
	if url == "" {
		return nil, "", fmt.Errorf("no database URL: set DATABASE_URL or pass --url")
	}
	return database.Open(ctx, url)
}

// parseSets turns repeated field=value flags into a map.
func parseSets(sets []string) (map[string]string, error) {
	out := make(map[string]string, len(sets))
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q, expected field=value", s)
		}
		out[name] = value
	}
	return out, nil
}
