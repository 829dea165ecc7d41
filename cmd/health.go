package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/fixturegen/introspect"
	"github.com/ridoystarlord/fixturegen/store"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database connectivity",
	Long: `Check if the database is accessible and responsive.

Examples:
  fixturegen health                    # Check default database connection
  fixturegen health --timeout 10s      # Set custom timeout
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkDatabaseHealth(); err != nil {
			fmt.Printf("❌ Database health check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Database is healthy and accessible")
	},
}

var healthTimeout time.Duration

func init() {
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 5*time.Second, "Timeout for health check")
}

func checkDatabaseHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	conn, dialect, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}
	fmt.Printf("🔌 Connected (%s)\n", dialect)

	pg, ok := conn.(*store.PgStore)
	if !ok {
		return nil
	}
	tables, err := introspect.IntrospectDatabase(ctx, pg.Pool())
	if err != nil {
		return fmt.Errorf("failed to list tables: %v", err)
	}
	fmt.Printf("📊 Found %d table(s) in the public schema\n", len(tables))
	return nil
}
