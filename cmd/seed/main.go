// seed loads states, cities, markets and optionally items/units from YAML.
// Without --file the built-in data set is used. Safe to rerun.
//
// Usage (from backend directory):
//
//	DB_DRIVER=sqlite DB_PATH=pricewatch.db go run ./cmd/seed
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed --file data.yaml
package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"time"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/models"
	"github.com/spf13/cobra"
)

//go:embed seed.yaml
var defaultSeed []byte

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		file    string
		migrate bool
	)
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Seed the pricewatch database",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := defaultSeed
			if file != "" {
				b, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				raw = b
			}
			data, err := models.ParseSeed(raw)
			if err != nil {
				return err
			}

			ctx := context.Background()
			config.ConnectDatabaseWithRetry()
			// cache invalidation only; give up on redis rather than block seeding
			redisCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			config.ConnectRedisWithRetry(redisCtx)
			cancel()
			if migrate {
				if err := models.MigrateTable(); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Start seeding ...")
			summary, err := models.ApplySeed(ctx, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d states, %d cities, %d markets, %d items, %d units\n",
				summary.States, summary.Cities, summary.Markets, summary.Items, summary.Units)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Seed YAML file (default: built-in data set)")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Run AutoMigrate before seeding")
	return cmd
}
