package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"questions-service/infrastructure/persistence/postgres"
)

func migrateCmd(a *app, load func(*cobra.Command, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations to DATABASE_URL",
		Long: `Apply every embedded migration that has not run yet.

Each migration runs in its own transaction and is recorded in
schema_migrations, so running the command twice is safe.`,
		Args:    cobra.NoArgs,
		PreRunE: load,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}

			pool, err := postgres.NewPool(cmd.Context(), postgres.Config{
				URL:      a.cfg.DatabaseURL,
				MaxConns: 1,
			}, a.logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := postgres.Migrate(cmd.Context(), pool, a.logger)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "Schema is up to date")
				return nil
			}
			for _, version := range applied {
				fmt.Fprintf(out, "Applied %s\n", version)
			}
			return nil
		},
	}
}
