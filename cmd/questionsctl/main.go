package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"questions-service/infrastructure/config"
	"questions-service/infrastructure/di"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

// app carries what every subcommand needs, loaded once before it runs
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "questionsctl",
		Short:         "Operate the questions service: schema migrations and cache maintenance",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before the environment is read")

	load := func(cmd *cobra.Command, _ []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		level, err := di.ProvideLogLevel(cfg)
		if err != nil {
			return err
		}
		logger, err := di.ProvideLogger(cfg, level)
		if err != nil {
			return err
		}
		a.cfg, a.logger = cfg, logger
		return nil
	}

	rootCmd.AddCommand(migrateCmd(a, load))
	rootCmd.AddCommand(cacheCmd(a, load))
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the questionsctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
