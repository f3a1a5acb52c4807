package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gocleanse/app"
	"gocleanse/internal/config"
	"gocleanse/internal/logging"
)

func main() {
	// a missing .env file is fine, the environment is used as-is
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliState is built once per invocation before any subcommand runs
type cliState struct {
	cfg     *config.Config
	service *app.CleaningService
	close   func() error
	logger  *slog.Logger
}

func (s *cliState) init(ctx context.Context, logLevel string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	s.cfg = cfg
	s.logger = logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	svc, closeFn, err := app.NewFromConfig(ctx, cfg, s.logger)
	if err != nil {
		return err
	}
	s.service = svc
	s.close = closeFn
	return nil
}

func (s *cliState) shutdown() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func newRootCmd() *cobra.Command {
	state := &cliState{}
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "gocleanse",
		Short: "Profile, clean and encode tabular data",
		Long: `gocleanse loads CSV, JSON, Excel or SQL tables, profiles them and applies
cleaning operations: format normalization, missing value handling, duplicate
removal, outlier remediation and categorical encoding.

Settings are read from the environment (and a .env file when present).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.init(cmd.Context(), logLevel)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return state.shutdown()
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug|info|warn|error)")

	rootCmd.AddCommand(
		newProfileCmd(state),
		newHeadCmd(state),
		newSampleCmd(state),
		newNormalizeCmd(state),
		newMissingCmd(state),
		newDedupeCmd(state),
		newOutliersCmd(state),
		newEncodeCmd(state),
		newDecodeCmd(state),
		newCorrelationCmd(state),
		newSampleSizeCmd(state),
		newExportCmd(state),
		newCleanCmd(state),
		newLookupCmd(state),
	)
	return rootCmd
}
