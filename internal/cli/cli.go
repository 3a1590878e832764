package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pfrederiksen/refsched/internal/config"
	"github.com/pfrederiksen/refsched/internal/logger"
	"github.com/pfrederiksen/refsched/internal/metrics"
	"github.com/pfrederiksen/refsched/internal/portal"
	"github.com/pfrederiksen/refsched/internal/schedule"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitChanges = 2
)

var (
	flagConfig  string
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refsched",
		Short: "Show referee assignments from the DFBnet portal",
		Long: `A CLI tool to show upcoming referee assignments.
Logs in to the DFBnet assignment portal, searches the requested referees
and prints their matches grouped by referee or by date.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file (default $REFSCHED_CONFIG)")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newShowCmd(), newCheckCmd(), newServeCmd(), newHashCmd())

	return cmd
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if errors.Is(err, ErrChangesFound) {
			os.Exit(ExitChanges)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

// setup loads and validates the configuration and installs the default logger.
// requirePortal demands portal credentials.
func setup(ctx context.Context, requirePortal bool) (*config.Config, error) {
	cfg, err := config.Load(ctx, flagConfig)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(requirePortal); err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	return cfg, nil
}

// newService wires the portal client, the shared session and the schedule service
func newService(cfg *config.Config, m *metrics.Metrics) (*schedule.Service, error) {
	opts, err := cfg.Portal.Options(m)
	if err != nil {
		return nil, err
	}

	client, err := portal.New(opts)
	if err != nil {
		return nil, fmt.Errorf("creating portal client: %w", err)
	}

	sessions := portal.NewSessionManager(client, cfg.Portal.Credentials(), cfg.Portal.Staleness, m)
	return schedule.NewService(client, sessions), nil
}
