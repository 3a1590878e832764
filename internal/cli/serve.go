package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pfrederiksen/refsched/internal/access"
	"github.com/pfrederiksen/refsched/internal/crypto"
	"github.com/pfrederiksen/refsched/internal/logger"
	"github.com/pfrederiksen/refsched/internal/metrics"
	"github.com/pfrederiksen/refsched/internal/server"
	"github.com/spf13/cobra"
)

var (
	flagAddr    string
	flagOrigins []string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schedule HTTP API",
		RunE:  runServe,
	}

	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides the addr setting)")
	cmd.Flags().StringSliceVar(&flagOrigins, "allow-origin", nil, "CORS origin allowed to call the API (repeatable)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd.Context(), true)
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}

	m := metrics.New()
	svc, err := newService(cfg, m)
	if err != nil {
		return err
	}

	hasher := crypto.NewHasher(crypto.DefaultParams)
	authorizer, err := access.New(cfg, hasher)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Addr:           cfg.Addr,
		Schedules:      svc,
		Access:         authorizer,
		Hasher:         hasher,
		Metrics:        m,
		LeagueNames:    cfg.LeagueNames,
		AllowedOrigins: flagOrigins,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting API server", logger.Fields{
		"addr":   cfg.Addr,
		"users":  len(cfg.Users),
		"groups": len(cfg.Groups),
	})
	return srv.Run(ctx)
}
