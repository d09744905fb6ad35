package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"example.com/fleetcontrol/config"
	"example.com/fleetcontrol/internal/upstream"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var upstreamAddress string

var upstreamCmd = &cobra.Command{
	Use:   "upstream",
	Short: "Start the development fleet API",
	Long:  `Start a local Postgres-backed implementation of the remote fleet API for development use`,
	RunE:  runUpstream,
}

func init() {
	upstreamCmd.Flags().StringVar(&upstreamAddress, "address", "0.0.0.0:8081", "listen address for the dev API")
	rootCmd.AddCommand(upstreamCmd)
}

func runUpstream(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	// Configure logging
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	server, err := upstream.NewServer(cfg, upstreamAddress)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start()
	})

	g.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Dev API server error")
		return err
	}

	log.Info().Msg("Dev API server stopped")
	return nil
}
