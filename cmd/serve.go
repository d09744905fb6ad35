package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"example.com/fleetcontrol/config"
	"example.com/fleetcontrol/internal/api"
	"example.com/fleetcontrol/internal/api/handlers"
	"example.com/fleetcontrol/internal/cache"
	"example.com/fleetcontrol/internal/metrics"
	"example.com/fleetcontrol/internal/remote"
	"example.com/fleetcontrol/internal/store"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fleet view server",
	Long:  `Start the HTTP server that reconciles the vehicle and trip collections with the remote fleet API and serves their views`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
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

	// Initialize the snapshot cache
	snapshots, err := cache.NewSnapshotCache(cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize snapshot cache, continuing without warm start")
		snapshots = nil
	}
	defer snapshots.Close()

	// Initialize metrics
	metricsCollector := metrics.NewMetrics()

	// Initialize the upstream client and the stores
	client := remote.NewClient(cfg.Upstream)
	vehicles := store.NewVehicleStore(client, snapshots, metricsCollector)
	events := store.NewEventLogStore(client, snapshots, metricsCollector)

	// Warm-start from snapshots, then load server truth. A failed initial
	// fetch is not fatal: the stores keep their error state and the refresh
	// worker retries.
	vehicles.Hydrate(ctx)
	events.Hydrate(ctx)
	if err := vehicles.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial vehicle fetch failed")
	}
	if err := events.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial event fetch failed")
	}

	server := api.NewServer(cfg,
		handlers.NewVehiclesHandler(vehicles),
		handlers.NewTripsHandler(events),
		handlers.NewMetricsHandler(metricsCollector),
	)

	// Create an error group to manage goroutines
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start()
	})

	// Periodic refresh keeps the cached collections tracking server truth
	// even without user mutations.
	if cfg.Refresh.Enabled {
		g.Go(func() error {
			log.Info().Dur("interval", cfg.Refresh.Interval).Msg("Starting store refresh job")

			scheduler, err := gocron.NewScheduler()
			if err != nil {
				return err
			}

			_, err = scheduler.NewJob(
				gocron.DurationJob(cfg.Refresh.Interval),
				gocron.NewTask(func() {
					if err := vehicles.Refresh(ctx); err != nil {
						log.Error().Err(err).Msg("Vehicle refresh failed")
					}
					if err := events.Refresh(ctx); err != nil {
						log.Error().Err(err).Msg("Event refresh failed")
					}
				}),
			)
			if err != nil {
				return err
			}

			scheduler.Start()

			<-ctx.Done()

			return scheduler.Shutdown()
		})
	}

	// Shut the HTTP server down once the context is cancelled
	g.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server error")
		return err
	}

	log.Info().Msg("Server stopped")
	return nil
}
