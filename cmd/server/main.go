package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aetheris-health/aetheris/internal/api"
	"github.com/aetheris-health/aetheris/internal/api/health"
	"github.com/aetheris-health/aetheris/internal/interactions"
	"github.com/aetheris-health/aetheris/internal/metrics"
	"github.com/aetheris-health/aetheris/internal/reports"
	"github.com/aetheris-health/aetheris/internal/storage"
	"github.com/aetheris-health/aetheris/internal/stream"
	"github.com/aetheris-health/aetheris/internal/vitals"
	"github.com/aetheris-health/aetheris/pkg/config"
)

var (
	configFile string
	httpAddr   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "aetheris-server",
	Short: "Aetheris Server - Perioperative monitoring backend",
	Long: `Aetheris Server streams intraoperative vitals, classifies them
against clinical thresholds, manages the alert lifecycle, and runs the
pre-op and post-op assessment pipelines.`,
	RunE: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("aetheris-server %s\n", config.Version)
		fmt.Printf("  commit: %s\n", config.Commit)
		fmt.Printf("  built:  %s\n", config.BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVarP(&httpAddr, "address", "a", "", "HTTP listen address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	var cfg *Config

	// Load configuration from file if provided
	if configFile != "" {
		var err error
		cfg, err = LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = DefaultConfig()
	}

	// Override with CLI flags
	if httpAddr != "" {
		cfg.Server.HTTPAddress = httpAddr
	}
	cfg.Verbose = verbose

	// Initialize storage
	var store storage.Storage
	var sqliteStore *storage.SQLiteStorage
	switch cfg.Database.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o750); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
		sqliteStore = storage.NewSQLiteStorage(cfg.Database.Path)
		store = sqliteStore
	default:
		store = storage.NewMemoryStorage()
	}

	if err := store.Open(); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	if err := store.SeedDemoPatients(); err != nil {
		return fmt.Errorf("seed demo patients: %w", err)
	}

	log.Printf("storage initialized (driver=%s)", cfg.Database.Driver)

	// Threshold profiles, hot-reloaded when a file is configured
	registry, err := vitals.NewRegistry(cfg.Thresholds.File)
	if err != nil {
		return fmt.Errorf("load threshold profiles: %w", err)
	}

	history := storage.NewHistoryStore(cfg.Stream.HistoryCapacity)

	seed := cfg.Stream.SimulatorSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	manager := stream.NewManager(stream.Config{
		Interval:  cfg.Stream.IntervalDuration(),
		QueueSize: cfg.Stream.ObserverQueueSize,
		Source:    vitals.NewSimulator(seed),
		Profiles:  registry,
		Alerts:    store.Alerts(),
		History:   history,
	})

	checker := interactions.NewChecker(cfg.OpenFDA.BaseURL)
	generator := reports.NewGenerator(store, nil)

	apiServer, err := api.New(&api.Config{
		Address:        cfg.Server.HTTPAddress,
		RateLimitPerIP: cfg.Server.RateLimitPerIP,
		Verbose:        cfg.Verbose,
	}, api.Deps{
		Storage:      store,
		History:      history,
		Streams:      manager,
		Profiles:     registry,
		Interactions: checker,
		Reports:      generator,
	})
	if err != nil {
		return fmt.Errorf("create API server: %w", err)
	}

	if sqliteStore != nil {
		apiServer.RegisterHealthChecker(health.CheckerFunc{
			CheckerName: "database",
			Fn: func(ctx context.Context) error {
				return sqliteStore.DB().PingContext(ctx)
			},
		})
	}

	metricsServer := metrics.NewServer(cfg.Server.MetricsAddress)

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	log.Printf("starting aetheris-server %s", config.Version)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return apiServer.Run(gctx)
	})

	g.Go(metricsServer.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if cfg.Thresholds.File != "" {
		g.Go(func() error {
			if err := registry.Watch(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	log.Printf("server stopped")
	return nil
}
