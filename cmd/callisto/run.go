package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"fieldstack/callisto/pkg/audit"
	"fieldstack/callisto/pkg/cache"
	"fieldstack/callisto/pkg/cli"
	"fieldstack/callisto/pkg/config"
	"fieldstack/callisto/pkg/governance"
	"fieldstack/callisto/pkg/governance/budget"
	"fieldstack/callisto/pkg/governance/ratelimit"
	"fieldstack/callisto/pkg/registry"
	"fieldstack/callisto/pkg/server"
	"fieldstack/callisto/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Callisto admin server",
	Long: `Start the Callisto governance runtime with the specified configuration.

The server exposes the administrative HTTP API for account status,
provider management, cache control, and audit statistics, and hosts
the governance components that callers embed for admission control.

Examples:
  # Start with default config
  callisto run

  # Start with custom config
  callisto run --config /etc/callisto/config.yaml

  # Override listen address
  callisto run --listen 0.0.0.0:8081

  # Validate config without starting the server
  callisto run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if err := logging.Setup(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	}); err != nil {
		return config.FieldError{Field: "telemetry.logging", Message: err.Error()}
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Callisto v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Rate limiter
	limiter := ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.Governance.RateLimit.RequestsPerSecond,
		BurstCapacity:     cfg.Governance.RateLimit.BurstCapacity,
		SweepInterval:     cfg.Governance.RateLimit.SweepInterval,
		IdleEviction:      cfg.Governance.RateLimit.IdleEviction,
	})
	defer limiter.Close()

	// Cost estimator, with an optional pricing file
	var rates map[string]budget.ModelRate
	if cfg.Pricing.FilePath != "" && !cfg.Pricing.Watch {
		var err error
		rates, err = budget.LoadRates(cfg.Pricing.FilePath)
		if err != nil {
			return config.FieldError{Field: "pricing.file_path", Message: err.Error()}
		}
	}
	estimator := budget.NewEstimator(rates)

	if cfg.Pricing.FilePath != "" && cfg.Pricing.Watch {
		watcher, err := budget.NewRateWatcher(cfg.Pricing.FilePath, estimator)
		if err != nil {
			return config.FieldError{Field: "pricing.file_path", Message: err.Error()}
		}
		watcher.Start(ctx)
		defer watcher.Stop()
		fmt.Printf("✓ Pricing file watched: %s\n", cfg.Pricing.FilePath)
	}

	// Budget tracker
	tracker := budget.NewTracker(budget.Config{
		DailyBudget:    cfg.Governance.Budget.DailyBudget,
		MonthlyBudget:  cfg.Governance.Budget.MonthlyBudget,
		AlertThreshold: cfg.Governance.Budget.AlertThreshold,
	})

	// Provider cache
	var strategy cache.Strategy
	switch cfg.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Address,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		defer client.Close()
		strategy = cache.NewRedis(client, cfg.Cache.Redis.KeyPrefix)
	default:
		mem := cache.NewMemory(cfg.Cache.CleanupInterval)
		defer mem.Close()
		strategy = mem
	}
	fmt.Printf("✓ Cache backend: %s\n", cfg.Cache.Backend)

	// Provider registry
	store, err := registry.NewSQLiteStore(registry.SQLiteStoreConfig{
		Path:        cfg.Registry.SQLitePath,
		BusyTimeout: cfg.Registry.BusyTimeout,
	})
	if err != nil {
		return cli.NewCommandError("run", fmt.Errorf("failed to open provider store: %w", err))
	}
	defer store.Close()
	repository := registry.NewCachedRepository(store, strategy, cfg.Cache.TTL)

	// Audit pipeline
	var auditQueue *audit.Queue
	if cfg.Audit.Enabled {
		sink, err := audit.NewSQLiteSink(audit.SQLiteSinkConfig{Path: cfg.Audit.SQLitePath})
		if err != nil {
			return cli.NewCommandError("run", fmt.Errorf("failed to open audit store: %w", err))
		}
		defer sink.Close()

		auditQueue = audit.NewQueue(sink, audit.Config{
			BatchSize:     cfg.Audit.BatchSize,
			FlushInterval: cfg.Audit.FlushInterval,
			MaxQueueSize:  cfg.Audit.MaxQueueSize,
		})
		auditQueue.Start()

		if cfg.Audit.Retention.Schedule != "" {
			pruner := audit.NewPruner(sink, &audit.RetentionConfig{
				RetentionDays: cfg.Audit.Retention.Days,
				PruneSchedule: cfg.Audit.Retention.Schedule,
			})
			scheduler := audit.NewScheduler(pruner)
			if err := scheduler.Start(ctx); err != nil {
				slog.Warn("failed to start audit retention scheduler", "error", err)
			} else {
				defer scheduler.Stop()
			}
		}

		fmt.Println("✓ Audit pipeline initialized")
	}

	// Governance manager
	manager := governance.NewManager(governance.Options{
		Limiter:   limiter,
		Estimator: estimator,
		Tracker:   tracker,
		Providers: repository,
		Audit:     auditQueue,
		Metrics:   governance.NewMetrics(),
	})

	srv := server.NewServer(&cfg.Server, &cfg.Telemetry.Metrics, manager, repository, auditQueue)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/healthz\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for shutdown signal or server error
	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}

		// Drain buffered audit events before the sink closes.
		if auditQueue != nil {
			if err := auditQueue.Stop(shutdownCtx); err != nil {
				slog.Error("audit queue drain failed", "error", err)
			}
		}

		fmt.Println("✓ Server stopped")
		return nil
	}
}
