package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	corecfg "github.com/gridpulse-lab/gridpulse/internal/core/config"
	"github.com/gridpulse-lab/gridpulse/internal/core/logging"
	"github.com/gridpulse-lab/gridpulse/internal/core/storage/postgres"
	"github.com/gridpulse-lab/gridpulse/internal/energy"
	"github.com/gridpulse-lab/gridpulse/internal/ingestion"
	"github.com/gridpulse-lab/gridpulse/internal/observability/metrics"
	"github.com/gridpulse-lab/gridpulse/internal/server"
	"github.com/gridpulse-lab/gridpulse/internal/snapshot"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	flag.Parse()

	// 0. Bootstrap logger until config is known
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		slog.Error("Failed to configure logging", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	slog.Info("Loaded config",
		"broker", cfg.Broker.URL(),
		"topics", cfg.Broker.Topics,
		"database", cfg.Database.Host,
		"timezone", cfg.Energy.Timezone)

	loc, err := cfg.Energy.Location()
	if err != nil {
		slog.Error("Invalid timezone", "timezone", cfg.Energy.Timezone, "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(ctx, postgres.Options{
		DSN:             cfg.Database.EffectiveDSN(),
		PoolSize:        cfg.Database.PoolSize,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		PingTimeout:     cfg.Database.PingTimeout,
		Retry:           cfg.ConnectRetry.Policy(),
	})
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	if cfg.Metrics.Enabled {
		metrics.RegisterDBStats(dbAdapter.DB())
	}

	// 3. Initialize query services
	energySvc := energy.NewService(
		energy.NewEngine(dbAdapter, cfg.Energy.KWDivisor),
		dbAdapter,
		loc,
		energy.Defaults{
			DeviceID:       cfg.Energy.DefaultDevice,
			SampleSeconds:  cfg.Energy.SampleIntervalSeconds,
			EmissionFactor: cfg.Energy.EmissionFactor,
		},
	)
	snapshotSvc := snapshot.NewService(dbAdapter, loc, cfg.Snapshot.StaleAfter)

	// 4. Initialize Server
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	srv := server.New(server.Options{
		Addr:            net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Mode:            cfg.Server.Mode,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MetricsPath:     metricsPath,
	}, dbAdapter)
	energySvc.RegisterRoutes(srv.Engine)
	snapshotSvc.RegisterRoutes(srv.Engine)

	// 5. Initialize Ingestion
	session := ingestion.NewSession(dbAdapter, loc)
	connector := ingestion.NewConnector(ingestion.ConnectorOptions{
		BrokerURL:       cfg.Broker.URL(),
		Username:        cfg.Broker.Username,
		Password:        cfg.Broker.Password,
		ClientIDPrefix:  cfg.Broker.ClientIDPrefix,
		Topics:          cfg.Broker.Topics,
		ReconnectPeriod: cfg.Broker.ReconnectPeriod,
		ConnectTimeout:  cfg.Broker.ConnectTimeout,
		HandlerTimeout:  cfg.Ingestion.HandlerTimeout,
		Retry:           cfg.ConnectRetry.Policy(),
	}, session)

	if err := connector.Start(ctx); err != nil {
		slog.Error("Failed to connect to broker", "error", err)
		closeStore(dbAdapter)
		if errors.Is(err, context.Canceled) {
			return
		}
		os.Exit(1)
	}

	// 6. HTTP server blocks until a signal cancels ctx.
	exitCode := 0
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
		exitCode = 1
	}

	// 7. Shutdown: broker first, then in-flight inserts, then the pool.
	slog.Info("Shutting down...")
	connector.Stop()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.Ingestion.DrainTimeout)
	if err := session.Drain(drainCtx); err != nil {
		slog.Warn("[MQTT] In-flight inserts did not finish before drain timeout", "error", err)
	}
	drainCancel()

	closeStore(dbAdapter)
	slog.Info("Shutdown complete", "inserted", session.Sequence())
	cancel()
	os.Exit(exitCode)
}

func closeStore(a *postgres.Adapter) {
	if err := a.Close(); err != nil {
		slog.Error("[DB] Failed to close pool", "error", fmt.Errorf("close: %w", err))
	}
}
