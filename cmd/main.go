package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bridgeport-service/bridgeport/internal/api/routes"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/config"
	"github.com/bridgeport-service/bridgeport/internal/infrastructure/di"
	"github.com/bridgeport-service/bridgeport/internal/workers/pool_refresh"
	"github.com/bridgeport-service/bridgeport/internal/workers/transfer_resume"
	"github.com/bridgeport-service/bridgeport/pkg/graceful"
	"github.com/bridgeport-service/bridgeport/pkg/logger"
	"github.com/bridgeport-service/bridgeport/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New(cfg.LogLevel, cfg.Environment)
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.NewContainer(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to build container", "error", err)
	}
	defer container.Close()

	router := routes.SetupRoutes(container)

	// Background workers
	if cfg.Workers.ResumeEnabled {
		resumeConfig := transfer_resume.DefaultConfig()
		if cfg.Workers.ResumeInterval > 0 {
			resumeConfig.CheckInterval = time.Duration(cfg.Workers.ResumeInterval) * time.Second
		}
		resumeWorker := transfer_resume.NewWorker(container.TransferRepo, container.BridgeService, resumeConfig, log)
		go resumeWorker.Start(ctx)
		defer resumeWorker.Stop()
		log.Info("Transfer resume worker started", "interval", resumeConfig.CheckInterval)
	}

	refreshWorker := pool_refresh.NewWorker(container.PoolService, cfg.Pools.RefreshSpec, log)
	if err := refreshWorker.Start(ctx); err != nil {
		log.Fatal("Failed to start pool refresh worker", "error", err)
	}
	defer refreshWorker.Stop()

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("Starting server",
			"addr", server.Addr,
			"environment", cfg.Environment,
			"chains", len(cfg.Chains),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	// Connection pool metrics
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := container.DB.Stats()
				metrics.DatabaseConnectionsGauge.WithLabelValues("open").Set(float64(stats.OpenConnections))
				metrics.DatabaseConnectionsGauge.WithLabelValues("idle").Set(float64(stats.Idle))
				metrics.DatabaseConnectionsGauge.WithLabelValues("in_use").Set(float64(stats.InUse))
			}
		}
	}()

	shutdown := graceful.NewShutdownManager(server, container.DB.DB, log)
	shutdown.WaitForShutdown()
}
