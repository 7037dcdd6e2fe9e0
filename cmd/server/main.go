package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/nftadvisor/valuation-go/internal/api"
	"github.com/nftadvisor/valuation-go/internal/cache"
	"github.com/nftadvisor/valuation-go/internal/collector"
	"github.com/nftadvisor/valuation-go/internal/config"
	"github.com/nftadvisor/valuation-go/internal/database"
	"github.com/nftadvisor/valuation-go/internal/report"
	"github.com/nftadvisor/valuation-go/internal/scorer"
	"github.com/nftadvisor/valuation-go/internal/valuation"
)

func main() {
	// Optional; environment variables win over the file either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Environment != "development" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	// The scoring model is the one hard startup dependency.
	model, err := scorer.LoadModel(cfg.Model.Path)
	if err != nil {
		logger.Fatalf("Failed to load scoring model: %v", err)
	}

	// Report persistence is best-effort: without Postgres the service
	// still valuates, it just stops archiving reports.
	var db *database.PostgresDB
	var store report.Store
	if db, err = database.NewPostgresConnection(cfg.Database); err != nil {
		logger.WithError(err).Warn("PostgreSQL unavailable, reports will not be persisted")
		db = nil
	} else {
		defer db.Close()
		store = database.NewReportRepository(db.Pool)
	}

	redisClient := database.NewRedisConnection(cfg.Redis, logger)
	defer redisClient.Close()

	valuationCache := cache.NewValuationCache(redisClient.Client,
		time.Duration(cfg.Cache.ValuationTTLSeconds)*time.Second, logger)
	snapshotCache := cache.NewSnapshotCache(redisClient.Client,
		time.Duration(cfg.Cache.SnapshotTTLSeconds)*time.Second, logger)

	upstreamClient := collector.NewClient(cfg.Upstream, cfg.UpstreamTimeout())
	source := collector.New(cfg.Upstream, upstreamClient, logger, cfg.CollectionsTTL())

	sc := scorer.New(model, valuationCache, logger)
	svc := valuation.NewService(source, valuationCache, snapshotCache, sc, logger)
	assembler := report.NewAssembler(svc, store, nil, logger)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, cfg, logger, svc, assembler, db, redisClient)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
