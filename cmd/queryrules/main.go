package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/queryrules/internal/config"
	dbRedis "github.com/kailas-cloud/queryrules/internal/db/redis"
	"github.com/kailas-cloud/queryrules/internal/domain/scoring"
	logpkg "github.com/kailas-cloud/queryrules/internal/logger"
	"github.com/kailas-cloud/queryrules/internal/metrics"
	rulerepo "github.com/kailas-cloud/queryrules/internal/repository/rule"
	chiTransport "github.com/kailas-cloud/queryrules/internal/transport/chi"
	"github.com/kailas-cloud/queryrules/internal/usecase/augment"
	healthuc "github.com/kailas-cloud/queryrules/internal/usecase/health"
	rulesuc "github.com/kailas-cloud/queryrules/internal/usecase/rules"
	"github.com/kailas-cloud/queryrules/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting queryrules API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Valkey and Redis speak the same protocol for the commands rules need.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterRuleMetrics()

	registry, err := cfg.Scripts.Registry()
	if err != nil {
		logger.Fatal("Invalid script templates", zap.Error(err))
	}
	categorizer := scoring.NewCategorizer(cfg.Scripts.TaxonomyPrefixes...)
	engine := scoring.NewEngine(registry, categorizer, cfg.Scripts.Lang)

	repo := rulerepo.New(store).WithKeyPrefix(cfg.Storage.KeyPrefix)
	cache := rulerepo.NewCache(repo, time.Duration(cfg.Rules.CacheTTLSec)*time.Second)

	augmentSvc := augment.New(cache, engine).
		WithLimit(cfg.Rules.Limit).
		WithCapability(augment.StaticCapability(cfg.Search.ScriptingEnabled())).
		WithCategorizer(categorizer).
		WithIDField(cfg.Search.IDField).
		WithEnabled(cfg.Search.IsEnabled())
	rulesSvc := rulesuc.New(repo).WithInvalidator(cache)
	healthSvc := healthuc.New(store, repo)

	logger.Info("Rule engine ready",
		zap.Int("templates", registry.Len()),
		zap.Int("rule_limit", cfg.Rules.Limit),
		zap.Bool("augment_enabled", cfg.Search.IsEnabled()),
		zap.Bool("dynamic_scripting", cfg.Search.ScriptingEnabled()),
	)

	server := chiTransport.NewServer(augmentSvc, rulesSvc, healthSvc, logger).
		WithMaxBodyBytes(int64(cfg.HTTP.MaxBodyBytes))

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
