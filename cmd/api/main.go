package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Birgy1002/rezept-pwa/internal/adapter/fetcher"
	"github.com/Birgy1002/rezept-pwa/internal/adapter/postgres"
	redis_adapter "github.com/Birgy1002/rezept-pwa/internal/adapter/redis"
	"github.com/Birgy1002/rezept-pwa/internal/delivery/http/handler"
	"github.com/Birgy1002/rezept-pwa/internal/delivery/http/router"
	"github.com/Birgy1002/rezept-pwa/internal/usecase"
	"github.com/Birgy1002/rezept-pwa/pkg/config"
	"github.com/Birgy1002/rezept-pwa/pkg/logger"
	"github.com/Birgy1002/rezept-pwa/pkg/metrics"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// --- Metrics ---
	metrics.Init()

	// --- Stores ---
	ctx := context.Background()

	dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatal("unable to create postgres pool", zap.Error(err))
	}
	defer dbpool.Close()
	if err := dbpool.Ping(ctx); err != nil {
		// The proxy endpoints work without the datastore; health reports it.
		log.Warn("postgres not reachable at startup", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis not reachable at startup", zap.Error(err))
	}

	recipeRepo := postgres.NewRecipeRepo(dbpool)
	guardRepo := redis_adapter.NewImportGuardRepo(rdb)

	// --- Fetcher ---
	fetchOpts := fetcher.OptionsFromConfig(cfg)
	pageFetcher, release, err := fetcher.New(cfg.FetchMode, fetchOpts, log)
	if err != nil {
		log.Fatal("invalid fetch mode", zap.Error(err))
	}
	defer release()
	if hosts := fetchOpts.Allowlist.Hosts(); len(hosts) == 0 {
		log.Warn("ALLOWED_HOSTS is empty, any host can be fetched")
	} else {
		log.Info("host allow-list active", zap.Strings("hosts", hosts))
	}

	// --- Use Cases ---
	importer := usecase.NewRecipeImporter(pageFetcher, log)
	recipes := usecase.NewRecipeManager(importer, recipeRepo, guardRepo, cfg.ImportDedupWindow(), log)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(importer, recipes, map[string]handler.Pinger{
		"postgres": recipeRepo,
		"redis":    guardRepo,
	}, log)
	requestTimeout := cfg.FetchTimeout() + 10*time.Second

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router.New(apiHandler, log, requestTimeout),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("could not start server", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.ServerPort), zap.String("fetch_mode", cfg.FetchMode))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}
