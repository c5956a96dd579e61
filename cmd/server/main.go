package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeero-shorts/zeero/internal/config"
	"github.com/zeero-shorts/zeero/internal/domain"
	"github.com/zeero-shorts/zeero/internal/infrastructure/logger"
	"github.com/zeero-shorts/zeero/internal/infrastructure/objectstore"
	"github.com/zeero-shorts/zeero/internal/infrastructure/storage"
	"github.com/zeero-shorts/zeero/internal/infrastructure/upstream"
	"github.com/zeero-shorts/zeero/internal/usecase"
	"github.com/zeero-shorts/zeero/internal/web"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	var log *zap.Logger
	if cfg.Logging.File != "" {
		log, err = logger.NewFileLogger(cfg.Logging.File, cfg.Logging.Level)
	} else {
		log, err = logger.NewLogger(cfg.Logging.Level)
	}
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Storage
	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	// 4. Init Object Store (Cloudflare R2)
	r2, err := objectstore.NewR2Store(context.Background(),
		cfg.R2.Endpoint, cfg.R2.AccessKeyID, cfg.R2.SecretAccessKey,
		cfg.R2.Bucket, cfg.R2.PublicURL)
	if err != nil {
		log.Fatal("Failed to init object store", zap.Error(err))
	}

	// 5. Init Upstream Client + Services
	explore := upstream.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.APIKey, log)
	coins := usecase.NewCoinService(explore, store, log)

	// One pager per category, application lifetime.
	pagers := map[domain.FeedCategory]*usecase.CoinPager{
		domain.CategoryNew:        usecase.NewCoinPager(domain.CategoryNew, coins, cfg.Feed.PageSize, log),
		domain.CategoryTopVolume:  usecase.NewCoinPager(domain.CategoryTopVolume, coins, cfg.Feed.PageSize, log),
		domain.CategoryTopGainers: usecase.NewCoinPager(domain.CategoryTopGainers, coins, cfg.Feed.PageSize, log),
	}

	// 6. Init Web Server
	server := web.NewServer(cfg.Server.Port, coins, pagers, store, r2, cfg, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	// 7. Wait for Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}
}
