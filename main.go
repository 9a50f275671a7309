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

	auctions "auction-marketplace/internal/auctionService"
	"auction-marketplace/internal/auth"
	bidding "auction-marketplace/internal/biddingService"
	"auction-marketplace/internal/config"
	"auction-marketplace/internal/database"
	"auction-marketplace/internal/locker"
	"auction-marketplace/internal/metrics"
	"auction-marketplace/internal/notifications"
	"auction-marketplace/internal/repository"
	"auction-marketplace/internal/server"
	"auction-marketplace/internal/sweep"
	"auction-marketplace/internal/users"
	"auction-marketplace/internal/wallet"
	"auction-marketplace/utils"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		utils.Warn(".env file not found, relying on environment", nil)
	}

	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("failed to load config", map[string]any{"error": err.Error()})
	}
	utils.SetLevel(cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		utils.Error("auction server stopped unexpectedly", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	utils.Info("auction server shut down gracefully", nil)
}

func run(ctx context.Context, cfg *config.Config) error {
	dbClient, err := database.New(cfg.DB)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			utils.Error("error closing database", map[string]any{"error": err.Error()})
		}
	}()

	if cfg.DB.AutoMigrate {
		if err := dbClient.Migrate(ctx); err != nil {
			return err
		}
	}

	commission, err := cfg.Wallet.Commission()
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		return fmt.Errorf("create token manager: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	auctionMetrics := metrics.New(registry)

	db := dbClient.DB()
	repo := repository.NewGormRepo(db)
	notificationRepo := notifications.NewRepository(db)
	notifier, err := notifications.NewService(notificationRepo)
	if err != nil {
		return fmt.Errorf("create notification service: %w", err)
	}

	// bids, closes and moderation on the same auction are serialised in-process
	locks := locker.NewKeyed()
	biddingService := bidding.NewBiddingService(repo,
		bidding.WithLocker(locks),
		bidding.WithNotifier(notifier),
		bidding.WithMetrics(auctionMetrics),
	)
	auctionService := auctions.NewAuctionService(repo, locks)
	walletService := wallet.NewService(db, commission, wallet.WithNotifier(notifier))
	accountService := users.NewService(repo, tokens)

	if cfg.App.SeedDemo {
		if err := seedDemo(ctx, repo, accountService, walletService); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	auctionJob, err := sweep.NewAuctionJob(repo, biddingService)
	if err != nil {
		return err
	}
	cleanupJob, err := sweep.NewNotificationCleanupJob(notificationRepo, 0)
	if err != nil {
		return err
	}

	router := server.SetupRouter(server.Deps{
		Bidding:       biddingService,
		Auctions:      auctionService,
		MinimumBid:    biddingService,
		Sweeper:       auctionJob,
		Wallet:        walletService,
		Accounts:      accountService,
		Notifications: notifier,
		Tokens:        tokens,
		Metrics:       auctionMetrics,
		Gatherer:      registry,
		DB:            dbClient,
	})

	errCh := make(chan error, 2)

	if cfg.Sweep.Interval > 0 {
		lock, closeLock, err := newSweepLock(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeLock()

		runner, err := sweep.NewRunner(sweep.RunnerParams{
			Registry: sweep.NewRegistry(auctionJob, cleanupJob),
			Lock:     lock,
			Metrics:  auctionMetrics,
			Interval: cfg.Sweep.Interval,
		})
		if err != nil {
			return fmt.Errorf("create sweep runner: %w", err)
		}
		go func() {
			if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("sweep runner: %w", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.App.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		utils.Info("starting auction server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// newSweepLock uses redis when configured so that only one replica sweeps per cycle
func newSweepLock(ctx context.Context, cfg *config.Config) (sweep.Lock, func(), error) {
	if cfg.Redis.URL == "" {
		utils.Info("sweep: redis not configured, using in-process lock", nil)
		return &sweep.LocalLock{}, func() {}, nil
	}

	client, err := sweep.OpenRedis(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap redis: %w", err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			utils.Error("error closing redis", map[string]any{"error": err.Error()})
		}
	}

	lock, err := sweep.NewRedisLock(sweep.NewRedisStore(client), sweep.LockKey, cfg.Sweep.LockTTL)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("create sweep lock: %w", err)
	}
	return lock, closeFn, nil
}
