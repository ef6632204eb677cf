package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"skillswap-server/config"
	"skillswap-server/handlers"
	"skillswap-server/services"
	"skillswap-server/store"
	"skillswap-server/utils/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// stores bundles the configured backends with the function that releases them.
type stores struct {
	users store.UserStore
	swaps store.SwapStore
	close func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := store.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		users := store.NewMongoUserStore(db)
		swaps := store.NewMongoSwapStore(db)
		closeFn := func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(shutdownCtx); err != nil {
				logger.Error("failed to disconnect from mongo", "error", err)
			}
		}
		if err := users.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, fmt.Errorf("ensure user indexes: %w", err)
		}
		if err := swaps.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, fmt.Errorf("ensure swap indexes: %w", err)
		}
		logger.Info("connected to mongo", "database", cfg.MongoDatabase)
		return &stores{users: users, swaps: swaps, close: closeFn}, nil

	case config.StoreBadger:
		db, err := store.OpenBadger(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		logger.Info("opened badger store", "path", cfg.BadgerPath)
		return &stores{
			users: store.NewBadgerUserStore(db),
			swaps: store.NewBadgerSwapStore(db),
			close: func() {
				if err := db.Close(); err != nil {
					logger.Error("failed to close badger", "error", err)
				}
			},
		}, nil

	default:
		logger.Warn("using in-memory store, data is lost on restart")
		return &stores{
			users: store.NewMemoryUserStore(),
			swaps: store.NewMemorySwapStore(),
			close: func() {},
		}, nil
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer st.close()

	users := st.users
	if cfg.CacheEnabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		users = store.NewCachedUserStore(users, rdb, cfg.UserCacheTTL, logger)
		logger.Info("user cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.UserCacheTTL)
	}

	userHandler := handlers.NewUserHandler(services.NewUserService(users, logger), logger)
	swapHandler := handlers.NewSwapHandler(services.NewSwapService(st.swaps, users, logger), logger)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handlers.NewRouter(userHandler, swapHandler, logger, cfg.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
