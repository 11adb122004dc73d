package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/crichub/auction-backend/internal/config"
	"github.com/crichub/auction-backend/internal/httpapi"
	"github.com/crichub/auction-backend/internal/hub"
	"github.com/crichub/auction-backend/internal/pool"
	"github.com/crichub/auction-backend/internal/store"
)

func main() {
	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.Dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var snapshots store.SnapshotStore
	if cfg.PostgresDSN != "" {
		gs, err := store.NewGormStore(cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("open snapshot store", zap.Error(err))
		}
		snapshots = gs
	} else {
		logger.Warn("POSTGRES_DSN not set, snapshots held in memory only")
		snapshots = store.NewMemoryStore()
	}

	h := hub.New(ctx, hub.Config{
		Pools:  pool.NewFileProvider(cfg.PoolDir),
		Store:  snapshots,
		Logger: logger,
	})

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(h, snapshots, logger),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server", zap.Error(err))
	}
}
