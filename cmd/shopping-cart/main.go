// Package main запускает HTTP-сервер сервиса корзины покупок.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/shopping-cart/internal/catalog"
	"github.com/mmeshcher/shopping-cart/internal/config"
	"github.com/mmeshcher/shopping-cart/internal/handler"
	"github.com/mmeshcher/shopping-cart/internal/model"
	"github.com/mmeshcher/shopping-cart/internal/repository"
	"github.com/mmeshcher/shopping-cart/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	var repo service.Repository
	if cfg.DatabaseURI != "" {
		pg, err := repository.NewPostgresRepository(cfg.DatabaseURI)
		if err != nil {
			sugar.Fatalw("database initialization error", "error", err.Error())
		}
		repo = pg
	} else {
		sugar.Warn("database URI is empty, cart changes will not be persisted")
	}

	var cat service.Catalog
	if cfg.CatalogAddress != "" {
		cat = catalog.NewClient(cfg.CatalogAddress)
	}

	svc := service.NewService(model.NewCart(cfg.CartUserType), repo, cat, logger)
	defer svc.Close()

	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Restore(restoreCtx); err != nil {
		sugar.Warnw("cart restore failed", "error", err.Error())
	}
	cancelRestore()

	h := handler.NewHandler(svc, logger)

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: h.SetupRouter(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting shopping cart server", "addr", cfg.RunAddress, "user_type", cfg.CartUserType)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка сервера)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
