package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/nikolayk812/eshop/internal/checkout"
	"github.com/nikolayk812/eshop/internal/mailer"
	"github.com/nikolayk812/eshop/internal/payment"
	"github.com/nikolayk812/eshop/internal/repository"
	"github.com/nikolayk812/eshop/internal/server"
	"github.com/nikolayk812/eshop/pkg/config"
	"github.com/nikolayk812/eshop/pkg/logger"
	"github.com/nikolayk812/eshop/pkg/shutdown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "eshop: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Service: "eshop",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("repository.RunMigrations: %w", err)
	}

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, int32(cfg.PoolMaxConns))
	if err != nil {
		return fmt.Errorf("repository.NewPool: %w", err)
	}
	defer pool.Close()

	productRepo := repository.NewProduct(pool)
	orderRepo := repository.NewOrder(pool)
	txManager := repository.NewTxManager(pool)

	authorizer := payment.NewSimulator()

	renderer, err := mailer.NewRenderer()
	if err != nil {
		return fmt.Errorf("mailer.NewRenderer: %w", err)
	}

	sender, err := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err != nil {
		return fmt.Errorf("mailer.NewSMTPSender: %w", err)
	}

	dispatcher := mailer.NewDispatcher(renderer, sender, log, mailer.DispatcherOptions{})
	defer dispatcher.Close()

	checkoutService := checkout.NewService(productRepo, orderRepo, txManager, authorizer, dispatcher, log)

	router := server.NewRouter(
		server.NewProductsHandler(productRepo, log),
		server.NewOrdersHandler(checkoutService, log),
		log,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("srv.Shutdown: %w", err)
		}
	}

	return nil
}
