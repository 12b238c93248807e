// Package main запускает HTTP-сервер витрины магазина.
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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/storefront/internal/catalog"
	"github.com/mmeshcher/storefront/internal/config"
	"github.com/mmeshcher/storefront/internal/events"
	"github.com/mmeshcher/storefront/internal/handler"
	"github.com/mmeshcher/storefront/internal/health"
	"github.com/mmeshcher/storefront/internal/metrics"
	"github.com/mmeshcher/storefront/internal/middleware"
	"github.com/mmeshcher/storefront/internal/payment"
	"github.com/mmeshcher/storefront/internal/repository"
	"github.com/mmeshcher/storefront/internal/service"
	"github.com/mmeshcher/storefront/internal/session"
)

const (
	version               = "1.0.0"
	sessionEvictInterval  = time.Minute
	shutdownTimeout       = 5 * time.Second
	startupLoadingTimeout = 10 * time.Second
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	probes := health.NewHandler(version)

	var closers []func() error

	cat := catalog.Default()
	if cfg.DatabaseURI != "" {
		repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
		if err != nil {
			sugar.Fatalw("database initialization error", "error", err.Error())
		}
		closers = append(closers, repo.Close)

		loadCtx, cancel := context.WithTimeout(context.Background(), startupLoadingTimeout)
		cat, err = catalog.Load(loadCtx, repo)
		cancel()
		if err != nil {
			sugar.Fatalw("catalog loading error", "error", err.Error())
		}

		probes.RegisterChecker("database", health.NewSimpleChecker("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return repo.Ping(ctx)
		}))
	}
	probes.RegisterChecker("catalog", health.NewSimpleChecker("catalog", func() error {
		if len(cat.Products()) == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	}))
	sugar.Infow("catalog loaded", "products", len(cat.Products()), "promos", len(cat.Promos()))

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			sugar.Fatalw("kafka publisher initialization error", "error", err.Error())
		}
		publisher = kafka
		closers = append(closers, kafka.Close)
		sugar.Infow("payment events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	m := metrics.New()
	initiator := payment.NewInitiator(payment.NewClient(cfg.PaymentEndpoint, cfg.PaymentTimeout), publisher, m, logger)
	store := session.NewStore(cat, cfg.SessionTTL)

	svc := service.NewService(cat, store, initiator, m, logger)
	for _, closeFn := range closers {
		svc.OnClose(closeFn)
	}
	// Закрывается первым: события дописываются до остановки продюсера.
	svc.OnClose(initiator.Close)
	defer func() {
		if err := svc.Close(); err != nil {
			sugar.Errorw("service close error", "error", err)
		}
	}()

	sessions := middleware.NewSessionMiddleware(cfg.SessionSecret, svc, cfg.SessionTTL)
	h := handler.NewHandler(svc, logger, sessions, cfg.PublicOrigin)

	r := h.SetupRouter(probes)

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Удаление неактивных сессий
	g.Go(func() error {
		svc.StartSessionEviction(ctx, sessionEvictInterval)
		return nil
	})

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting storefront server", "addr", cfg.RunAddress, "payment_endpoint", cfg.PaymentEndpoint)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
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
