package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	goredis "github.com/redis/go-redis/v9"

	"github.com/chiragjain10/avrcraft-sub000/internal/auth"
	"github.com/chiragjain10/avrcraft-sub000/internal/config"
	delivery "github.com/chiragjain10/avrcraft-sub000/internal/delivery/http"
	"github.com/chiragjain10/avrcraft-sub000/internal/messaging"
	"github.com/chiragjain10/avrcraft-sub000/internal/messaging/kafka"
	msgmemory "github.com/chiragjain10/avrcraft-sub000/internal/messaging/memory"
	"github.com/chiragjain10/avrcraft-sub000/internal/payment"
	"github.com/chiragjain10/avrcraft-sub000/internal/pricing"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository/memory"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository/postgres"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository/redis"
	"github.com/chiragjain10/avrcraft-sub000/internal/service"
)

type broker interface {
	messaging.Publisher
	messaging.Subscriber
	Close() error
}

type stores struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	events   repository.OrderEventLog
	carts    repository.CartStorage
	closers  []func() error
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			slog.Error("Failed to close resource", "err", err)
		}
	}
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	s := &stores{}

	if cfg.DatabaseURL != "" {
		db, err := postgres.InitDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		s.products = postgres.NewProductRepository(db)
		s.orders = postgres.NewOrderRepository(db)
		s.events = postgres.NewOrderEventLog(db)
	} else {
		slog.Warn("No database configured, orders and products are kept in memory")
		s.products = memory.NewProductRepository()
		s.orders = memory.NewOrderRepository()
		s.events = memory.NewOrderEventLog()
	}

	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			s.close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.closers = append(s.closers, client.Close)
		s.carts = redis.NewCartStorage(client, cfg.CartTTL)
		slog.Info("Redis connected", "addr", cfg.RedisAddr)
	} else {
		slog.Warn("No redis configured, carts are kept in memory")
		s.carts = memory.NewCartStorage()
	}
	return s, nil
}

func newBroker(cfg *config.Config) broker {
	if len(cfg.KafkaBrokers) > 0 {
		slog.Info("Using Kafka broker", "brokers", cfg.KafkaBrokers)
		return kafka.NewKafkaBroker(cfg.KafkaBrokers)
	}
	slog.Warn("No Kafka brokers configured, events stay in process")
	return msgmemory.NewBroker(false)
}

func serve(parent context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	catalog := service.NewCatalogService(st.products)
	if cfg.SeedProducts || cfg.DatabaseURL == "" {
		if err := catalog.Seed(ctx); err != nil {
			return err
		}
	}

	events := newBroker(cfg)
	defer func() {
		if err := events.Close(); err != nil {
			slog.Error("Failed to close broker", "err", err)
		}
	}()

	orders := service.NewOrderService(st.orders, st.events, payment.NewSimulator(), events)
	sessions := service.NewSessions(st.carts, orders, pricing.DefaultRules)
	defer sessions.Close()

	notifications := service.NewNotificationService(service.LogNotifier{})

	var consumers sync.WaitGroup
	consumers.Add(2)
	go func() {
		defer consumers.Done()
		events.Consume(ctx, messaging.TopicOrdersConfirmed, cfg.ConsumerGroup, notifications.HandleOrderConfirmed)
	}()
	go func() {
		defer consumers.Done()
		sessions.Run(ctx, cfg.SessionSweepInterval, cfg.SessionIdleTimeout)
	}()

	mux := http.NewServeMux()
	delivery.NewHandler(catalog, orders, sessions, auth.HeaderAuthenticator{}).RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: delivery.LogRequests(delivery.EnableCORS(mux)),
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			cancel()
			consumers.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	}

	slog.Info("Shutting down...")
	shutdownCtx, done := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer done()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown error", "err", err)
	}
	cancel()
	consumers.Wait()
	return nil
}

func migrate(ctx context.Context, cfg *config.Config, seed bool) error {
	if cfg.DatabaseURL == "" {
		return errors.New("STOREFRONT_DATABASE_URL is required for migrate")
	}
	db, err := postgres.InitDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if seed {
		return seedCatalog(ctx, db)
	}
	return nil
}

func seedCatalog(ctx context.Context, db *sql.DB) error {
	if err := service.NewCatalogService(postgres.NewProductRepository(db)).Seed(ctx); err != nil {
		return err
	}
	slog.Info("Product catalog seeded")
	return nil
}
