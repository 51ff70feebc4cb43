package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/arwoh/storefront-go/internal/cache"
	"github.com/arwoh/storefront-go/internal/cart"
	"github.com/arwoh/storefront-go/internal/checkout"
	"github.com/arwoh/storefront-go/internal/clients"
	"github.com/arwoh/storefront-go/internal/config"
	"github.com/arwoh/storefront-go/internal/db"
	"github.com/arwoh/storefront-go/internal/events"
	httpapi "github.com/arwoh/storefront-go/internal/http"
	"github.com/arwoh/storefront-go/internal/http/handlers"
	"github.com/arwoh/storefront-go/internal/logging"
	"github.com/arwoh/storefront-go/internal/notify"
	"github.com/arwoh/storefront-go/internal/session"
)

func main() {
	cfg := config.Load()
	logger := logging.New("storefront-bff", cfg.LogLevel)
	if slices.Contains(cfg.CORSAllowOrigins, "*") {
		logger.Warn("CORS_ALLOW_ORIGINS contains *; unlisted origins get no credentialed access")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Base HTTP client (shared)
	sharedHTTP := &http.Client{
		Timeout:   cfg.UpstreamTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	cartBase := clients.NewClient("cart-service", cfg.CartURL, sharedHTTP)
	paymentBase := clients.NewClient("payment-service", cfg.PaymentURL, sharedHTTP)

	upstreams := []clients.Upstream{
		{Name: "cart-service", Client: cartBase, Path: "/health"},
		{Name: "payment-service", Client: paymentBase, Path: "/health"},
	}
	var backends []handlers.BackendCheck

	// --- Sessions: postgres when configured, memory otherwise ---
	var sessionRepo session.Repository = session.NewMemoryRepository()
	var sequencer events.Sequencer
	if cfg.DatabaseDSN != "" {
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
				logger.WithError(err).Fatal("db migrate")
			}
		}

		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.WithError(err).Fatal("db connect")
		}
		defer pool.Close()
		pgSessions := session.NewPostgresRepository(pool)
		sessionRepo = pgSessions
		backends = append(backends, handlers.BackendCheck{Name: "postgres", Ping: pgSessions.Ping})

		sqlDB, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.WithError(err).Fatal("db open")
		}
		defer sqlDB.Close()
		sequencer = events.NewCartSequences(sqlDB)
	} else {
		logger.Warn("DATABASE_DSN not set; sessions are kept in memory")
	}
	sessions := session.NewService(sessionRepo, cfg.SessionTTL, logger)

	// --- Snapshot cache ---
	var snapshotCache cart.SnapshotCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		rc := cache.NewRedisSnapshotCache(rdb, cfg.SnapshotCacheTTL)
		if err := rc.Ping(ctx); err != nil {
			logger.WithError(err).Warn("redis unreachable; snapshot cache disabled")
		} else {
			snapshotCache = rc
			backends = append(backends, handlers.BackendCheck{Name: "redis", Ping: rc.Ping})
		}
	}

	// --- Domain events ---
	var cartPublisher cart.Publisher
	var checkoutPublisher checkout.Publisher
	if cfg.RabbitURL != "" {
		conn, err := events.Dial(cfg.RabbitURL, logger)
		if err != nil {
			logger.WithError(err).Fatal("rabbitmq connect")
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn, events.PublisherOptions{Sequencer: sequencer})
		if err != nil {
			logger.WithError(err).Fatal("rabbitmq publisher")
		}
		defer pub.Close()
		cartPublisher, checkoutPublisher = pub, pub
	}

	inbox := notify.NewInbox(0)
	registry := cart.NewRegistry(cart.Deps{
		Remote:    clients.NewCartClient(cartBase),
		Notifier:  inbox,
		Cache:     snapshotCache,
		Publisher: cartPublisher,
		Roles:     cfg.CartRoles,
		Logger:    logger,
	})
	sessions.OnExpired(func(ctx context.Context, id string) {
		registry.Remove(ctx, id)
		inbox.Forget(id)
	})
	go sessions.Sweep(ctx, 10*time.Minute)

	trigger := checkout.NewTrigger(clients.NewPaymentClient(paymentBase), inbox, checkoutPublisher, logger)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:    logger,
		Cfg:       cfg,
		Registry:  registry,
		Sessions:  sessions,
		Inbox:     inbox,
		Checkout:  trigger,
		Upstreams: upstreams,
		Backends:  backends,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.WithError(err).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("shutdown error")
	}
	logger.Info("shutdown complete")
}
