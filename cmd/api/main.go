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

	"github.com/angelmondragon/ecofinds-backend/api/controllers"
	"github.com/angelmondragon/ecofinds-backend/api/routes"
	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/internal/checkout"
	"github.com/angelmondragon/ecofinds-backend/internal/coupons"
	"github.com/angelmondragon/ecofinds-backend/internal/orders"
	"github.com/angelmondragon/ecofinds-backend/internal/storage"
	"github.com/angelmondragon/ecofinds-backend/internal/wishlist"
	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/angelmondragon/ecofinds-backend/pkg/db"
	"github.com/angelmondragon/ecofinds-backend/pkg/env"
	"github.com/angelmondragon/ecofinds-backend/pkg/instance"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
	"github.com/angelmondragon/ecofinds-backend/pkg/metrics"
	"github.com/angelmondragon/ecofinds-backend/pkg/migrate"
	"github.com/angelmondragon/ecofinds-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cartMetrics := metrics.NewCartMetrics(reg)

	backend, err := openBackend(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap storage", err)
		os.Exit(1)
	}
	defer backend.close(logg)

	couponService, err := coupons.NewService(backend.coupons)
	if err != nil {
		logg.Error(ctx, "failed to create coupon service", err)
		os.Exit(1)
	}
	checkoutService, err := checkout.NewService(couponService, checkout.PolicyFromConfig(cfg.Shipping))
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}
	registry, err := cart.NewRegistry(backend.slot, logg, cartMetrics,
		cart.WithMaxSessions(cfg.Cart.MaxSessions),
		cart.WithIdleTimeout(cfg.Cart.IdleTimeout),
	)
	if err != nil {
		logg.Error(ctx, "failed to create cart registry", err)
		os.Exit(1)
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		Slot:    backend.slot,
		Quoter:  checkoutService,
		Logger:  logg,
		Metrics: cartMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create orders service", err)
		os.Exit(1)
	}
	wishlistService, err := wishlist.NewService(backend.slot, logg)
	if err != nil {
		logg.Error(ctx, "failed to create wishlist service", err)
		os.Exit(1)
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"storage":  cfg.Storage.NormalizedDriver(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			Carts:    registry,
			Checkout: checkoutService,
			Coupons:  couponService,
			Orders:   orderService,
			Wishlist: wishlistService,
			Ready:    backend.ready,
			Metrics:  reg,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		logg.Info(shutdownCtx, "shutting down api server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}

// backend bundles the slot implementation chosen by config with the coupon
// repository and the handles that need closing on exit.
type backend struct {
	slot    storage.Slot
	coupons coupons.Repository
	ready   map[string]controllers.Pinger
	closers []func() error
}

func (b *backend) close(logg *logger.Logger) {
	var errs error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, b.closers[i]())
	}
	if errs != nil {
		logg.Error(context.Background(), "error closing backend", errs)
	}
}

func openBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*backend, error) {
	b := &backend{
		coupons: coupons.NewMemoryRepository(coupons.DefaultCoupons()...),
		ready:   map[string]controllers.Pinger{},
	}

	switch driver := cfg.Storage.NormalizedDriver(); driver {
	case config.StorageDriverMemory:
		slot := storage.NewMemorySlot()
		b.slot = slot
		b.ready["storage"] = slot
	case config.StorageDriverFile:
		slot, err := storage.NewFileSlot(cfg.Storage.FileDir)
		if err != nil {
			return nil, err
		}
		b.slot = slot
		b.ready["storage"] = slot
	case config.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		b.closers = append(b.closers, client.Close)
		b.slot = storage.NewRedisSlot(client, cfg.Storage.RedisTTL)
		b.ready["redis"] = client
	case config.StorageDriverSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		b.closers = append(b.closers, client.Close)
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			return nil, fmt.Errorf("dev migrations: %w", err)
		}
		b.slot = storage.NewSQLSlot(client.DB())
		b.ready["database"] = client

		repo := coupons.NewSQLRepository(client.DB())
		if cfg.FeatureFlags.SeedCoupons {
			if err := repo.Seed(ctx, coupons.DefaultCoupons()); err != nil {
				return nil, fmt.Errorf("seed coupons: %w", err)
			}
		}
		b.coupons = repo
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
	return b, nil
}
