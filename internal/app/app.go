package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/papercup/pos/internal/domain/auth"
	"github.com/papercup/pos/internal/domain/checkout"
	"github.com/papercup/pos/internal/domain/product"
	"github.com/papercup/pos/internal/handler"
	"github.com/papercup/pos/internal/seed"
	"github.com/papercup/pos/internal/session"
	"github.com/papercup/pos/pkg/health"
	"github.com/papercup/pos/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server and the session
// sweeper, and handles graceful shutdown. It is the single wiring point for
// the service.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// Catalog seed: embedded PaperCup menu unless overridden.
	products, err := loadSeed(cfg)
	if err != nil {
		return errors.Wrap(err, "load catalog seed")
	}

	catalog, err := product.NewCatalog(products...)
	if err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	lg.Info("Catalog seeded", zap.Int("products", len(products)))

	// Staff key registry: raw keys from config, only hashes kept.
	staffKeys := auth.NewMemoryRegistry()
	pepper := []byte(cfg.Staff.Pepper)
	for i, key := range cfg.Staff.Keys {
		staffKeys.Register(fmt.Sprintf("staff-%d", i+1), fmt.Sprintf("Staff key %d", i+1), key, pepper)
	}
	if len(cfg.Staff.Keys) == 0 {
		lg.Warn("No staff keys configured; staff operations will be rejected")
	}

	rate, err := cfg.DiscountRate()
	if err != nil {
		return err
	}

	// Domain services.
	receipts := checkout.NewMemoryLog()
	checkouts := checkout.NewService(catalog, receipts, rate)
	sessions := session.NewManager(catalog, cfg.Session.TTL, lg.Named("session"))

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("catalog", time.Second, func(_ context.Context) error {
		if len(catalog.List()) == 0 {
			return errors.New("catalog is empty")
		}
		return nil
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// HTTP surface.
	h := handler.NewHandler(catalog, sessions, checkouts, staffKeys, pepper)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", handler.HeaderSessionToken, handler.HeaderStaffKey},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("papercup-pos", m),
			httpmiddleware.LogRequests(),
		),
	}

	g, ctx := errgroup.WithContext(ctx)

	// Session sweeper: releases reservations held by abandoned baskets.
	g.Go(func() error {
		return sessions.RunSweeper(ctx, cfg.Session.SweepInterval)
	})

	// Graceful shutdown: wait for cancellation, drain, then stop.
	g.Go(func() error {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})

	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})

	return g.Wait()
}

// loadSeed returns the configured catalog seed.
func loadSeed(cfg *Config) ([]product.Product, error) {
	if cfg.SeedFile != "" {
		return seed.ProductsFromFile(cfg.SeedFile)
	}
	return seed.Products()
}
