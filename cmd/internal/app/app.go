// Package app wires the pichub server runtime: config, logging, metrics,
// database and asset-host clients, HTTP routes, and graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"pichub/cmd/identity"
	"pichub/cmd/internal/api"
	"pichub/cmd/internal/assets"
	"pichub/cmd/internal/auth/session"
	"pichub/cmd/internal/gallery"
	"pichub/cmd/internal/media"
	"pichub/cmd/security/password"
)

// App is the pichub server runtime.
type App struct {
	cfg Config
	log Logger

	pool    *pgxpool.Pool
	metrics *Metrics
	handler *api.Handler
}

// New constructs a fully wired App instance from config and logger.
// Postgres must be reachable and the auth secrets must be present; either
// failing aborts startup rather than limping along.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("app: PICHUB_DATABASE_URL is required")
	}
	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("app: database: %w", err)
	}
	log.Info("db.connected")

	a, err := wire(ctx, cfg, log, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func wire(ctx context.Context, cfg Config, log Logger, pool *pgxpool.Pool) (*App, error) {
	users, err := identity.NewPostgresStore(pool, identity.WithSchema(cfg.DBSchema))
	if err != nil {
		return nil, err
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, err
	}
	auth, err := session.NewService(sessCfg, users, pwCfg)
	if err != nil {
		return nil, err
	}

	galleryStore, err := gallery.NewPostgresStore(pool, cfg.DBSchema)
	if err != nil {
		return nil, err
	}
	galleries := gallery.NewService(galleryStore, users)

	host, err := assets.NewS3Host(ctx, assets.S3Config{
		Region:       cfg.S3Region,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		Bucket:       cfg.S3Bucket,
		BaseEndpoint: cfg.S3BaseEndpoint,
		PublicURL:    cfg.S3PublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("app: asset host: %w", err)
	}

	mediaStore, err := media.NewPostgresStore(pool, cfg.DBSchema)
	if err != nil {
		return nil, err
	}
	mediaSvc := media.NewService(mediaStore, host, galleries)

	handler, err := api.NewHandler(log, api.LoadConfigFromEnv(), auth, users, galleries, mediaSvc)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:     cfg,
		log:     log,
		pool:    pool,
		metrics: NewMetrics(),
		handler: handler,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.pool, a.metrics, a.handler)

	var h http.Handler = a.metrics.WithHTTPMetrics(mux)
	h = WithSecurityHeaders(h)
	if len(a.cfg.CORSAllowedOrigins) > 0 {
		h = WithCORS(h, a.cfg, a.log)
	}
	h = WithRequestLogging(h, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 30*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.pool.Close()
	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
