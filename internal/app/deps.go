package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petpalfinder/backend/internal/auth"
	"github.com/petpalfinder/backend/internal/config"
	"github.com/petpalfinder/backend/internal/db"
	"github.com/petpalfinder/backend/internal/geocode"
	"github.com/petpalfinder/backend/internal/handlers"
	"github.com/petpalfinder/backend/internal/httpclient"
	"github.com/petpalfinder/backend/internal/markers"
	"github.com/petpalfinder/backend/internal/middleware"
	"github.com/petpalfinder/backend/internal/pagination"
	"github.com/petpalfinder/backend/internal/petfinder"
	"github.com/petpalfinder/backend/internal/repositories"
	"github.com/petpalfinder/backend/internal/search"
	"github.com/petpalfinder/backend/internal/storage"
)

const (
	exportPrefix       = "exports"
	exportDrainTimeout = 30 * time.Second
)

// components holds the concrete collaborators shared by every command.
type components struct {
	pool      *pgxpool.Pool
	tokens    *auth.TokenProvider
	petfinder *petfinder.Client
	searcher  *search.Orchestrator
	sessions  *pagination.Registry
	geocoder  *geocode.Cache
	markers   *markers.Resolver
	prefs     repositories.PrefsStore
	exporter  *storage.Exporter
	exports   *storage.ExportQueue

	closers []func()
}

// buildDependencies wires together concrete implementations. Postgres backs the
// token and preference stores when a database URL is configured, Redis backs
// the geocode cache when an address is configured, and geocoding is disabled
// without an OpenCage key.
func buildDependencies(ctx context.Context, cfg config.Config, logger *slog.Logger) (*components, error) {
	c := &components{}

	var tokenStore auth.TokenStore = auth.NewInMemoryTokenStore()
	c.prefs = repositories.NewInMemoryPrefsStore()
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		c.pool = pool
		c.closers = append(c.closers, pool.Close)
		tokenStore = repositories.NewPostgresTokenStore(pool, repositories.DefaultTokenName)
		c.prefs = repositories.NewPostgresPrefsStore(pool)
	} else {
		logger.Warn("no database configured, tokens and preferences stay in memory")
	}

	c.tokens = auth.NewTokenProvider(auth.Credentials{
		ClientID:     cfg.Petfinder.ClientID,
		ClientSecret: cfg.Petfinder.ClientSecret,
		TokenURL:     cfg.Petfinder.TokenURL(),
	}, httpclient.New(cfg.HTTPTimeout, nil), tokenStore, logger)

	transport := auth.NewBearerTransport(httpclient.NewTransport(cfg.HTTPTimeout, cfg.HTTPTimeout), c.tokens)
	client, err := petfinder.NewClient(petfinder.Options{
		BaseURL:       cfg.Petfinder.BaseURL,
		HTTPClient:    httpclient.New(cfg.HTTPTimeout, transport),
		RatePerSecond: cfg.Petfinder.RatePerSecond,
		Burst:         cfg.Petfinder.Burst,
		Logger:        logger,
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	c.petfinder = client
	c.searcher = search.NewOrchestrator(client, cfg.FanOutParallelism, logger)
	c.sessions = pagination.NewRegistry(c.searcher, cfg.PageSize).WithIdleTTL(cfg.SessionTTL)

	store, err := exportStore(ctx, cfg)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("configure export store: %w", err)
	}
	c.exporter = storage.NewExporter(store, exportPrefix)
	c.exports = storage.NewExportQueue(c.exporter, storage.ExportQueueConfig{Workers: 2}, logger)
	c.closers = append(c.closers, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), exportDrainTimeout)
		defer cancel()
		if err := c.exports.Shutdown(shutdownCtx); err != nil {
			logger.Warn("export queue did not drain", "error", err)
		}
	})

	if cfg.OpenCage.APIKey == "" {
		logger.Warn("no geocoding key configured, geocode and marker endpoints are disabled")
		return c, nil
	}

	opencage, err := geocode.NewOpenCageClient(cfg.OpenCage.BaseURL, cfg.OpenCage.APIKey, httpclient.New(cfg.HTTPTimeout, nil), logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	var geoStore geocode.Store = geocode.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		redisStore, err := geocode.NewRedisStore(ctx, geocode.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("connect geocode cache: %w", err)
		}
		geoStore = redisStore
		c.closers = append(c.closers, func() { _ = redisStore.Close() })
	}

	c.geocoder = geocode.NewCache(opencage, geoStore, logger)
	c.markers = markers.NewResolver(c.geocoder, cfg.FanOutParallelism)
	c.markers.FallbackAddress = cfg.FallbackAddress

	return c, nil
}

// handlerDeps exposes the components to the HTTP layer. Nil components stay
// nil interfaces so handlers report them unavailable.
func (c *components) handlerDeps(cfg config.Config) handlers.Dependencies {
	deps := handlers.Dependencies{
		Sessions:     c.sessions,
		Animals:      c.petfinder,
		Prefs:        c.prefs,
		Exports:      c.exports,
		MarkerRadius: cfg.MarkerRadius,
		APIKeyHash:   cfg.APIKeyHash,
		RateLimiter:  middleware.NewIPRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst, 0),
	}
	if c.geocoder != nil {
		deps.Geocoder = c.geocoder
	}
	if c.markers != nil {
		deps.Markers = c.markers
	}
	return deps
}

// Close drains the export queue and releases connections in reverse order of
// acquisition.
func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
