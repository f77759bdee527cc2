package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"videoapi/internal/browser"
	"videoapi/internal/cache"
	"videoapi/internal/provider"
	"videoapi/internal/resolver"
)

// app wires the browser, resolver and cache for one command run.
type app struct {
	site     provider.Site
	engine   *browser.Engine
	resolver *resolver.Resolver
	cache    *cache.Cache // nil when disabled
}

// openCache opens the result cache, or returns nil when it is disabled.
func openCache() (*cache.Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	path, err := cfg.CachePath()
	if err != nil {
		return nil, fmt.Errorf("resolving cache path: %w", err)
	}
	c, err := cache.Open(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("cache opened", zap.String("path", path))
	return c, nil
}

// newApp starts the browser. The app takes ownership of c, which may be
// nil. The caller must Close the app.
func newApp(ctx context.Context, c *cache.Cache) (*app, error) {
	site := provider.NewFMovies(cfg.Base)

	engine := browser.NewEngine(browser.OptionsFromConfig(cfg), site, logger.Named("browser"))
	if err := engine.Start(ctx); err != nil {
		_ = engine.Close()
		if c != nil {
			c.Close()
		}
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	res := resolver.New(engine, site, resolver.Options{
		MaxSessions:    cfg.Resolver.MaxSessions,
		ResolveTimeout: cfg.Resolver.ResolveTimeout.Duration,
		SettleDelay:    cfg.Resolver.SettleDelay.Duration,
	}, logger.Named("resolver"))

	return &app{site: site, engine: engine, resolver: res, cache: c}, nil
}

func (a *app) Close() {
	if err := a.engine.Close(); err != nil {
		logger.Warn("closing browser", zap.Error(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Warn("closing cache", zap.Error(err))
		}
	}
}
