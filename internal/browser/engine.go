// Package browser owns the shared headless Chromium and hands out render
// sessions whose network traffic is filtered and watched for the stream
// playlist request.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"

	"videoapi/internal/config"
	"videoapi/internal/provider"
	"videoapi/internal/resolver"
)

// Options configure the engine.
type Options struct {
	Bin             string
	Headless        bool
	NoSandbox       bool
	Stealth         bool
	ExtensionDir    string
	BlockDecorative bool
	WarmupURL       string
	StepTimeout     time.Duration
	QualityFrom     string
	QualityTo       string
}

// OptionsFromConfig collects engine options from the browser and resolver
// sections.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Bin:             cfg.Browser.Bin,
		Headless:        cfg.Browser.Headless,
		NoSandbox:       cfg.Browser.NoSandbox,
		Stealth:         cfg.Browser.Stealth,
		ExtensionDir:    cfg.Browser.ExtensionDir,
		BlockDecorative: cfg.Browser.BlockDecorative,
		WarmupURL:       cfg.Browser.WarmupURL,
		StepTimeout:     cfg.Resolver.StepTimeout.Duration,
		QualityFrom:     cfg.Resolver.QualityFrom,
		QualityTo:       cfg.Resolver.QualityTo,
	}
}

// Engine is the process-wide browser. Start it once before serving and
// Close it on shutdown.
type Engine struct {
	opts   Options
	site   provider.Site
	filter *Filter
	log    *zap.Logger

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
}

var _ resolver.Opener = (*Engine)(nil)

var errNotStarted = errors.New("browser not started")

// NewEngine creates an engine for site. Nothing is launched until Start.
func NewEngine(opts Options, site provider.Site, log *zap.Logger) *Engine {
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = 20 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		opts:   opts,
		site:   site,
		filter: NewFilter(site, opts.BlockDecorative),
		log:    log,
	}
}

// Start launches Chromium, connects, and performs the warm-up navigation.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser != nil {
		return nil
	}

	l := e.newLauncher().Context(ctx)
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}
	e.log.Info("browser launched",
		zap.String("site", e.site.Name()),
		zap.String("control_url", controlURL))

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}
	e.launcher = l
	e.browser = b

	if e.opts.WarmupURL == "" {
		return nil
	}
	err = retry.Do(
		func() error { return e.warmup(ctx) },
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			e.log.Warn("warm-up navigation failed", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("warming up browser: %w", err)
	}
	return nil
}

// newLauncher builds the Chromium command line. Site isolation is disabled
// so the player iframe's requests reach the page's request hijacking.
func (e *Engine) newLauncher() *launcher.Launcher {
	l := launcher.New().
		Headless(e.opts.Headless).
		NoSandbox(e.opts.NoSandbox).
		Set("disable-site-isolation-trials").
		Set("disable-features", "IsolateOrigins,site-per-process").
		Set("disable-dev-shm-usage").
		Set("mute-audio").
		Set("no-first-run")

	if e.opts.Bin != "" {
		l = l.Bin(e.opts.Bin)
	}
	if e.opts.ExtensionDir != "" {
		dir, err := config.ExpandPath(e.opts.ExtensionDir)
		if err != nil {
			dir = e.opts.ExtensionDir
		}
		l = l.Set("load-extension", dir).
			Set("disable-extensions-except", dir)
	}
	return l
}

func (e *Engine) warmup(ctx context.Context) error {
	page, err := e.newPage(ctx, e.browser)
	if err != nil {
		return err
	}
	defer func() { _ = page.Close() }()

	p := page.Context(ctx).Timeout(e.opts.StepTimeout)
	if err := p.Navigate(e.opts.WarmupURL); err != nil {
		return fmt.Errorf("navigating to %s: %w", e.opts.WarmupURL, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for %s: %w", e.opts.WarmupURL, err)
	}
	return nil
}

// newPage creates a tab bound to ctx, so a wedged browser cannot hold the
// caller past its deadline.
func (e *Engine) newPage(ctx context.Context, b *rod.Browser) (*rod.Page, error) {
	if b == nil {
		return nil, errNotStarted
	}
	b = b.Context(ctx)
	if e.opts.Stealth {
		page, err := stealth.Page(b)
		if err != nil {
			return nil, fmt.Errorf("creating stealth page: %w", err)
		}
		return page, nil
	}
	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	return page, nil
}

// Open implements resolver.Opener. The returned session already filters and
// watches requests.
func (e *Engine) Open(ctx context.Context) (resolver.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	b := e.browser
	e.mu.Unlock()

	page, err := e.newPage(ctx, b)
	if err != nil {
		return nil, err
	}

	s := &session{
		page:        page,
		filter:      e.filter,
		interceptor: NewInterceptor(e.site.IsStreamPlaylist),
		stepTimeout: e.opts.StepTimeout,
		qualityFrom: e.opts.QualityFrom,
		qualityTo:   e.opts.QualityTo,
		log:         e.log,
	}
	if err := s.arm(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close disconnects and kills the browser process.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.browser == nil {
		return nil
	}

	err := e.browser.Close()
	if e.launcher != nil {
		e.launcher.Kill()
		e.launcher.Cleanup()
	}
	e.browser = nil
	e.launcher = nil
	if err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}
	return nil
}
