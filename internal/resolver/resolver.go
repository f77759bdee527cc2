// Package resolver turns movie and episode queries into stream playlist URLs
// by driving a render session through the site's search and player UI.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"videoapi/internal/media"
	"videoapi/internal/provider"
)

// Options bound each resolution.
type Options struct {
	MaxSessions    int
	ResolveTimeout time.Duration
	SettleDelay    time.Duration
}

// Resolver is safe for concurrent use. Each call gets its own session;
// at most MaxSessions run at once.
type Resolver struct {
	opener  Opener
	sem     *semaphore.Weighted
	timeout time.Duration
	driver  *driver
	log     *zap.Logger
}

// New creates a Resolver backed by opener.
func New(opener Opener, site provider.Site, opts Options, log *zap.Logger) *Resolver {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		opener:  opener,
		sem:     semaphore.NewWeighted(int64(opts.MaxSessions)),
		timeout: opts.ResolveTimeout,
		driver:  &driver{site: site, settle: opts.SettleDelay, log: log},
		log:     log,
	}
}

// ResolveMovie returns the stream URL for the movie titled exactly title.
// found is false when the catalog has no such movie.
func (r *Resolver) ResolveMovie(ctx context.Context, title string) (string, bool, error) {
	q := media.MovieQuery(title)
	return r.resolve(ctx, q, func(ctx context.Context, page Page) (bool, error) {
		return r.driver.movie(ctx, page, q.Title)
	})
}

// ResolveShow returns the stream URL for one episode. found is false when
// the title, season or episode is not listed.
func (r *Resolver) ResolveShow(ctx context.Context, title string, season, episode int) (string, bool, error) {
	q := media.ShowQuery(title, season, episode)
	return r.resolve(ctx, q, func(ctx context.Context, page Page) (bool, error) {
		return r.driver.show(ctx, page, q.Title, q.Season, q.Episode)
	})
}

// Search returns the catalog for query, deduplicated by title. No result
// is clicked and no stream is awaited.
func (r *Resolver) Search(ctx context.Context, query string) ([]media.CatalogEntry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query cannot be empty", media.ErrInvalidQuery)
	}

	var listings []provider.Listing
	err := r.withSession(ctx, query, func(ctx context.Context, sess Session) error {
		var err error
		listings, err = r.driver.search(ctx, sess, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	return provider.Catalog(listings), nil
}

type flow func(ctx context.Context, page Page) (bool, error)

func (r *Resolver) resolve(ctx context.Context, q media.Query, run flow) (string, bool, error) {
	if err := q.Validate(); err != nil {
		return "", false, err
	}

	var (
		streamURL string
		found     bool
	)
	err := r.withSession(ctx, q.String(), func(ctx context.Context, sess Session) error {
		var err error
		found, err = run(ctx, sess)
		if err != nil || !found {
			return err
		}

		streamURL, err = sess.WaitStream(ctx)
		if err != nil {
			return NewScrapeError(ErrCodeNoStream, "stream playlist never requested", err)
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, nil
	}

	r.log.Info("resolved", zap.String("query", q.String()), zap.String("url", streamURL))
	return streamURL, true, nil
}

// withSession admits the call, bounds it by the resolution deadline and
// closes the session on every path.
func (r *Resolver) withSession(ctx context.Context, label string, fn func(context.Context, Session) error) error {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return NewScrapeError(ErrCodeBusy, "waiting for a free session", err)
	}
	defer r.sem.Release(1)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	sess, err := r.opener.Open(ctx)
	if err != nil {
		err = NewScrapeError(ErrCodeBrowser, "opening session", err)
		r.log.Warn("resolution failed", zap.String("query", label), zap.Error(err))
		return err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			r.log.Warn("closing session", zap.String("query", label), zap.Error(cerr))
		}
	}()

	if err := fn(ctx, sess); err != nil {
		err = normalize(ctx, err, "resolving "+label)
		r.log.Warn("resolution failed",
			zap.String("query", label),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return err
	}

	r.log.Debug("session finished", zap.String("query", label), zap.Duration("elapsed", time.Since(start)))
	return nil
}
