package resolver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"videoapi/internal/media"
	"videoapi/internal/provider"
)

// driver walks the site's search and player UI. Every method returns
// found=false for confirmed absence and an error for anything it could
// not determine.
type driver struct {
	site   provider.Site
	settle time.Duration
	log    *zap.Logger
}

// search navigates to the title's search page and parses the result list.
func (d *driver) search(ctx context.Context, page Page, title string) ([]provider.Listing, error) {
	sel := d.site.Selectors()
	searchURL := d.site.SearchURL(title)
	d.log.Debug("navigating to search", zap.String("url", searchURL))

	if err := page.Navigate(ctx, searchURL); err != nil {
		return nil, normalize(ctx, err, "loading search page")
	}

	list, err := page.WaitElement(ctx, sel.ResultList)
	if err != nil {
		return nil, stepError(ctx, sel.ResultList, err)
	}
	html, err := list.HTML()
	if err != nil {
		return nil, NewScrapeError(ErrCodeMarkup, "reading result list", err)
	}

	listings, err := d.site.ParseListings(html)
	if err != nil {
		return nil, NewScrapeError(ErrCodeMarkup, "parsing result list", err)
	}
	return listings, nil
}

// openTitle clicks the exact-match listing of the requested kind and waits
// for the detail page.
func (d *driver) openTitle(ctx context.Context, page Page, kind media.Kind, title string) (bool, error) {
	listings, err := d.search(ctx, page, title)
	if err != nil {
		return false, err
	}

	match, ok := provider.FindExact(listings, kind, title)
	if !ok {
		d.log.Debug("no exact match in catalog",
			zap.String("title", title),
			zap.Stringer("kind", kind),
			zap.Int("results", len(listings)))
		return false, nil
	}

	sel := d.site.Selectors()
	items, err := page.Elements(ctx, sel.ResultItem)
	if err != nil {
		return false, normalize(ctx, err, "listing result items")
	}
	if match.Position >= len(items) {
		return false, NewScrapeError(ErrCodeMarkup,
			fmt.Sprintf("result %d missing from live list of %d", match.Position, len(items)), nil)
	}
	links, err := items[match.Position].Elements(sel.ResultLink)
	if err != nil || len(links) == 0 {
		return false, NewScrapeError(ErrCodeMarkup, "result link not found", err)
	}

	d.log.Debug("opening title", zap.String("title", match.Title), zap.Int("position", match.Position))
	if err := d.clickAndWait(ctx, page, links[0]); err != nil {
		return false, err
	}
	return true, nil
}

// movie runs the movie flow up to starting playback.
func (d *driver) movie(ctx context.Context, page Page, title string) (bool, error) {
	found, err := d.openTitle(ctx, page, media.Movie, title)
	if err != nil || !found {
		return found, err
	}
	if err := d.clickServer(ctx, page, d.site.Selectors().MovieServer); err != nil {
		return false, err
	}
	return true, nil
}

// show runs the episode flow up to starting playback.
func (d *driver) show(ctx context.Context, page Page, title string, season, episode int) (bool, error) {
	found, err := d.openTitle(ctx, page, media.TV, title)
	if err != nil || !found {
		return found, err
	}

	found, err = d.selectSeason(ctx, page, season)
	if err != nil || !found {
		return found, err
	}

	found, err = d.selectEpisode(ctx, page, episode)
	if err != nil || !found {
		return found, err
	}

	if err := d.clickServer(ctx, page, d.site.Selectors().EpisodeServer); err != nil {
		return false, err
	}

	// The player script needs a moment before its playlist request goes out.
	if d.settle > 0 {
		timer := time.NewTimer(d.settle)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return false, NewScrapeError(ErrCodeTimeout, "settling player", ctx.Err())
		}
	}
	return true, nil
}

func (d *driver) selectSeason(ctx context.Context, page Page, season int) (bool, error) {
	sel := d.site.Selectors()
	if _, err := page.WaitElement(ctx, sel.SeasonList); err != nil {
		return false, stepError(ctx, sel.SeasonList, err)
	}

	entries, err := page.Elements(ctx, sel.SeasonItem)
	if err != nil {
		return false, normalize(ctx, err, "listing seasons")
	}
	for _, entry := range entries {
		label, err := entry.Text()
		if err != nil {
			return false, normalize(ctx, err, "reading season label")
		}
		if !d.site.MatchSeason(label, season) {
			continue
		}
		d.log.Debug("selecting season", zap.Int("season", season))
		if err := entry.Click(); err != nil {
			return false, normalize(ctx, err, "selecting season")
		}
		return true, nil
	}

	d.log.Debug("season not listed", zap.Int("season", season), zap.Int("seasons", len(entries)))
	return false, nil
}

func (d *driver) selectEpisode(ctx context.Context, page Page, episode int) (bool, error) {
	sel := d.site.Selectors()
	if _, err := page.WaitElement(ctx, sel.EpisodeList); err != nil {
		return false, stepError(ctx, sel.EpisodeList, err)
	}

	entries, err := page.Elements(ctx, sel.EpisodeItem)
	if err != nil {
		return false, normalize(ctx, err, "listing episodes")
	}
	for _, entry := range entries {
		links, err := entry.Elements(sel.EpisodeLink)
		if err != nil {
			return false, normalize(ctx, err, "reading episode entry")
		}
		if len(links) == 0 {
			continue
		}
		link := links[0]
		title, err := link.Attribute("title")
		if err != nil {
			return false, normalize(ctx, err, "reading episode title")
		}
		if !d.site.MatchEpisode(title, episode) {
			continue
		}
		d.log.Debug("selecting episode", zap.Int("episode", episode), zap.String("title", title))
		if err := d.clickAndWait(ctx, page, link); err != nil {
			return false, err
		}
		return true, nil
	}

	d.log.Debug("episode not listed", zap.Int("episode", episode), zap.Int("episodes", len(entries)))
	return false, nil
}

func (d *driver) clickServer(ctx context.Context, page Page, selector string) error {
	server, err := page.WaitElement(ctx, selector)
	if err != nil {
		return stepError(ctx, selector, err)
	}
	if err := server.Click(); err != nil {
		return normalize(ctx, err, "selecting server")
	}
	return nil
}

// clickAndWait arms the navigation wait before clicking so a fast load is
// not missed.
func (d *driver) clickAndWait(ctx context.Context, page Page, el Element) error {
	wait := page.ExpectNavigation(ctx)
	if err := el.Click(); err != nil {
		return normalize(ctx, err, "clicking link")
	}
	if err := wait(); err != nil {
		if ctx.Err() != nil {
			return NewScrapeError(ErrCodeTimeout, "waiting for navigation", err)
		}
		return NewScrapeError(ErrCodeNavigation, "click did not navigate", err)
	}
	return nil
}
