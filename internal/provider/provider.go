// Package provider isolates everything that couples the resolver to the
// target site's markup: URLs, selectors, and the matching policy used when
// picking titles, seasons and episodes.
package provider

import (
	"videoapi/internal/media"
)

// Selectors are the CSS selectors the navigation driver waits on and clicks.
type Selectors struct {
	// ResultList is the search result container.
	ResultList string
	// ResultItem matches the container's direct children, in DOM order.
	ResultItem string
	// ResultLink is the clickable title link inside a result item.
	ResultLink string

	// SeasonList is the season selector panel; SeasonItem its entries.
	SeasonList string
	SeasonItem string

	// EpisodeList is the active season's episode list; EpisodeItem its
	// entries and EpisodeLink the link carrying the "Eps N:" title.
	EpisodeList string
	EpisodeItem string
	EpisodeLink string

	// MovieServer and EpisodeServer select the playback server entry.
	MovieServer   string
	EpisodeServer string
}

// Listing is a parsed search result together with its position among the
// result container's children, so the driver can click the live element.
type Listing struct {
	Position int
	media.CatalogEntry
}

// Site is the adapter the resolver drives. Swapping it changes selectors and
// matching policy without touching the orchestration state machine.
type Site interface {
	// Name identifies the site in logs.
	Name() string

	// BaseURL returns the site's origin, e.g. "https://fmovies.ps".
	BaseURL() string

	// SearchURL returns the search page for a title.
	SearchURL(title string) string

	// Selectors returns the markup selectors.
	Selectors() Selectors

	// ParseListings extracts results from the rendered result container HTML.
	ParseListings(html string) ([]Listing, error)

	// MatchSeason reports whether a season selector label denotes season.
	MatchSeason(label string, season int) bool

	// MatchEpisode reports whether an episode link title denotes episode.
	MatchEpisode(title string, episode int) bool

	// IsWatchPage reports whether a page location is in the watch phase.
	IsWatchPage(location string) bool

	// IsDevtoolsProbe reports whether a request URL is an anti-automation
	// devtools detector.
	IsDevtoolsProbe(requestURL string) bool

	// IsStreamPlaylist reports whether a request URL is the signature
	// segment-playlist request.
	IsStreamPlaylist(requestURL string) bool
}
