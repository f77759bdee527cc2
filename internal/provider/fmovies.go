package provider

import (
	"fmt"
	"strconv"
	"strings"

	"videoapi/internal/httputil"
)

const (
	devtoolsMarker  = "devtool"
	watchMarker     = "watch-"
	playlistMarker  = "index.m3u8"
	episodeTemplate = "Eps %d:"
)

// FMovies implements Site for fmovies-style mirrors (same markup family as
// flixhq: .film_list-wrap result grid, #content-episodes player panel).
type FMovies struct {
	base string // e.g., "fmovies.ps"
}

// NewFMovies creates the adapter for the given mirror host.
func NewFMovies(base string) *FMovies {
	return &FMovies{base: base}
}

// Name implements Site.
func (f *FMovies) Name() string {
	return f.base
}

// BaseURL implements Site.
func (f *FMovies) BaseURL() string {
	return "https://" + f.base
}

// SearchURL implements Site. Spaces become the site's "-" separator.
func (f *FMovies) SearchURL(title string) string {
	return fmt.Sprintf("%s/search/%s", f.BaseURL(), httputil.EncodeQuery(title))
}

// Selectors implements Site.
//
// The second server entry is hardcoded: the first one is unreliable and
// ad-heavy on this site. This tracks the current markup and will break when
// the site reorders its servers.
func (f *FMovies) Selectors() Selectors {
	return Selectors{
		ResultList: ".film_list-wrap",
		ResultItem: ".film_list-wrap > *",
		ResultLink: ".film-detail > .film-name > a",

		SeasonList: "#content-episodes > div > div > div.slc-eps > div.sl-title > div > div",
		SeasonItem: "#content-episodes > div > div > div.slc-eps > div.sl-title > div > div > *",

		EpisodeList: ".tab-content > .active > ul",
		EpisodeItem: ".tab-content > .active > ul > *",
		EpisodeLink: "a",

		MovieServer:   "#content-episodes > div.server-select > ul > li:nth-child(2) > a",
		EpisodeServer: ".server-select > ul > li:nth-child(2) > a",
	}
}

// ParseListings implements Site.
func (f *FMovies) ParseListings(html string) ([]Listing, error) {
	return parseListings(html, f.Selectors())
}

// MatchSeason implements Site. The label's last whitespace-separated token
// must parse to the season number, so "Season 12" never matches season 2
// and "Season 01" still matches season 1.
func (f *FMovies) MatchSeason(label string, season int) bool {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return false
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return false
	}
	return n == season
}

// MatchEpisode implements Site. Episode links carry titles such as
// "Eps 3: Title"; the colon keeps episode 1 from matching "Eps 12:".
func (f *FMovies) MatchEpisode(title string, episode int) bool {
	return strings.HasPrefix(title, fmt.Sprintf(episodeTemplate, episode))
}

// IsWatchPage implements Site.
func (f *FMovies) IsWatchPage(location string) bool {
	return strings.Contains(location, watchMarker)
}

// IsDevtoolsProbe implements Site.
func (f *FMovies) IsDevtoolsProbe(requestURL string) bool {
	return strings.Contains(requestURL, devtoolsMarker)
}

// IsStreamPlaylist implements Site.
func (f *FMovies) IsStreamPlaylist(requestURL string) bool {
	return strings.Contains(requestURL, playlistMarker)
}
