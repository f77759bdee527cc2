// Package media defines shared types for the videoapi application.
package media

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind represents whether content is a movie or TV show.
type Kind int

const (
	Movie Kind = iota
	TV
)

// String returns the catalog label the site uses for the kind.
func (k Kind) String() string {
	switch k {
	case Movie:
		return "Movie"
	case TV:
		return "TV"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind as its catalog label.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind maps a catalog label ("Movie", "TV") to a Kind.
func ParseKind(label string) (Kind, bool) {
	switch strings.TrimSpace(label) {
	case "Movie":
		return Movie, true
	case "TV":
		return TV, true
	default:
		return 0, false
	}
}

// ErrInvalidQuery is returned when a query is rejected before any navigation.
var ErrInvalidQuery = errors.New("invalid query")

// Query is a single resolution request.
type Query struct {
	Kind    Kind
	Title   string
	Season  int // TV only
	Episode int // TV only
}

// MovieQuery builds a movie query.
func MovieQuery(title string) Query {
	return Query{Kind: Movie, Title: title}
}

// ShowQuery builds a TV episode query.
func ShowQuery(title string, season, episode int) Query {
	return Query{Kind: TV, Title: title, Season: season, Episode: episode}
}

// Validate checks the query shape: a title, and season/episode present
// (positive) for shows only.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidQuery)
	}
	switch q.Kind {
	case Movie:
		if q.Season != 0 || q.Episode != 0 {
			return fmt.Errorf("%w: movies have no season or episode", ErrInvalidQuery)
		}
	case TV:
		if q.Season <= 0 {
			return fmt.Errorf("%w: season must be a positive integer, got %d", ErrInvalidQuery, q.Season)
		}
		if q.Episode <= 0 {
			return fmt.Errorf("%w: episode must be a positive integer, got %d", ErrInvalidQuery, q.Episode)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidQuery, q.Kind)
	}
	return nil
}

// String renders the query for logs, e.g. "Breaking Bad S02E05".
func (q Query) String() string {
	if q.Kind == TV {
		return fmt.Sprintf("%s S%02dE%02d", q.Title, q.Season, q.Episode)
	}
	return q.Title
}

// ParsePositiveInt parses a season or episode number given as text.
// Only plain decimal digits are accepted.
func ParsePositiveInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: number cannot be empty", ErrInvalidQuery)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q is not a positive integer", ErrInvalidQuery, s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a positive integer", ErrInvalidQuery, s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %q is not a positive integer", ErrInvalidQuery, s)
	}
	return n, nil
}

// CatalogEntry is one search result scraped from the site's result list.
type CatalogEntry struct {
	Title     string `json:"title"`
	Kind      Kind   `json:"type"`
	PosterURL string `json:"posterImage,omitempty"`
	Year      string `json:"yearReleased,omitempty"` // movies only
	Duration  string `json:"duration,omitempty"`     // movies only
	URL       string `json:"url,omitempty"`          // detail page path
}
