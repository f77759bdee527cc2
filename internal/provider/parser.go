package provider

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"videoapi/internal/media"
)

// parseListings extracts results from the rendered result container.
// Items without a title link or with an unknown catalog type are skipped,
// but Position still counts every child so it lines up with the live DOM.
func parseListings(html string, sel Selectors) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing result list: %w", err)
	}

	container := doc.Find(sel.ResultList).First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("result list %q not present", sel.ResultList)
	}

	var listings []Listing
	container.Children().Each(func(i int, s *goquery.Selection) {
		link := s.Find(sel.ResultLink).First()
		title := strings.TrimSpace(link.AttrOr("title", ""))
		if title == "" {
			title = strings.TrimSpace(link.Text())
		}
		if title == "" {
			return
		}

		kind, ok := media.ParseKind(s.Find(".film-detail > .fd-infor > .fdi-type").First().Text())
		if !ok {
			return
		}

		entry := media.CatalogEntry{
			Title:     title,
			Kind:      kind,
			PosterURL: posterURL(s.Find(".film-poster > img").First()),
			URL:       link.AttrOr("href", ""),
		}
		if kind == media.Movie {
			entry.Year = strings.TrimSpace(s.Find(".film-detail > .fd-infor > .fdi-item").First().Text())
			entry.Duration = strings.TrimSpace(s.Find(".film-detail > .fd-infor > .fdi-duration").First().Text())
		}

		listings = append(listings, Listing{Position: i, CatalogEntry: entry})
	})

	return listings, nil
}

// posterURL prefers the lazy-load attribute the grid uses, then src.
func posterURL(img *goquery.Selection) string {
	if src := strings.TrimSpace(img.AttrOr("data-src", "")); src != "" {
		return src
	}
	return strings.TrimSpace(img.AttrOr("src", ""))
}

// Catalog converts listings into search output: titles are unique
// (case-sensitive), first occurrence wins.
func Catalog(listings []Listing) []media.CatalogEntry {
	unique := lo.UniqBy(listings, func(l Listing) string { return l.Title })
	return lo.Map(unique, func(l Listing, _ int) media.CatalogEntry { return l.CatalogEntry })
}

// FindExact returns the first listing of the given kind whose title equals
// title case-insensitively. No fuzzy or partial matching.
func FindExact(listings []Listing, kind media.Kind, title string) (Listing, bool) {
	want := strings.ToLower(strings.TrimSpace(title))
	return lo.Find(listings, func(l Listing) bool {
		return l.Kind == kind && strings.ToLower(l.Title) == want
	})
}

// FormatDisplayTitle creates a display string for CLI output.
func FormatDisplayTitle(e media.CatalogEntry) string {
	parts := []string{e.Title}
	if e.Year != "" {
		parts = append(parts, fmt.Sprintf("(%s)", e.Year))
	}
	parts = append(parts, fmt.Sprintf("[%s]", e.Kind))
	return strings.Join(parts, " ")
}
