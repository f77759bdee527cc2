package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"videoapi/internal/cache"
	"videoapi/internal/media"
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(faintStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// CatalogTable renders search results.
func CatalogTable(entries []media.CatalogEntry) string {
	if len(entries) == 0 {
		return Faint("No results.")
	}
	t := newTable("#", "Title", "Type", "Year", "Duration")
	for i, e := range entries {
		t.Row(fmt.Sprintf("%d", i+1), e.Title, e.Kind.String(), e.Year, e.Duration)
	}
	return t.Render()
}

// CacheTable renders cached resolutions.
func CacheTable(entries []cache.Entry) string {
	if len(entries) == 0 {
		return Faint("Cache is empty.")
	}
	t := newTable("Title", "Episode", "Cached", "URL")
	for _, e := range entries {
		ep := ""
		if e.Kind == media.TV {
			ep = fmt.Sprintf("S%02dE%02d", e.Season, e.Episode)
		}
		t.Row(e.Title, ep, e.UpdatedAt.Format("2006-01-02 15:04"), e.URL)
	}
	return t.Render()
}
