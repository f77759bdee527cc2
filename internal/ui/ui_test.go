package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"videoapi/internal/cache"
	"videoapi/internal/media"
)

func TestCatalogTable(t *testing.T) {
	out := CatalogTable([]media.CatalogEntry{
		{Title: "Dune", Kind: media.Movie, Year: "2021", Duration: "155m"},
		{Title: "Dune: Prophecy", Kind: media.TV},
	})
	for _, want := range []string{"Title", "Dune", "Dune: Prophecy", "Movie", "TV", "2021", "155m"} {
		if !strings.Contains(out, want) {
			t.Errorf("CatalogTable() missing %q:\n%s", want, out)
		}
	}
}

func TestCatalogTableEmpty(t *testing.T) {
	if out := CatalogTable(nil); !strings.Contains(out, "No results") {
		t.Errorf("CatalogTable(nil) = %q", out)
	}
}

func TestCacheTable(t *testing.T) {
	out := CacheTable([]cache.Entry{
		{Title: "Dark", Kind: media.TV, Season: 2, Episode: 5, URL: "https://cdn.example.com/a.m3u8", UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		{Title: "Dune", Kind: media.Movie, URL: "https://cdn.example.com/b.m3u8", UpdatedAt: time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)},
	})
	for _, want := range []string{"Dark", "S02E05", "Dune", "2024-03-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("CacheTable() missing %q:\n%s", want, out)
		}
	}
}

func TestSpinReturnsResult(t *testing.T) {
	var out bytes.Buffer
	want := errors.New("boom")

	err := Spin(context.Background(), &out, "Resolving", func(ctx context.Context) error {
		time.Sleep(20 * time.Millisecond)
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("Spin() error = %v, want %v", err, want)
	}
}
