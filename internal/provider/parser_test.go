package provider

import (
	"os"
	"testing"

	"videoapi/internal/media"
)

func loadFixture(t *testing.T, filename string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + filename)
	if err != nil {
		t.Fatalf("reading test fixture %s: %v", filename, err)
	}
	return string(data)
}

func TestParseListings(t *testing.T) {
	site := NewFMovies("fmovies.ps")
	listings, err := site.ParseListings(loadFixture(t, "search_results.html"))
	if err != nil {
		t.Fatalf("ParseListings() error: %v", err)
	}

	// The "Trailer" item has no known type and the clearfix has no link.
	if len(listings) != 4 {
		t.Fatalf("expected 4 listings, got %d", len(listings))
	}

	first := listings[0]
	if first.Title != "The Matrix" {
		t.Errorf("listings[0].Title = %q, want 'The Matrix'", first.Title)
	}
	if first.Kind != media.Movie {
		t.Errorf("listings[0].Kind = %v, want Movie", first.Kind)
	}
	if first.Year != "1999" || first.Duration != "136m" {
		t.Errorf("listings[0] year/duration = %q/%q, want 1999/136m", first.Year, first.Duration)
	}
	if first.PosterURL != "https://img.example.com/matrix.jpg" {
		t.Errorf("listings[0].PosterURL = %q, want lazy data-src", first.PosterURL)
	}
	if first.URL != "/watch-movie/the-matrix-19724" {
		t.Errorf("listings[0].URL = %q", first.URL)
	}

	// Positions count every child of the container, clearfix included.
	wantPositions := []int{0, 1, 3, 4}
	for i, l := range listings {
		if l.Position != wantPositions[i] {
			t.Errorf("listings[%d].Position = %d, want %d", i, l.Position, wantPositions[i])
		}
	}

	tv := listings[2]
	if tv.Kind != media.TV {
		t.Errorf("listings[2].Kind = %v, want TV", tv.Kind)
	}
	if tv.Year != "" || tv.Duration != "" {
		t.Errorf("TV entries carry no year/duration, got %q/%q", tv.Year, tv.Duration)
	}
}

func TestParseListingsMissingContainer(t *testing.T) {
	site := NewFMovies("fmovies.ps")
	if _, err := site.ParseListings(`<div class="something-else"></div>`); err == nil {
		t.Fatal("expected error when the result list is absent")
	}
}

func TestParseListingsMalicious(t *testing.T) {
	site := NewFMovies("fmovies.ps")
	listings, err := site.ParseListings(loadFixture(t, "search_malicious.html"))
	if err != nil {
		t.Fatalf("ParseListings() error: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}
	if listings[0].Title != "'; rm -rf / #" {
		t.Errorf("shell injection title = %q, want literal string", listings[0].Title)
	}
	if listings[1].Title != "<script>alert(1)</script>" {
		t.Errorf("markup title = %q, want literal string", listings[1].Title)
	}
}

func TestCatalogDedupe(t *testing.T) {
	site := NewFMovies("fmovies.ps")
	listings, err := site.ParseListings(loadFixture(t, "search_results.html"))
	if err != nil {
		t.Fatalf("ParseListings() error: %v", err)
	}

	entries := Catalog(listings)
	if len(entries) != 3 {
		t.Fatalf("expected 3 unique entries, got %d", len(entries))
	}

	seen := map[string]bool{}
	for _, e := range entries {
		if seen[e.Title] {
			t.Errorf("duplicate title %q in catalog", e.Title)
		}
		seen[e.Title] = true
	}

	// First occurrence wins.
	if entries[0].Year != "1999" {
		t.Errorf("kept duplicate year = %q, want first occurrence 1999", entries[0].Year)
	}
}

func TestCatalogDedupeIsCaseSensitive(t *testing.T) {
	listings := []Listing{
		{CatalogEntry: media.CatalogEntry{Title: "Dune"}},
		{CatalogEntry: media.CatalogEntry{Title: "DUNE"}},
		{CatalogEntry: media.CatalogEntry{Title: "Dune"}},
	}
	if got := Catalog(listings); len(got) != 2 {
		t.Errorf("expected 2 entries, got %d", len(got))
	}
}

func TestFindExact(t *testing.T) {
	listings := []Listing{
		{Position: 0, CatalogEntry: media.CatalogEntry{Title: "The Matrix Reloaded", Kind: media.Movie}},
		{Position: 1, CatalogEntry: media.CatalogEntry{Title: "The Matrix", Kind: media.Movie}},
		{Position: 2, CatalogEntry: media.CatalogEntry{Title: "The Matrix", Kind: media.Movie}},
		{Position: 3, CatalogEntry: media.CatalogEntry{Title: "Show A", Kind: media.Movie}},
	}

	tests := []struct {
		name    string
		kind    media.Kind
		title   string
		wantOK  bool
		wantPos int
	}{
		{"exact lowercase query", media.Movie, "the matrix", true, 1},
		{"superstring never selected", media.Movie, "the matrix reloaded", true, 0},
		{"prefix is not a match", media.Movie, "the mat", false, 0},
		{"kind filter", media.TV, "show a", false, 0},
		{"movie kind", media.Movie, "SHOW A", true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindExact(listings, tt.kind, tt.title)
			if ok != tt.wantOK {
				t.Fatalf("FindExact() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got.Position != tt.wantPos {
				t.Errorf("FindExact() position = %d, want %d", got.Position, tt.wantPos)
			}
		})
	}
}

func TestFormatDisplayTitle(t *testing.T) {
	tests := []struct {
		name     string
		entry    media.CatalogEntry
		expected string
	}{
		{
			"movie with year",
			media.CatalogEntry{Title: "Inception", Year: "2010", Kind: media.Movie},
			"Inception (2010) [Movie]",
		},
		{
			"tv without year",
			media.CatalogEntry{Title: "Breaking Bad", Kind: media.TV},
			"Breaking Bad [TV]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDisplayTitle(tt.entry)
			if got != tt.expected {
				t.Errorf("FormatDisplayTitle() = %q, want %q", got, tt.expected)
			}
		})
	}
}
