package provider

import "testing"

func TestSearchURL(t *testing.T) {
	site := NewFMovies("fmovies.ps")
	tests := []struct {
		input    string
		expected string
	}{
		{"The Matrix", "https://fmovies.ps/search/The-Matrix"},
		{"breaking  bad", "https://fmovies.ps/search/breaking-bad"},
		{"what?", "https://fmovies.ps/search/what%3F"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := site.SearchURL(tt.input); got != tt.expected {
				t.Errorf("SearchURL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMatchSeason(t *testing.T) {
	site := NewFMovies("fmovies.ps")
	tests := []struct {
		name   string
		label  string
		season int
		want   bool
	}{
		{"exact", "Season 2", 2, true},
		{"other season", "Season 1", 2, false},
		{"multi digit query vs single digit label", "Season 2", 12, false},
		{"single digit query vs multi digit label", "Season 12", 2, false},
		{"multi digit exact", "Season 12", 12, true},
		{"zero padded label", "Season 01", 1, true},
		{"surrounding whitespace", "  Season 3\n", 3, true},
		{"no number", "Specials", 1, false},
		{"empty", "", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := site.MatchSeason(tt.label, tt.season); got != tt.want {
				t.Errorf("MatchSeason(%q, %d) = %v, want %v", tt.label, tt.season, got, tt.want)
			}
		})
	}
}

func TestMatchEpisode(t *testing.T) {
	site := NewFMovies("fmovies.ps")
	tests := []struct {
		title   string
		episode int
		want    bool
	}{
		{"Eps 1: Pilot", 1, true},
		{"Eps 12: Finale", 1, false},
		{"Eps 12: Finale", 12, true},
		{"Episode 1: Pilot", 1, false},
		{"eps 1: Pilot", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := site.MatchEpisode(tt.title, tt.episode); got != tt.want {
				t.Errorf("MatchEpisode(%q, %d) = %v, want %v", tt.title, tt.episode, got, tt.want)
			}
		})
	}
}

func TestMarkers(t *testing.T) {
	site := NewFMovies("fmovies.ps")

	if !site.IsWatchPage("https://fmovies.ps/watch-movie/the-matrix-19724.5298") {
		t.Error("watch-movie page should be in the watch phase")
	}
	if site.IsWatchPage("https://fmovies.ps/search/the-matrix") {
		t.Error("search page should not be in the watch phase")
	}
	if !site.IsDevtoolsProbe("https://cdn.example.com/js/disable-devtool.min.js") {
		t.Error("devtool detector should be flagged")
	}
	if site.IsDevtoolsProbe("https://cdn.example.com/js/player.js") {
		t.Error("player script should not be flagged")
	}
	if !site.IsStreamPlaylist("https://cdn.example.com/_v7/abc/360/index.m3u8") {
		t.Error("index.m3u8 should be the signature request")
	}
	if site.IsStreamPlaylist("https://cdn.example.com/_v7/abc/360/seg-1-v1-a1.ts") {
		t.Error("segments are not the signature request")
	}
}
