// Package cache persists resolved stream URLs in SQLite so repeated queries
// skip the browser.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"videoapi/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS movies (
	key        TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	url        TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS episodes (
	key        TEXT NOT NULL,
	season     INTEGER NOT NULL,
	episode    INTEGER NOT NULL,
	title      TEXT NOT NULL,
	url        TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (key, season, episode)
);`

// Entry is one cached resolution.
type Entry struct {
	Title     string     `json:"title"`
	Kind      media.Kind `json:"type"`
	Season    int        `json:"season,omitempty"`
	Episode   int        `json:"episode,omitempty"`
	URL       string     `json:"url"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Cache is a SQLite-backed result cache. Titles are keyed case-insensitively.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	// A single connection keeps writers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func key(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Movie returns the cached URL for a movie title.
func (c *Cache) Movie(ctx context.Context, title string) (string, bool, error) {
	var url string
	err := c.db.QueryRowContext(ctx,
		`SELECT url FROM movies WHERE key = ?`, key(title)).Scan(&url)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cached movie: %w", err)
	}
	return url, true, nil
}

// Episode returns the cached URL for one episode of a show.
func (c *Cache) Episode(ctx context.Context, title string, season, episode int) (string, bool, error) {
	var url string
	err := c.db.QueryRowContext(ctx,
		`SELECT url FROM episodes WHERE key = ? AND season = ? AND episode = ?`,
		key(title), season, episode).Scan(&url)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cached episode: %w", err)
	}
	return url, true, nil
}

// PutMovie stores or replaces a movie's URL.
func (c *Cache) PutMovie(ctx context.Context, title, url string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO movies (key, title, url, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET title = excluded.title, url = excluded.url, updated_at = excluded.updated_at`,
		key(title), strings.TrimSpace(title), url, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("caching movie: %w", err)
	}
	return nil
}

// PutEpisode stores or replaces an episode's URL.
func (c *Cache) PutEpisode(ctx context.Context, title string, season, episode int, url string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO episodes (key, season, episode, title, url, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key, season, episode) DO UPDATE SET title = excluded.title, url = excluded.url, updated_at = excluded.updated_at`,
		key(title), season, episode, strings.TrimSpace(title), url, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("caching episode: %w", err)
	}
	return nil
}

// List returns every cached entry, newest first.
func (c *Cache) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT title, 0, 0, 0, url, updated_at FROM movies
		UNION ALL
		SELECT title, 1, season, episode, url, updated_at FROM episodes
		ORDER BY 6 DESC, 1, 3, 4`)
	if err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			isShow  int
			updated int64
		)
		if err := rows.Scan(&e.Title, &isShow, &e.Season, &e.Episode, &e.URL, &updated); err != nil {
			return nil, fmt.Errorf("reading cache row: %w", err)
		}
		e.Kind = media.Movie
		if isShow == 1 {
			e.Kind = media.TV
		}
		e.UpdatedAt = time.Unix(updated, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}
	return entries, nil
}

// Clear deletes every entry and returns how many were removed.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	defer tx.Rollback()

	var total int64
	for _, table := range []string{"movies", "episodes"} {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table)
		if err != nil {
			return 0, fmt.Errorf("clearing %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	return total, nil
}
