package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"videoapi/internal/media"
)

type movieResponse struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Info string `json:"info"`
}

type showResponse struct {
	URL     string `json:"url"`
	Name    string `json:"name"`
	Season  int    `json:"season"`
	Episode int    `json:"episode"`
	Info    string `json:"info"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) info() string {
	return fmt.Sprintf(infoTemplate, s.opts.SiteURL)
}

func (s *Server) handleMovie(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeStatus(w, http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	if url, ok := s.cachedMovie(ctx, name); ok {
		s.hosts.add(url)
		writeJSON(w, http.StatusOK, movieResponse{URL: url, Name: name, Info: s.info()})
		return
	}

	url, found, err := s.resolver.ResolveMovie(ctx, name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: NotFoundMessage})
		return
	}

	if s.cache != nil {
		if err := s.cache.PutMovie(ctx, name, url); err != nil {
			s.log.Warn("caching movie", zap.String("name", name), zap.Error(err))
		}
	}
	s.hosts.add(url)
	writeJSON(w, http.StatusOK, movieResponse{URL: url, Name: name, Info: s.info()})
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("name"))
	if name == "" {
		writeStatus(w, http.StatusBadRequest)
		return
	}
	season, err := media.ParsePositiveInt(q.Get("season"))
	if err != nil {
		writeStatus(w, http.StatusBadRequest)
		return
	}
	episode, err := media.ParsePositiveInt(q.Get("episode"))
	if err != nil {
		writeStatus(w, http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	resp := showResponse{Name: name, Season: season, Episode: episode, Info: s.info()}
	if url, ok := s.cachedEpisode(ctx, name, season, episode); ok {
		s.hosts.add(url)
		resp.URL = url
		writeJSON(w, http.StatusOK, resp)
		return
	}

	url, found, err := s.resolver.ResolveShow(ctx, name, season, episode)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: NotFoundMessage})
		return
	}

	if s.cache != nil {
		if err := s.cache.PutEpisode(ctx, name, season, episode, url); err != nil {
			s.log.Warn("caching episode", zap.String("name", name), zap.Error(err))
		}
	}
	s.hosts.add(url)
	resp.URL = url
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeStatus(w, http.StatusBadRequest)
		return
	}

	entries, err := s.resolver.Search(r.Context(), query)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []media.CatalogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) cachedMovie(ctx context.Context, name string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	url, ok, err := s.cache.Movie(ctx, name)
	if err != nil {
		s.log.Warn("reading cache", zap.String("name", name), zap.Error(err))
		return "", false
	}
	if ok {
		s.log.Debug("cache hit", zap.String("name", name))
	}
	return url, ok
}

func (s *Server) cachedEpisode(ctx context.Context, name string, season, episode int) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	url, ok, err := s.cache.Episode(ctx, name, season, episode)
	if err != nil {
		s.log.Warn("reading cache", zap.String("name", name), zap.Error(err))
		return "", false
	}
	if ok {
		s.log.Debug("cache hit", zap.String("name", name), zap.Int("season", season), zap.Int("episode", episode))
	}
	return url, ok
}

// fail maps a core error to a response. Invalid queries are the caller's
// fault; everything else is a retry-later failure whose cause stays in the log.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, media.ErrInvalidQuery) {
		writeStatus(w, http.StatusBadRequest)
		return
	}
	s.log.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("query", r.URL.RawQuery),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: ErrorMessage})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeStatus(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}
