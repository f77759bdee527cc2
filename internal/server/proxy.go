package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/grafov/m3u8"
	"go.uber.org/zap"

	"videoapi/internal/httputil"
)

// maxPlaylistSize bounds how much of a playlist is buffered for rewriting.
const maxPlaylistSize = 8 << 20

// Upstream response headers passed through to the client.
var forwardHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Content-Range",
	"Accept-Ranges",
	"Cache-Control",
	"Last-Modified",
	"ETag",
}

// handleProxy relays a stream resource from the CDN with the site as
// referer. Playlists are rewritten so every nested URI comes back here.
// Only hosts the API has handed out or configured are fetched.
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if err := httputil.ValidateURL(target); err != nil {
		writeStatus(w, http.StatusBadRequest)
		return
	}
	if !s.hosts.allowed(target) {
		s.log.Debug("proxy host not allowed", zap.String("url", target))
		writeStatus(w, http.StatusForbidden)
		return
	}

	req, err := httputil.NewRequest(r.Context(), target, s.referer())
	if err != nil {
		writeStatus(w, http.StatusBadRequest)
		return
	}
	if rng := r.Header.Get("Range"); rng != "" {
		req.Header.Set("Range", rng)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("proxy upstream failed", zap.String("url", target), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: ErrorMessage})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && isPlaylist(target, resp.Header.Get("Content-Type")) {
		s.relayPlaylist(w, resp, target)
		return
	}

	for _, h := range forwardHeaders {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		s.log.Debug("proxy copy interrupted", zap.String("url", target), zap.Error(err))
	}
}

func (s *Server) relayPlaylist(w http.ResponseWriter, resp *http.Response, target string) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistSize))
	if err != nil {
		s.log.Warn("reading playlist", zap.String("url", target), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: ErrorMessage})
		return
	}

	out, err := rewritePlaylist(body, target, "/proxy", s.hosts.add)
	if err != nil {
		s.log.Warn("rewriting playlist", zap.String("url", target), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: ErrorMessage})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) referer() string {
	if s.opts.SiteURL == "" {
		return ""
	}
	return strings.TrimRight(s.opts.SiteURL, "/") + "/"
}

func isPlaylist(target, contentType string) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "mpegurl") {
		return true
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".m3u8")
}

// RewritePlaylist resolves every URI in an HLS playlist against base and
// points it at proxyPath?url=<absolute>.
func RewritePlaylist(body []byte, base, proxyPath string) ([]byte, error) {
	return rewritePlaylist(body, base, proxyPath, nil)
}

// rewritePlaylist is RewritePlaylist with visit called on every absolute URI.
func rewritePlaylist(body []byte, base, proxyPath string, visit func(string)) ([]byte, error) {
	p, listType, err := m3u8.DecodeFrom(bytes.NewReader(body), false)
	if err != nil {
		return nil, fmt.Errorf("decoding playlist: %w", err)
	}

	proxied := func(uri string) string {
		if uri == "" {
			return uri
		}
		abs := httputil.ResolveReference(base, uri)
		if visit != nil {
			visit(abs)
		}
		return proxyPath + "?url=" + url.QueryEscape(abs)
	}

	switch listType {
	case m3u8.MASTER:
		master := p.(*m3u8.MasterPlaylist)
		seen := map[*m3u8.Alternative]bool{}
		for _, v := range master.Variants {
			if v == nil {
				continue
			}
			v.URI = proxied(v.URI)
			for _, alt := range v.Alternatives {
				if alt == nil || seen[alt] {
					continue
				}
				seen[alt] = true
				alt.URI = proxied(alt.URI)
			}
		}
		return master.Encode().Bytes(), nil

	case m3u8.MEDIA:
		pl := p.(*m3u8.MediaPlaylist)
		keys := map[*m3u8.Key]bool{}
		maps := map[*m3u8.Map]bool{}
		rewriteKey := func(k *m3u8.Key) {
			if k == nil || keys[k] {
				return
			}
			keys[k] = true
			k.URI = proxied(k.URI)
		}
		rewriteMap := func(m *m3u8.Map) {
			if m == nil || maps[m] {
				return
			}
			maps[m] = true
			m.URI = proxied(m.URI)
		}

		rewriteKey(pl.Key)
		rewriteMap(pl.Map)
		for _, seg := range pl.Segments {
			if seg == nil {
				continue
			}
			seg.URI = proxied(seg.URI)
			rewriteKey(seg.Key)
			rewriteMap(seg.Map)
		}
		return pl.Encode().Bytes(), nil
	}

	return nil, fmt.Errorf("unknown playlist type")
}
