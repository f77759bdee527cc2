package server

import (
	"net/url"
	"strings"
	"sync"
)

// hostSet is the set of upstream hosts /proxy may fetch from. It starts
// with the configured hosts and grows with every stream URL the API hands
// out and every URI inside a relayed playlist.
type hostSet struct {
	mu    sync.RWMutex
	hosts map[string]struct{}
}

func newHostSet(initial []string) *hostSet {
	h := &hostSet{hosts: map[string]struct{}{}}
	for _, host := range initial {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			h.hosts[host] = struct{}{}
		}
	}
	return h
}

// add records the host of rawURL.
func (h *hostSet) add(rawURL string) {
	host := hostOf(rawURL)
	if host == "" {
		return
	}
	h.mu.Lock()
	h.hosts[host] = struct{}{}
	h.mu.Unlock()
}

func (h *hostSet) allowed(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.hosts[host]
	return ok
}

// hostOf returns the lowercased host:port of rawURL, or "" when unparsable.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
