package browser

import (
	"context"
	"strings"
	"sync"
)

// Interceptor captures the first request URL accepted by match. It is armed
// on creation and never re-arms.
type Interceptor struct {
	match func(url string) bool

	once sync.Once
	done chan struct{}
	url  string
}

// NewInterceptor creates an armed interceptor.
func NewInterceptor(match func(url string) bool) *Interceptor {
	return &Interceptor{match: match, done: make(chan struct{})}
}

// Observe offers a request URL. It reports whether this call captured it.
func (i *Interceptor) Observe(url string) bool {
	if !i.match(url) {
		return false
	}
	captured := false
	i.once.Do(func() {
		i.url = url
		captured = true
		close(i.done)
	})
	return captured
}

// Done is closed once a URL has been captured.
func (i *Interceptor) Done() <-chan struct{} {
	return i.done
}

// Wait blocks until a URL is captured or ctx ends.
func (i *Interceptor) Wait(ctx context.Context) (string, error) {
	select {
	case <-i.done:
		return i.url, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// RewriteQuality swaps the CDN's quality path segment, e.g. /360/ for
// /1080/. The URL is returned unchanged when the segment is absent.
func RewriteQuality(url, from, to string) string {
	if from == "" || to == "" || from == to {
		return url
	}
	return strings.Replace(url, "/"+from+"/", "/"+to+"/", 1)
}
