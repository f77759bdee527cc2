package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"videoapi/internal/provider"
)

var errNoElement = errors.New("element did not appear")

// fakeElement is a canned DOM node. Clicking it records name on its page.
type fakeElement struct {
	page     *fakePage
	name     string
	text     string
	attrs    map[string]string
	html     string
	children map[string][]*fakeElement
	clickErr error
}

func (e *fakeElement) Text() (string, error) { return e.text, nil }

func (e *fakeElement) Attribute(name string) (string, error) { return e.attrs[name], nil }

func (e *fakeElement) HTML() (string, error) { return e.html, nil }

func (e *fakeElement) Click() error {
	if e.clickErr != nil {
		return e.clickErr
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.page.clicks = append(e.page.clicks, e.name)
	return nil
}

func (e *fakeElement) Elements(selector string) ([]Element, error) {
	return toElements(e.children[selector]), nil
}

func toElements(in []*fakeElement) []Element {
	out := make([]Element, len(in))
	for i, e := range in {
		out[i] = e
	}
	return out
}

// fakePage answers selectors from a static map. A selector with no entry
// behaves like a wait that never matched.
type fakePage struct {
	mu          sync.Mutex
	elements    map[string][]*fakeElement
	navigated   []string
	clicks      []string
	navigations int
	navErr      error
	// stuck makes every click-driven navigation wait fail.
	stuck error
}

func newFakePage() *fakePage {
	return &fakePage{elements: map[string][]*fakeElement{}}
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	return p.navErr
}

func (p *fakePage) WaitElement(ctx context.Context, selector string) (Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	els := p.elements[selector]
	if len(els) == 0 {
		return nil, errNoElement
	}
	return els[0], nil
}

func (p *fakePage) Elements(ctx context.Context, selector string) ([]Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return toElements(p.elements[selector]), nil
}

func (p *fakePage) ExpectNavigation(ctx context.Context) func() error {
	return func() error {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.stuck != nil {
			return p.stuck
		}
		p.navigations++
		return nil
	}
}

func (p *fakePage) add(selector string, els ...*fakeElement) {
	for _, e := range els {
		e.page = p
	}
	p.elements[selector] = append(p.elements[selector], els...)
}

func (p *fakePage) clicked() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...)
}

// fakeSession wraps a fakePage with a stream that is either available
// immediately or never observed.
type fakeSession struct {
	*fakePage
	stream string

	mu      sync.Mutex
	waited  bool
	closes  int
	closeFn func()
}

func (s *fakeSession) WaitStream(ctx context.Context) (string, error) {
	s.mu.Lock()
	s.waited = true
	s.mu.Unlock()
	if s.stream != "" {
		return s.stream, nil
	}
	<-ctx.Done()
	return "", ctx.Err()
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *fakeSession) streamAwaited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waited
}

func (s *fakeSession) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

type fakeOpener struct {
	mu      sync.Mutex
	session *fakeSession
	err     error
	opens   int
}

func (o *fakeOpener) Open(ctx context.Context) (Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return o.session, nil
}

func (o *fakeOpener) openCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens
}

type catalogItem struct {
	title string
	kind  string
}

// addCatalog renders a result list the way the site does and registers the
// live result items with their title links.
func addCatalog(p *fakePage, site provider.Site, items ...catalogItem) {
	sel := site.Selectors()

	var b strings.Builder
	b.WriteString(`<div class="film_list-wrap">`)
	for _, it := range items {
		fmt.Fprintf(&b, `<div class="flw-item"><div class="film-detail">`+
			`<h2 class="film-name"><a href="/watch-x" title="%s">%s</a></h2>`+
			`<div class="fd-infor"><span class="fdi-type">%s</span></div>`+
			`</div></div>`, it.title, it.title, it.kind)
	}
	b.WriteString(`</div>`)
	p.add(sel.ResultList, &fakeElement{name: "results", html: b.String()})

	for _, it := range items {
		link := &fakeElement{name: "title:" + it.title + "/" + it.kind, attrs: map[string]string{"title": it.title}}
		link.page = p
		p.add(sel.ResultItem, &fakeElement{children: map[string][]*fakeElement{sel.ResultLink: {link}}})
	}
}

func addSeasons(p *fakePage, site provider.Site, labels ...string) {
	sel := site.Selectors()
	p.add(sel.SeasonList, &fakeElement{name: "season-list"})
	for _, label := range labels {
		p.add(sel.SeasonItem, &fakeElement{name: "season:" + label, text: label})
	}
}

func addEpisodes(p *fakePage, site provider.Site, titles ...string) {
	sel := site.Selectors()
	p.add(sel.EpisodeList, &fakeElement{name: "episode-list"})
	for _, title := range titles {
		link := &fakeElement{name: "episode:" + title, attrs: map[string]string{"title": title}}
		link.page = p
		p.add(sel.EpisodeItem, &fakeElement{children: map[string][]*fakeElement{sel.EpisodeLink: {link}}})
	}
}

func addServers(p *fakePage, site provider.Site) {
	sel := site.Selectors()
	p.add(sel.MovieServer, &fakeElement{name: "server"})
	p.add(sel.EpisodeServer, &fakeElement{name: "server"})
}
