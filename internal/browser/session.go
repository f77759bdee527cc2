package browser

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"videoapi/internal/resolver"
)

// session is one render session: a dedicated page whose every request runs
// through the filter and is offered to the interceptor.
type session struct {
	page        *rod.Page
	router      *rod.HijackRouter
	filter      *Filter
	interceptor *Interceptor
	location    atomic.Value // string, main frame URL

	stepTimeout time.Duration
	qualityFrom string
	qualityTo   string
	log         *zap.Logger

	stopEvents context.CancelFunc
	closeOnce  sync.Once
	closeErr   error
}

var _ resolver.Session = (*session)(nil)

// arm installs request hijacking and main-frame tracking. It must run
// before the first navigation.
func (s *session) arm() error {
	s.location.Store("")

	s.router = s.page.HijackRequests()
	if err := s.router.Add("*", "", s.handle); err != nil {
		return fmt.Errorf("installing request filter: %w", err)
	}
	go s.router.Run()

	evCtx, cancel := context.WithCancel(context.Background())
	s.stopEvents = cancel
	wait := s.page.Context(evCtx).EachEvent(func(e *proto.PageFrameNavigated) {
		if e.Frame != nil && e.Frame.ParentID == "" {
			s.location.Store(e.Frame.URL)
		}
	})
	go wait()
	return nil
}

func (s *session) handle(h *rod.Hijack) {
	req := RequestInfo{
		URL:          h.Request.URL().String(),
		ResourceType: h.Request.Type(),
		PageLocation: s.location.Load().(string),
	}
	decision, captured := inspect(req, s.interceptor, s.filter)
	if captured {
		s.log.Debug("stream playlist observed", zap.String("url", req.URL))
	}
	if decision == Abort {
		h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		return
	}
	h.ContinueRequest(&proto.FetchContinueRequest{})
}

// inspect offers req to the interceptor before the filter rules on it, so
// an aborted request can still be the captured stream.
func inspect(req RequestInfo, ic *Interceptor, f *Filter) (Decision, bool) {
	captured := ic.Observe(req.URL)
	return f.Decide(req), captured
}

// Navigate implements resolver.Page.
func (s *session) Navigate(ctx context.Context, url string) error {
	if err := s.page.Context(ctx).Navigate(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// WaitElement implements resolver.Page.
func (s *session) WaitElement(ctx context.Context, selector string) (resolver.Element, error) {
	el, err := s.page.Context(ctx).Timeout(s.stepTimeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("waiting for %q: %w", selector, err)
	}
	return &element{el: el.CancelTimeout()}, nil
}

// Elements implements resolver.Page.
func (s *session) Elements(ctx context.Context, selector string) ([]resolver.Element, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", selector, err)
	}
	return wrapElements(els), nil
}

// ExpectNavigation implements resolver.Page.
func (s *session) ExpectNavigation(ctx context.Context) func() error {
	stepCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	wait := s.page.Context(stepCtx).WaitNavigation(proto.PageLifecycleEventNameLoad)
	return func() error {
		defer cancel()
		wait()
		return stepCtx.Err()
	}
}

// WaitStream implements resolver.Session.
func (s *session) WaitStream(ctx context.Context) (string, error) {
	url, err := s.interceptor.Wait(ctx)
	if err != nil {
		return "", err
	}
	return RewriteQuality(url, s.qualityFrom, s.qualityTo), nil
}

// Close implements resolver.Session. It uses its own context so the page is
// released even after the resolution deadline has passed.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		select {
		case <-s.interceptor.Done():
		default:
			s.log.Debug("session closed before a stream was observed")
		}
		if s.stopEvents != nil {
			s.stopEvents()
		}
		if s.router != nil {
			if err := s.router.Stop(); err != nil {
				s.log.Debug("stopping request router", zap.Error(err))
			}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.page.Context(ctx).Close(); err != nil {
			s.closeErr = fmt.Errorf("closing page: %w", err)
		}
	})
	return s.closeErr
}

// element adapts a rod element.
type element struct {
	el *rod.Element
}

func wrapElements(els rod.Elements) []resolver.Element {
	out := make([]resolver.Element, len(els))
	for i, el := range els {
		out[i] = &element{el: el}
	}
	return out
}

func (e *element) Text() (string, error) {
	return e.el.Text()
}

func (e *element) Attribute(name string) (string, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

func (e *element) HTML() (string, error) {
	return e.el.HTML()
}

// Click dispatches the click in page script. Overlays injected by the site
// would swallow a synthesized mouse click.
func (e *element) Click() error {
	_, err := e.el.Eval(`function () { this.click() }`)
	return err
}

func (e *element) Elements(selector string) ([]resolver.Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapElements(els), nil
}
