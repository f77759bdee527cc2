package resolver

import "context"

// Element is a live DOM node on a rendered page.
type Element interface {
	// Text returns the node's text content.
	Text() (string, error)
	// Attribute returns the named attribute, or "" when it is absent.
	Attribute(name string) (string, error)
	// HTML returns the node's outer HTML.
	HTML() (string, error)
	// Click dispatches a DOM click on the node.
	Click() error
	// Elements returns the descendants matching selector without waiting.
	Elements(selector string) ([]Element, error)
}

// Page is the subset of a rendered browser page the driver needs.
type Page interface {
	// Navigate loads url in the page.
	Navigate(ctx context.Context, url string) error
	// WaitElement blocks until selector matches, bounded by the step timeout.
	WaitElement(ctx context.Context, selector string) (Element, error)
	// Elements returns every match for selector without waiting.
	Elements(ctx context.Context, selector string) ([]Element, error)
	// ExpectNavigation must be called before the action that navigates.
	// The returned func blocks until the next page load and reports an
	// error when no load happened within the step timeout.
	ExpectNavigation(ctx context.Context) func() error
}

// Session is one exclusively owned render session. The stream interceptor
// is armed before Open returns.
type Session interface {
	Page
	// WaitStream blocks until the stream playlist request is observed and
	// returns its (quality-adjusted) URL. It has no timeout of its own.
	WaitStream(ctx context.Context) (string, error)
	// Close releases the page. Calling it more than once is a no-op.
	Close() error
}

// Opener allocates render sessions.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}
