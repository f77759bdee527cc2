package resolver

import (
	"context"
	"errors"
	"fmt"
)

// Error codes carried by ScrapeError.
const (
	ErrCodeTimeout    = "timeout"
	ErrCodeMarkup     = "markup"
	ErrCodeNavigation = "navigation"
	ErrCodeBrowser    = "browser"
	ErrCodeBusy       = "busy"
	ErrCodeNoStream   = "no_stream"
)

// ErrTransient matches every ScrapeError via errors.Is. Callers should
// report it as a retry-later failure and never expose the cause.
var ErrTransient = errors.New("transient scrape failure")

// ScrapeError is a resolution failure that could not determine whether the
// title exists. Confirmed absence is never an error.
type ScrapeError struct {
	Code    string
	Message string
	Err     error
}

// NewScrapeError creates a ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// Is reports ErrTransient for every ScrapeError.
func (e *ScrapeError) Is(target error) bool {
	return target == ErrTransient
}

// normalize maps any failure escaping a resolution onto a ScrapeError.
// ctx is the resolution context; when it is done the failure is a timeout.
func normalize(ctx context.Context, err error, message string) error {
	if err == nil {
		return nil
	}
	var se *ScrapeError
	if errors.As(err, &se) {
		return err
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewScrapeError(ErrCodeTimeout, message, err)
	}
	return NewScrapeError(ErrCodeNavigation, message, err)
}

// stepError classifies a failed wait: a step that ran out of time while the
// resolution was still alive means the expected markup never appeared.
func stepError(ctx context.Context, selector string, err error) error {
	if ctx.Err() != nil {
		return NewScrapeError(ErrCodeTimeout, fmt.Sprintf("waiting for %q", selector), err)
	}
	return NewScrapeError(ErrCodeMarkup, fmt.Sprintf("element %q not found", selector), err)
}
