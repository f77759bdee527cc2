package browser

import (
	"github.com/go-rod/rod/lib/proto"

	"videoapi/internal/provider"
)

// Decision is the filter's verdict for one outgoing request.
type Decision int

const (
	Allow Decision = iota
	Abort
)

func (d Decision) String() string {
	if d == Abort {
		return "abort"
	}
	return "allow"
}

// RequestInfo is what the filter sees of a request.
type RequestInfo struct {
	URL          string
	ResourceType proto.NetworkResourceType
	// PageLocation is the main frame's URL when the request was issued.
	PageLocation string
}

// Filter aborts devtools detectors always, and decorative resources until
// the page reaches a watch page.
type Filter struct {
	site            provider.Site
	blockDecorative bool
}

// NewFilter creates a request filter for site.
func NewFilter(site provider.Site, blockDecorative bool) *Filter {
	return &Filter{site: site, blockDecorative: blockDecorative}
}

// Decide classifies a request. It has no side effects.
func (f *Filter) Decide(req RequestInfo) Decision {
	if f.site.IsDevtoolsProbe(req.URL) {
		return Abort
	}
	if f.blockDecorative && !f.site.IsWatchPage(req.PageLocation) && isDecorative(req.ResourceType) {
		return Abort
	}
	return Allow
}

func isDecorative(t proto.NetworkResourceType) bool {
	switch t {
	case proto.NetworkResourceTypeFont,
		proto.NetworkResourceTypeStylesheet,
		proto.NetworkResourceTypeImage,
		proto.NetworkResourceTypeMedia:
		return true
	}
	return false
}
