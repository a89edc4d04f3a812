package screener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Engine names a browser automation backend.
type Engine string

const (
	EngineRod      Engine = "rod"
	EngineChromedp Engine = "chromedp"
)

// ErrUnknownEngine is returned by NewSession for an unsupported Engine.
var ErrUnknownEngine = errors.New("unknown browser engine")

// Session owns one browser process and the single page used for every capture.
type Session interface {
	// OnPageError registers fn for uncaught in-page exceptions. It must be
	// called before the first Navigate.
	OnPageError(fn func(PageError))
	// Navigate loads url and waits for the load event. There is no deadline
	// other than ctx.
	Navigate(ctx context.Context, url string) error
	// InjectStyle appends css to the current document.
	InjectStyle(ctx context.Context, css string) error
	// Screenshot returns a PNG of the whole document, not just the viewport.
	Screenshot(ctx context.Context) (Image, error)
	// URL is the address of the last navigation.
	URL() string
	// Close terminates the browser. It is safe to call more than once.
	Close() error
}

// Image is an encoded PNG.
type Image []byte

// PageError is an uncaught exception raised by the page under capture.
type PageError struct {
	URL     string
	Message string
}

// sessionOptions contains the options for starting a browser session.
type sessionOptions struct {
	Engine         Engine // Automation backend
	Bin            string // Chrome binary, empty for lookup
	ViewportWidth  int    // Width of the page viewport
	ViewportHeight int    // Height of the page viewport
	Headless       bool   // Run without a window
}

// NewOptions returns session options initialized with default values.
func NewOptions() sessionOptions {
	return sessionOptions{
		Engine:         EngineRod,
		ViewportWidth:  1200,
		ViewportHeight: 960,
		Headless:       true,
	}
}

// NewSession launches a browser for the configured engine and opens its page.
func NewSession(ctx context.Context, options sessionOptions) (Session, error) {
	switch options.Engine {
	case EngineRod, "":
		return newRodSession(ctx, options)
	case EngineChromedp:
		return newChromedpSession(ctx, options)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, options.Engine)
	}
}

// pageState is the bookkeeping shared by both engines: the current URL and
// the registered exception handler, read from event goroutines.
type pageState struct {
	mu      sync.Mutex
	url     string
	onError func(PageError)
}

// setURL records url as the current page and reports whether it was already
// loaded. Navigating to the identical URL, fragment included, is a same-document
// navigation that fires no load event, so callers reload instead.
func (s *pageState) setURL(url string) (reload bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reload = s.url == url
	s.url = url
	return reload
}

func (s *pageState) currentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

func (s *pageState) setHandler(fn func(PageError)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

func (s *pageState) report(message string) {
	s.mu.Lock()
	fn, url := s.onError, s.url
	s.mu.Unlock()

	if fn != nil {
		fn(PageError{URL: url, Message: strings.TrimSpace(message)})
	}
}
