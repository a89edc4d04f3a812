// Package sitesnap captures full-page screenshots of every page listed in a
// site's sitemap, served from a local server, for visual regression diffing.
package sitesnap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/root4loot/goutils/log"
	"github.com/root4loot/sitesnap/pkg/screener"
	"github.com/root4loot/sitesnap/pkg/sitemap"
)

var (
	// ErrSitemap marks a sitemap that could not be read or parsed.
	ErrSitemap = errors.New("sitemap unavailable")
	// ErrLaunch marks a browser that could not be started.
	ErrLaunch = errors.New("browser launch failed")
	// ErrNavigate marks a page that could not be loaded. It ends the run.
	ErrNavigate = errors.New("navigation failed")
)

// Options contains the capture configuration. It is built once at startup and
// not modified while a run is in progress.
type Options struct {
	Port              int      // Port of the local server under test
	OutputDir         string   // Directory images are written to
	SitemapPath       string   // Sitemap listing the pages to capture
	ExtraURLs         []string // Paths captured after the sitemap entries
	ExcludeSubstrings []string // Paths containing any of these are skipped
	Engine            string   // Browser engine (rod, chromedp)
	ChromeBin         string   // Chrome binary, empty for lookup
	CaptureWidth      int      // Viewport width
	CaptureHeight     int      // Viewport height
	Label             bool     // Imprint the page path under each image
	Silence           bool     // Silence output
	Verbose           bool     // Verbose logging
}

// Runner drives the capture of every page in the work list.
type Runner struct {
	Options     *Options
	Diagnostics Diagnostics

	newSession func(ctx context.Context, options *Options) (screener.Session, error)
}

// Summary describes a finished or aborted run.
type Summary struct {
	Planned     int      // Pages in the work list
	Captured    int      // Pages written to disk
	Files       []string // Written image files, in capture order
	Diagnostics int      // In-page errors reported
}

func init() {
	log.Init("sitesnap")
}

// DefaultOptions returns default options
func DefaultOptions() *Options {
	return &Options{
		Port:          8080,
		OutputDir:     "screenshots",
		SitemapPath:   sitemap.DefaultPath,
		Engine:        string(screener.EngineRod),
		CaptureWidth:  1200,
		CaptureHeight: 960,
	}
}

// NewRunner returns a new runner with default options
func NewRunner() *Runner {
	return NewRunnerWithOptions(*DefaultOptions())
}

// NewRunnerWithOptions returns a new runner with the specified options
func NewRunnerWithOptions(options Options) *Runner {
	SetLogLevel(&options)
	log.Debug("Creating new runner with options...")

	return &Runner{
		Options:     &options,
		Diagnostics: &DiagnosticLog{},
		newSession:  startSession,
	}
}

// Run captures every page of the work list, one after another on a single
// browser page. The first navigation failure ends the run; images saved up to
// that point are kept. The browser is closed before Run returns.
func (r *Runner) Run(ctx context.Context) (summary Summary, err error) {
	paths, err := sitemap.ReadFile(r.Options.SitemapPath)
	if err != nil {
		return summary, fmt.Errorf("%w: %w", ErrSitemap, err)
	}

	items := BuildWorkList(paths, r.Options.ExtraURLs, r.Options.ExcludeSubstrings)
	summary.Planned = len(items)
	log.Infof("Capturing %d pages (%d in sitemap) into %s", len(items), len(paths), r.Options.OutputDir)

	if err := os.MkdirAll(r.Options.OutputDir, os.ModePerm); err != nil {
		return summary, err
	}

	session, err := r.newSession(ctx, r.Options)
	if err != nil {
		return summary, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warnf("Could not close browser: %v", cerr)
		}
	}()

	var reported atomic.Int64
	defer func() { summary.Diagnostics = int(reported.Load()) }()

	session.OnPageError(func(e screener.PageError) {
		reported.Add(1)
		r.Diagnostics.Report(Diagnostic{URL: e.URL, Message: FirstLine(e.Message), Time: time.Now()})
	})

	for _, item := range items {
		filename, err := r.CaptureURL(ctx, session, item)
		if err != nil {
			return summary, err
		}

		summary.Captured++
		summary.Files = append(summary.Files, filename)
		log.Resultf("Screenshot saved to %s", filename)
	}

	return summary, nil
}

func startSession(ctx context.Context, options *Options) (screener.Session, error) {
	sessionOptions := screener.NewOptions()
	sessionOptions.Engine = screener.Engine(options.Engine)
	sessionOptions.Bin = options.ChromeBin
	sessionOptions.ViewportWidth = options.CaptureWidth
	sessionOptions.ViewportHeight = options.CaptureHeight

	return screener.NewSession(ctx, sessionOptions)
}

// SetLogLevel sets the log level based on the options
func SetLogLevel(options *Options) {
	if options.Silence {
		log.SetLevel(log.FatalLevel)
	} else if options.Verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}
