package screener

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/root4loot/goutils/log"
)

type chromedpSession struct {
	pageState

	ctx         context.Context
	cancel      context.CancelFunc
	cancelAlloc context.CancelFunc
	closeOnce   sync.Once
}

func newChromedpSession(ctx context.Context, options sessionOptions) (*chromedpSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], customFlags(options)...)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	s := &chromedpSession{ctx: browserCtx, cancel: cancel, cancelAlloc: cancelAlloc}

	log.Debugf("Launching browser (chromedp) bin=%q", options.Bin)

	// The first Run starts the browser process.
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(options.ViewportWidth), int64(options.ViewportHeight)),
	)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	return s, nil
}

// customFlags returns exec allocator options for the session options.
func customFlags(options sessionOptions) []chromedp.ExecAllocatorOption {
	flags := []chromedp.ExecAllocatorOption{chromedp.NoSandbox}

	if !options.Headless {
		flags = append(flags, chromedp.Flag("headless", false))
	}

	if options.Bin != "" {
		flags = append(flags, chromedp.ExecPath(options.Bin))
	}

	return flags
}

func (s *chromedpSession) OnPageError(fn func(PageError)) {
	s.setHandler(fn)

	chromedp.ListenTarget(s.ctx, func(ev interface{}) {
		if e, ok := ev.(*runtime.EventExceptionThrown); ok {
			s.report(exceptionDetailsText(e.ExceptionDetails))
		}
	})
}

func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	if s.setURL(url) {
		return s.run(ctx, chromedp.Reload())
	}
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromedpSession) InjectStyle(ctx context.Context, css string) error {
	quoted, err := json.Marshal(css)
	if err != nil {
		return err
	}

	script := fmt.Sprintf(`(() => {
	const style = document.createElement('style');
	style.textContent = %s;
	document.head.appendChild(style);
})()`, quoted)

	return s.run(ctx, chromedp.Evaluate(script, nil))
}

func (s *chromedpSession) Screenshot(ctx context.Context) (Image, error) {
	var buf []byte
	// Quality 100 keeps the capture lossless PNG.
	if err := s.run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *chromedpSession) URL() string {
	return s.currentURL()
}

func (s *chromedpSession) Close() (err error) {
	s.closeOnce.Do(func() {
		err = chromedp.Cancel(s.ctx)
		s.cancel()
		s.cancelAlloc()
		log.Debug("Browser closed")
	})
	return err
}

// run executes actions on the page, aborting the browser if ctx ends first.
func (s *chromedpSession) run(ctx context.Context, actions ...chromedp.Action) error {
	stop := context.AfterFunc(ctx, s.cancel)
	defer stop()
	return chromedp.Run(s.ctx, actions...)
}

func exceptionDetailsText(details *runtime.ExceptionDetails) string {
	if details == nil {
		return ""
	}
	if details.Exception != nil && details.Exception.Description != "" {
		return details.Exception.Description
	}
	return details.Text
}
