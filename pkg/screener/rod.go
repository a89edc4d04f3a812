package screener

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/root4loot/goutils/log"
)

type rodSession struct {
	pageState

	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	listenCtx    context.Context
	stopListener context.CancelFunc
	closeOnce    sync.Once
}

func newRodSession(ctx context.Context, options sessionOptions) (*rodSession, error) {
	path := options.Bin
	if path == "" {
		path, _ = launcher.LookPath()
	}

	l := launcher.New().
		Context(ctx).
		Headless(options.Headless).
		NoSandbox(true)

	if path != "" {
		l = l.Bin(path)
	}

	log.Debugf("Launching browser (rod) bin=%q", path)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	s := &rodSession{launcher: l}
	s.listenCtx, s.stopListener = context.WithCancel(context.Background())

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		s.Close()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	s.browser = browser

	s.page, err = s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening page: %w", err)
	}

	viewport := &proto.EmulationSetDeviceMetricsOverride{
		Width:             options.ViewportWidth,
		Height:            options.ViewportHeight,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}
	if err := s.page.SetViewport(viewport); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting viewport: %w", err)
	}

	return s, nil
}

func (s *rodSession) OnPageError(fn func(PageError)) {
	s.setHandler(fn)

	wait := s.page.Context(s.listenCtx).EachEvent(func(e *proto.RuntimeExceptionThrown) {
		s.report(exceptionText(e.ExceptionDetails))
	})
	go wait()
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	reload := s.setURL(url)

	page := s.page.Context(ctx)
	if reload {
		if err := page.Reload(); err != nil {
			return err
		}
		return page.WaitLoad()
	}

	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

func (s *rodSession) InjectStyle(ctx context.Context, css string) error {
	return s.page.Context(ctx).AddStyleTag("", css)
}

func (s *rodSession) Screenshot(ctx context.Context) (Image, error) {
	return s.page.Context(ctx).Screenshot(true, nil)
}

func (s *rodSession) URL() string {
	return s.currentURL()
}

func (s *rodSession) Close() (err error) {
	s.closeOnce.Do(func() {
		s.stopListener()
		if s.browser != nil {
			err = s.browser.Close()
		}
		// Cleanup blocks until the process exits.
		if s.browser == nil || err != nil {
			s.launcher.Kill()
		}
		s.launcher.Cleanup()
		log.Debug("Browser closed")
	})
	return err
}

func exceptionText(details *proto.RuntimeExceptionDetails) string {
	if details == nil {
		return ""
	}
	if details.Exception != nil && details.Exception.Description != "" {
		return details.Exception.Description
	}
	return details.Text
}
