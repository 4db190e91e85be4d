// Package capture drives a real browser and passively records the session
// headers the user's own x.com traffic carries.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/playwright-community/playwright-go"

	bookmarks "github.com/anatolykoptev/go-bookmarks"
)

// Sink receives every observed x.com request.
// *bookmarks.SessionStore implements it.
type Sink interface {
	Capture(rawURL string, headers map[string]string) bool
}

// Options configures the capture browser.
type Options struct {
	Headless bool
	// StartURL is opened once the browser is up. Empty leaves a blank page.
	StartURL string
	// UserDataDir keeps cookies between launches so the user stays logged in.
	UserDataDir string
	// SkipInstall assumes the playwright driver and Chromium are present.
	SkipInstall bool
}

// request is the part of playwright.Request the observer reads.
type request interface {
	URL() string
	AllHeaders() (map[string]string, error)
}

// Browser observes outgoing requests of a Chromium context. It never
// routes, continues or aborts them.
type Browser struct {
	sink Sink
	opts Options

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext

	observed atomic.Int64
	captured atomic.Int64
	wg       sync.WaitGroup
}

// New returns a capture browser feeding sink.
func New(sink Sink, opts Options) *Browser {
	return &Browser{sink: sink, opts: opts}
}

// Start launches Chromium and subscribes to its requests.
func (b *Browser) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pw != nil {
		return errors.New("capture browser already started")
	}

	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if !b.opts.SkipInstall {
		if err := playwright.Install(runOpts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	var (
		browser playwright.Browser
		bctx    playwright.BrowserContext
	)
	if b.opts.UserDataDir != "" {
		bctx, err = pw.Chromium.LaunchPersistentContext(b.opts.UserDataDir,
			playwright.BrowserTypeLaunchPersistentContextOptions{Headless: playwright.Bool(b.opts.Headless)})
		if err != nil {
			_ = pw.Stop()
			return fmt.Errorf("failed to launch persistent context: %w", err)
		}
	} else {
		browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(b.opts.Headless)})
		if err != nil {
			_ = pw.Stop()
			return fmt.Errorf("failed to launch browser: %w", err)
		}
		bctx, err = browser.NewContext()
		if err != nil {
			_ = browser.Close()
			_ = pw.Stop()
			return fmt.Errorf("failed to create context: %w", err)
		}
	}

	bctx.OnRequest(func(req playwright.Request) {
		// AllHeaders is a driver round trip; keep it off the event goroutine.
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.observe(req)
		}()
	})

	b.pw, b.browser, b.bctx = pw, browser, bctx

	if b.opts.StartURL != "" {
		page, err := bctx.NewPage()
		if err != nil {
			return fmt.Errorf("failed to create page: %w", err)
		}
		if _, err := page.Goto(b.opts.StartURL); err != nil {
			slog.Warn("capture: start page failed", slog.String("url", b.opts.StartURL), slog.Any("error", err))
		}
	}

	slog.Info("capture browser started", slog.Bool("headless", b.opts.Headless),
		slog.Bool("persistent", b.opts.UserDataDir != ""))
	return nil
}

// Run starts the browser and blocks until ctx is done.
func (b *Browser) Run(ctx context.Context) error {
	if err := b.Start(); err != nil {
		_ = b.Close()
		return err
	}
	<-ctx.Done()
	return b.Close()
}

// Close shuts the browser and the playwright driver down.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pw == nil {
		return nil
	}

	var errs []error
	if err := b.bctx.Close(); err != nil {
		errs = append(errs, err)
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.wg.Wait()
	if err := b.pw.Stop(); err != nil {
		errs = append(errs, err)
	}
	b.pw, b.browser, b.bctx = nil, nil, nil
	return errors.Join(errs...)
}

// Stats returns how many x.com requests were seen and how many carried a
// complete credential set.
func (b *Browser) Stats() (observed, captured int64) {
	return b.observed.Load(), b.captured.Load()
}

func (b *Browser) observe(req request) {
	u := req.URL()
	if !bookmarks.IsTwitterURL(u) {
		return
	}
	b.observed.Add(1)

	headers, err := req.AllHeaders()
	if err != nil {
		slog.Debug("capture: read headers", slog.String("url", u), slog.Any("error", err))
		return
	}
	if b.sink.Capture(u, headers) {
		b.captured.Add(1)
	}
}
