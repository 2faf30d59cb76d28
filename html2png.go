package md2card

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-md2card/internal/fileutil"
	"github.com/alnah/go-md2card/internal/process"
)

// pngConverter abstracts HTML to PNG rasterization.
type pngConverter interface {
	ToPNG(ctx context.Context, htmlContent string, opts *pngOptions) ([]byte, error)
	Close() error
}

// pngRenderer rasterizes an HTML file; split out to test without a browser.
type pngRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, opts *pngOptions) ([]byte, error)
}

var (
	_ pngConverter = (*rodConverter)(nil)
	_ pngRenderer  = (*rodRenderer)(nil)
)

// pngOptions describes the capture viewport in CSS pixels.
type pngOptions struct {
	Width    int
	Height   int
	Density  int
	Selector string // element to capture; empty captures the viewport
}

// frameBarrier resolves after the next animation frame, so layout and
// paint have run once before capture.
const frameBarrier = `() => new Promise(resolve => requestAnimationFrame(() => resolve()))`

// rodRenderer renders cards in headless Chrome via go-rod.
// Rod downloads Chromium on first run if none is found.
type rodRenderer struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
}

func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser. Safe for
// concurrent callers; each render still gets its own page.
func (r *rodRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()

	// Pre-installed browser (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browser = browser
	r.launcher = l
	return browser, nil
}

// Close shuts the browser down and kills any leftover Chrome processes.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		// Kill falls back for anything the group kill missed.
		_ = process.KillTree(r.launcher.PID())
		r.launcher.Kill()
		r.launcher.Cleanup()
		r.launcher = nil
	}
	return err
}

// RenderFromFile opens filePath in a fresh page sized to the card, waits one
// frame after load, and captures a PNG. The page is closed on every path.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, opts *pngOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(timeout)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: float64(opts.Density),
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrRenderFailure, err)
	}

	if err := page.Navigate(fileURL(filePath)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if _, err := page.Eval(frameBarrier); err != nil {
		return nil, fmt.Errorf("%w: waiting for frame: %v", ErrRenderFailure, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := r.capture(page, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: capture returned no data", ErrRenderFailure)
	}
	return data, nil
}

// capture screenshots the card element, or the viewport when no selector
// is set or the element is missing.
func (r *rodRenderer) capture(page *rod.Page, opts *pngOptions) ([]byte, error) {
	if opts.Selector != "" {
		if has, el, _ := page.Has(opts.Selector); has {
			return el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
		}
	}
	return page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			Width:  float64(opts.Width),
			Height: float64(opts.Height),
			Scale:  1,
		},
	})
}

// rodConverter writes HTML to a temp file so relative file:// images load,
// then rasterizes it.
type rodConverter struct {
	renderer *rodRenderer
}

func newRodConverter(timeout time.Duration) *rodConverter {
	return &rodConverter{renderer: newRodRenderer(timeout)}
}

// ToPNG rasterizes htmlContent. The temp file is removed on every path.
func (c *rodConverter) ToPNG(ctx context.Context, htmlContent string, opts *pngOptions) ([]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return c.renderer.RenderFromFile(ctx, tmpPath, opts)
}

// Close releases browser resources.
func (c *rodConverter) Close() error {
	if c.renderer != nil {
		return c.renderer.Close()
	}
	return nil
}
