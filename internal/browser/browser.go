// Package browser drives the browser-* macro actions through a Chrome
// DevTools Protocol session. Each operation launches against a persistent
// profile, acts, records the resulting URL, and shuts down, so state lives
// on disk rather than in a long-running process.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/lijinlar/handsfree-windows/internal/config"
)

// Driver implements the browser-* step operations.
type Driver struct {
	cfg config.BrowserConfig
	log *zap.Logger
}

// New creates a driver over the given configuration.
func New(cfg config.BrowserConfig, log *zap.Logger) *Driver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{cfg: cfg, log: log}
}

// PageInfo reports where an operation left the page.
type PageInfo struct {
	URL   string `yaml:"url"             json:"url"`
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
}

// Link is one anchor harvested from the current page.
type Link struct {
	Text string `yaml:"text" json:"text"`
	Href string `yaml:"href" json:"href"`
}

// FormField pairs a CSS selector with the text to enter.
type FormField struct {
	Selector string `yaml:"selector" json:"selector"`
	Text     string `yaml:"text"     json:"text"`
}

// withPage runs tasks in a fresh CDP session over the persistent profile,
// navigating to startURL first when non-empty. headless overrides the
// configured default for read-only operations.
func (d *Driver) withPage(ctx context.Context, startURL string, headless bool, tasks ...chromedp.Action) (PageInfo, error) {
	profile, err := d.profileDir()
	if err != nil {
		return PageInfo{}, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(profile),
		chromedp.Flag("headless", headless),
		chromedp.Flag("start-maximized", !headless),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	pageCtx, cancelPage := chromedp.NewContext(allocCtx)
	defer cancelPage()

	timeout := time.Duration(d.cfg.NavTimeoutSec) * time.Second
	pageCtx, cancelTimeout := context.WithTimeout(pageCtx, timeout)
	defer cancelTimeout()

	var all chromedp.Tasks
	if startURL != "" {
		all = append(all, chromedp.Navigate(startURL))
	}
	all = append(all, tasks...)

	var info PageInfo
	all = append(all,
		chromedp.Location(&info.URL),
		chromedp.Title(&info.Title),
	)

	if err := chromedp.Run(pageCtx, all); err != nil {
		return PageInfo{}, fmt.Errorf("browser session: %w", err)
	}

	if err := d.saveState(info.URL); err != nil {
		d.log.Warn("failed to persist browser state", zap.Error(err))
	}
	return info, nil
}

// resumeURL returns the last visited URL, or an error when no browser step
// has run yet.
func (d *Driver) resumeURL() (string, error) {
	st := d.loadState()
	if st.URL == "" {
		return "", fmt.Errorf("no previous browser state: run browser-open first")
	}
	return st.URL, nil
}

// OpenInfo opens url in a visible browser and reports the landing page.
func (d *Driver) OpenInfo(ctx context.Context, url string) (PageInfo, error) {
	return d.withPage(ctx, url, d.cfg.Headless)
}

// NavigateInfo navigates the persistent session to url.
func (d *Driver) NavigateInfo(ctx context.Context, url string) (PageInfo, error) {
	return d.withPage(ctx, url, d.cfg.Headless)
}

// ClickInfo clicks a page element by CSS selector, or by visible text when
// cssSelector is empty.
func (d *Driver) ClickInfo(ctx context.Context, cssSelector, text string, exact bool) (PageInfo, error) {
	resume, err := d.resumeURL()
	if err != nil {
		return PageInfo{}, err
	}

	var task chromedp.Action
	switch {
	case cssSelector != "":
		task = chromedp.Click(cssSelector, chromedp.NodeVisible)
	case text != "":
		task = chromedp.Click(textXPath(text, exact), chromedp.BySearch)
	default:
		return PageInfo{}, fmt.Errorf("provide a CSS selector or text to click")
	}

	return d.withPage(ctx, resume, d.cfg.Headless, task)
}

// textXPath builds an XPath matching elements by their visible text.
func textXPath(text string, exact bool) string {
	escaped := strings.ReplaceAll(text, `"`, `\"`)
	if exact {
		return fmt.Sprintf(`//*[normalize-space(text())="%s"]`, escaped)
	}
	return fmt.Sprintf(`//*[contains(normalize-space(text()),"%s")]`, escaped)
}

// TypeInfo enters text into the element matching cssSelector, clearing the
// existing value first unless clear is false.
func (d *Driver) TypeInfo(ctx context.Context, cssSelector, text string, clear bool) (PageInfo, error) {
	resume, err := d.resumeURL()
	if err != nil {
		return PageInfo{}, err
	}

	var tasks chromedp.Tasks
	if clear {
		tasks = append(tasks, chromedp.Clear(cssSelector, chromedp.NodeVisible))
	}
	tasks = append(tasks, chromedp.SendKeys(cssSelector, text))
	return d.withPage(ctx, resume, d.cfg.Headless, tasks)
}

// EvaluateInfo runs a JavaScript expression on the current page and returns
// its JSON-encoded result.
func (d *Driver) EvaluateInfo(ctx context.Context, js string) (PageInfo, string, error) {
	resume, err := d.resumeURL()
	if err != nil {
		return PageInfo{}, "", err
	}

	var raw json.RawMessage
	info, err := d.withPage(ctx, resume, true, chromedp.Evaluate(js, &raw))
	if err != nil {
		return PageInfo{}, "", err
	}
	return info, string(raw), nil
}

// Links harvests up to 200 anchors with both text and href from the current
// page.
func (d *Driver) Links(ctx context.Context) (PageInfo, []Link, error) {
	resume, err := d.resumeURL()
	if err != nil {
		return PageInfo{}, nil, err
	}

	const js = `Array.from(document.querySelectorAll('a[href]'))
		.map(a => ({text: a.innerText.trim(), href: a.href}))
		.filter(l => l.text && l.href)
		.slice(0, 200)`

	var links []Link
	info, err := d.withPage(ctx, resume, true, chromedp.Evaluate(js, &links))
	if err != nil {
		return PageInfo{}, nil, err
	}
	return info, links, nil
}

// Snapshot returns the visible text of the current page.
func (d *Driver) Snapshot(ctx context.Context) (PageInfo, string, error) {
	resume, err := d.resumeURL()
	if err != nil {
		return PageInfo{}, "", err
	}

	var text string
	info, err := d.withPage(ctx, resume, true,
		chromedp.Evaluate(`document.body.innerText`, &text))
	if err != nil {
		return PageInfo{}, "", err
	}
	return info, text, nil
}

// Screenshot captures the current page to a PNG file.
func (d *Driver) Screenshot(ctx context.Context, outPath string, fullPage bool) (PageInfo, error) {
	resume, err := d.resumeURL()
	if err != nil {
		return PageInfo{}, err
	}

	var buf []byte
	var task chromedp.Action
	if fullPage {
		task = chromedp.FullScreenshot(&buf, 90)
	} else {
		task = chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().Do(ctx)
			return err
		})
	}

	info, err := d.withPage(ctx, resume, true, task)
	if err != nil {
		return PageInfo{}, err
	}
	if err := os.WriteFile(outPath, buf, 0o644); err != nil {
		return PageInfo{}, fmt.Errorf("write screenshot: %w", err)
	}
	return info, nil
}

// FillForm enters text into several fields in one session.
func (d *Driver) FillForm(ctx context.Context, fields []FormField) (PageInfo, error) {
	resume, err := d.resumeURL()
	if err != nil {
		return PageInfo{}, err
	}

	var tasks chromedp.Tasks
	for _, f := range fields {
		if f.Selector == "" {
			continue
		}
		tasks = append(tasks,
			chromedp.Clear(f.Selector, chromedp.NodeVisible),
			chromedp.SendKeys(f.Selector, f.Text),
		)
	}
	return d.withPage(ctx, resume, d.cfg.Headless, tasks)
}

// --- macro.BrowserDriver -------------------------------------------------

// Open implements the browser-open step.
func (d *Driver) Open(ctx context.Context, url string) error {
	_, err := d.OpenInfo(ctx, url)
	return err
}

// Navigate implements the browser-navigate step.
func (d *Driver) Navigate(ctx context.Context, url string) error {
	_, err := d.NavigateInfo(ctx, url)
	return err
}

// Click implements the browser-click step.
func (d *Driver) Click(ctx context.Context, cssSelector, text string, exact bool) error {
	_, err := d.ClickInfo(ctx, cssSelector, text, exact)
	return err
}

// Type implements the browser-type step.
func (d *Driver) Type(ctx context.Context, cssSelector, text string, clear bool) error {
	_, err := d.TypeInfo(ctx, cssSelector, text, clear)
	return err
}

// Evaluate implements the browser-eval step.
func (d *Driver) Evaluate(ctx context.Context, js string) (string, error) {
	_, result, err := d.EvaluateInfo(ctx, js)
	return result, err
}
