package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// BrowserScraper renders the page in a headless Chromium before extracting
// text, for sites that build their content with JavaScript.
type BrowserScraper struct {
	log     *log.Logger
	idle    time.Duration
	timeout time.Duration
}

func NewBrowserScraper(logger *log.Logger) *BrowserScraper {
	if logger == nil {
		logger = log.Default()
	}

	return &BrowserScraper{
		log:     logger,
		idle:    2 * time.Second,
		timeout: 30 * time.Second,
	}
}

func (scraper *BrowserScraper) Scrape(ctx context.Context, url string) (string, error) {
	scraper.log.Info("Rendering page", "url", url)

	ctx, cancel := context.WithTimeout(ctx, scraper.timeout)
	defer cancel()

	l := scraper.launcher()

	debugURL, err := l.Launch()
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(debugURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return "", fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := stealth.Page(browser)
	if err != nil {
		return "", fmt.Errorf("failed to create stealth page: %w", err)
	}

	if err := page.Navigate(url); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("failed to wait for page load: %w", err)
	}

	// Dynamic content gets a short grace period; a busy page is not an error.
	if err := page.WaitIdle(scraper.idle); err != nil {
		scraper.log.Debug("Page did not go idle", "url", url, "error", err)
	}

	doc, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page html: %w", err)
	}

	return Text(strings.NewReader(doc))
}

// launcher gets a fresh user data dir per scrape, removed by Cleanup.
func (scraper *BrowserScraper) launcher() *launcher.Launcher {
	l := launcher.New().
		Headless(true).
		Set("disable-setuid-sandbox").
		Set("no-sandbox")

	if path, exists := launcher.LookPath(); exists {
		l = l.Bin(path)
	}

	return l
}

// New picks the browser scraper when useBrowser is set, the plain HTTP one
// otherwise.
func New(useBrowser bool, logger *log.Logger) Scraper {
	if useBrowser {
		return NewBrowserScraper(logger)
	}
	return NewHTTPScraper(nil, logger)
}
