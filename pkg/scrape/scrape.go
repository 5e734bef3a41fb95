package scrape

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
)

// Scraper turns a URL into plain page text.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// HTTPScraper fetches the raw document with a single GET.
type HTTPScraper struct {
	client *http.Client
	log    *log.Logger
}

func NewHTTPScraper(client *http.Client, logger *log.Logger) *HTTPScraper {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = log.Default()
	}

	return &HTTPScraper{client: client, log: logger}
}

func (scraper *HTTPScraper) Scrape(ctx context.Context, url string) (string, error) {
	scraper.log.Debug("Fetching page", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("Failed to scrape page: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := scraper.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Failed to scrape page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("Failed to scrape page: %s returned %d", url, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		scraper.log.Warn("Page is not HTML", "url", url, "content_type", ct)
	}

	text, err := Text(resp.Body)
	if err != nil {
		return "", fmt.Errorf("Failed to scrape page: %w", err)
	}

	return text, nil
}
