package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

// ErrNoTitle is returned when a page loaded but carried no video title.
var ErrNoTitle = errors.New("page has no title")

// RodScraper implements the Scraper interface using a headless browser.
// A browser is launched per scrape.
type RodScraper struct {
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewRodScraper creates a new scraper. Each scrape is bounded by timeout.
func NewRodScraper(timeout time.Duration, logger logrus.FieldLogger) *RodScraper {
	return &RodScraper{
		timeout: timeout,
		log:     logger.WithField("component", "scraper"),
	}
}

// ScrapeTitle loads the page and reads its og:title, falling back to <title>.
func (s *RodScraper) ScrapeTitle(ctx context.Context, url string) (title string, err error) {
	log := s.log.WithField("url", url)
	log.Info("Attempting to scrape title")

	path, exists := launcher.LookPath()
	if !exists {
		log.Error("Cannot find browser executable for rod")
		return "", errors.New("rod browser dependency not found")
	}
	l := launcher.New().Bin(path)
	defer l.Cleanup()
	u, err := l.Launch()
	if err != nil {
		log.WithError(err).Error("Failed to launch browser")
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err = browser.Connect(); err != nil {
		log.WithError(err).Error("Failed to connect to rod browser")
		return "", fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			log.WithError(closeErr).Error("Error closing rod browser instance")
		}
	}()

	pageCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	page, err := browser.Context(pageCtx).Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		log.WithError(err).Error("Failed to create rod page")
		return "", fmt.Errorf("failed to create page: %w", err)
	}

	if err = page.WaitLoad(); err != nil {
		if errors.Is(pageCtx.Err(), context.DeadlineExceeded) {
			log.WithError(pageCtx.Err()).Warn("Scraping timed out")
			return "", fmt.Errorf("scraping timed out for %s: %w", url, pageCtx.Err())
		}
		log.WithError(err).Error("Failed to wait for page load")
		return "", fmt.Errorf("failed waiting for page load: %w", err)
	}

	title = s.ogTitle(page)
	if title == "" {
		if info, infoErr := page.Info(); infoErr == nil {
			title = CleanTitle(info.Title)
		} else {
			log.WithError(infoErr).Warn("Could not read page info")
		}
	}
	if title == "" {
		log.Warn("No title found")
		return "", ErrNoTitle
	}

	log.WithField("title", title).Info("Title scraped")
	return title, nil
}

func (s *RodScraper) ogTitle(page *rod.Page) string {
	has, el, err := page.Has(`meta[property="og:title"]`)
	if err != nil || !has {
		return ""
	}
	content, err := el.Attribute("content")
	if err != nil || content == nil {
		return ""
	}
	return CleanTitle(*content)
}
