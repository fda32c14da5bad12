package scraper

import (
	"context"
	"strings"
)

// Scraper fetches the title of a video page.
type Scraper interface {
	// ScrapeTitle loads url and returns the video title, or an error when
	// the page cannot be loaded or has no usable title.
	ScrapeTitle(ctx context.Context, url string) (string, error)
}

// youtubeSuffixes are appended to every page title by YouTube.
var youtubeSuffixes = []string{"- YouTube", "– YouTube"}

// CleanTitle trims whitespace and the YouTube site suffix from a page title.
// The bare "YouTube" title of a page that has not loaded a video yields "".
func CleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	for _, suffix := range youtubeSuffixes {
		title = strings.TrimSuffix(title, suffix)
	}
	title = strings.TrimSpace(title)
	if title == "YouTube" {
		return ""
	}
	return title
}
