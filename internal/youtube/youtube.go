// Package youtube recognises YouTube URLs and derives thumbnail URLs.
package youtube

import (
	"net/url"
	"strings"
)

// IsVideoURL reports whether raw points at YouTube. Only the host substrings
// are checked; the URL does not have to parse.
func IsVideoURL(raw string) bool {
	return strings.Contains(raw, "youtube.com") || strings.Contains(raw, "youtu.be")
}

// VideoID extracts the video id from youtube.com/watch?v=ID, youtube.com/shorts/ID
// and youtu.be/ID URLs. It returns "" when there is none.
func VideoID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch {
	case host == "youtu.be":
		return strings.Trim(u.Path, "/")
	case strings.HasSuffix(host, "youtube.com"):
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		if id, ok := strings.CutPrefix(u.Path, "/shorts/"); ok {
			return strings.Trim(id, "/")
		}
	}
	return ""
}

// Quality selects a thumbnail size.
type Quality string

const (
	QualityDefault Quality = "default"
	QualityMedium  Quality = "mqdefault"
	QualityHigh    Quality = "hqdefault"
	QualityMaxRes  Quality = "maxresdefault"
)

// Thumbnail returns the thumbnail URL of a video id.
func Thumbnail(videoID string, q Quality) string {
	return "https://img.youtube.com/vi/" + videoID + "/" + string(q) + ".jpg"
}

// ThumbnailFromURL returns the thumbnail of the video raw points at, or "".
func ThumbnailFromURL(raw string, q Quality) string {
	id := VideoID(raw)
	if id == "" {
		return ""
	}
	return Thumbnail(id, q)
}
