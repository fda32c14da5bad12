package domain

import (
	"slices"
	"strings"
	"time"
)

// Reserved collection names that split links into the dashboard tabs.
const (
	ToWatchCollection = "videostowatch"
	RewatchCollection = "videosshouldberewatched"

	// UnknownCategory is assigned to links that predate categories.
	UnknownCategory = "unknown"
)

// Link represents a saved YouTube video inside a collection.
type Link struct {
	// ID is generated at creation and survives moves between collections.
	ID string `json:"id" firestore:"id"`

	// URL is the YouTube URL supplied by the user.
	URL string `json:"url" firestore:"url"`

	// Title is the user supplied (or scraped) video title.
	Title string `json:"title" firestore:"title"`

	// AddedAt is set once when the link is created.
	AddedAt time.Time `json:"addedAt" firestore:"addedAt"`

	// Watched indicates whether the user has marked the video as watched.
	Watched bool `json:"watched" firestore:"watched"`

	// Category optionally names one of the owning collection's categories.
	Category string `json:"category,omitempty" firestore:"category,omitempty"`
}

// Collection is a named group of links, stored as one document.
type Collection struct {
	// ID is the document key.
	ID string `json:"id" firestore:"-"`

	// Name is the display name; ID is used when it is empty.
	Name string `json:"name" firestore:"name"`

	// Categories is an ordered set of labels, unique by exact match.
	Categories []string `json:"categories" firestore:"categories"`

	// Links in insertion order.
	Links []Link `json:"links" firestore:"links"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// DisplayName returns Name, falling back to ID.
func (c *Collection) DisplayName() string {
	if c.Name == "" {
		return c.ID
	}
	return c.Name
}

// Tab reports which dashboard tab the collection feeds, or "" for none.
func (c *Collection) Tab() Tab {
	switch strings.ToLower(c.DisplayName()) {
	case ToWatchCollection:
		return TabToWatch
	case RewatchCollection:
		return TabRewatch
	}
	return ""
}

// HasCategory reports whether name is one of the collection's categories.
func (c *Collection) HasCategory(name string) bool {
	return slices.Contains(c.Categories, name)
}

// LinkIndex returns the position of the link with the given id, or -1.
func (c *Collection) LinkIndex(id string) int {
	return slices.IndexFunc(c.Links, func(l Link) bool { return l.ID == id })
}

// RemoveLink deletes the link with the given id and returns it.
func (c *Collection) RemoveLink(id string) (Link, bool) {
	i := c.LinkIndex(id)
	if i < 0 {
		return Link{}, false
	}
	link := c.Links[i]
	c.Links = slices.Delete(c.Links, i, i+1)
	return link, true
}

// DeleteCategory removes name from the category set and from every link
// that references it. It reports whether anything changed.
func (c *Collection) DeleteCategory(name string) bool {
	i := slices.Index(c.Categories, name)
	if i < 0 {
		return false
	}
	c.Categories = slices.Delete(c.Categories, i, i+1)
	for j := range c.Links {
		if c.Links[j].Category == name {
			c.Links[j].Category = ""
		}
	}
	return true
}

// RenameCategory renames oldName to newName in the set and in every link.
// The caller checks that newName is not already taken.
func (c *Collection) RenameCategory(oldName, newName string) bool {
	i := slices.Index(c.Categories, oldName)
	if i < 0 {
		return false
	}
	c.Categories[i] = newName
	for j := range c.Links {
		if c.Links[j].Category == oldName {
			c.Links[j].Category = newName
		}
	}
	return true
}

// Summary drops the links, for listings.
func (c *Collection) Summary() CollectionSummary {
	return CollectionSummary{
		ID:         c.ID,
		Name:       c.DisplayName(),
		Categories: c.Categories,
		LinkCount:  len(c.Links),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// CollectionSummary is a collection without its links.
type CollectionSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Categories []string  `json:"categories"`
	LinkCount  int       `json:"linkCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Tab is a dashboard view over the reserved collections.
type Tab string

const (
	TabToWatch Tab = "toWatch"
	TabRewatch Tab = "rewatch"
)

// CollectionLink is a link annotated with its owning collection.
type CollectionLink struct {
	Link
	CollectionID   string `json:"docId"`
	CollectionName string `json:"docName"`
	Thumbnail      string `json:"thumbnail,omitempty"`
}
