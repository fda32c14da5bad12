package service

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/validate"
	"github.com/sirupsen/logrus"

	"tubetrack/internal/cache"
	"tubetrack/internal/domain"
	"tubetrack/internal/storage"
	"tubetrack/internal/youtube"
)

// VideoService implements the video collection operations.
type VideoService struct {
	store storage.CollectionStore
	pages cache.Invalidator
	log   logrus.FieldLogger

	now   func() time.Time
	newID func() string
}

// NewVideoService creates a VideoService. pages is told about every page a
// successful mutation made stale.
func NewVideoService(store storage.CollectionStore, pages cache.Invalidator, logger logrus.FieldLogger) *VideoService {
	return &VideoService{
		store: store,
		pages: pages,
		log:   logger.WithField("component", "video_service"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

type linkInput struct {
	URL   string `validate:"required|youtubeURL"`
	Title string `validate:"required"`
}

func (linkInput) Messages() map[string]string {
	return validate.MS{
		"required":   "{field} is required",
		"youtubeURL": "{field} must be a YouTube link (youtube.com or youtu.be)",
	}
}

func (linkInput) Translates() map[string]string {
	return validate.MS{"URL": "url", "Title": "title"}
}

type collectionInput struct {
	ID string `validate:"required|max_len:64|regexp:^[A-Za-z0-9_-]+$"`
}

func (collectionInput) Messages() map[string]string {
	return validate.MS{
		"required": "{field} is required",
		"max_len":  "{field} must be at most 64 characters",
		"regexp":   "{field} may only contain letters, digits, '-' and '_'",
	}
}

func (collectionInput) Translates() map[string]string {
	return validate.MS{"ID": "collection id"}
}

func (s *VideoService) invalidate(collectionIDs ...string) {
	pages := []string{cache.DashboardPage}
	for _, id := range collectionIDs {
		pages = append(pages, cache.CollectionPage(id))
	}
	s.pages.Invalidate(pages...)
}

func sortByInsertion(cols []domain.Collection) {
	slices.SortStableFunc(cols, func(a, b domain.Collection) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func normalize(c *domain.Collection) {
	if c.Categories == nil {
		c.Categories = []string{}
	}
	if c.Links == nil {
		c.Links = []domain.Link{}
	}
}

// ListCollections returns collection summaries in insertion order.
func (s *VideoService) ListCollections(ctx context.Context) ([]domain.CollectionSummary, error) {
	cols, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, storeError(s.log, err, domain.Fetchf, "failed to fetch video collections")
	}
	sortByInsertion(cols)

	out := make([]domain.CollectionSummary, len(cols))
	for i := range cols {
		normalize(&cols[i])
		out[i] = cols[i].Summary()
	}
	return out, nil
}

// GetCollection returns a collection with its links and categories.
func (s *VideoService) GetCollection(ctx context.Context, id string) (domain.Collection, error) {
	c, err := s.store.GetCollection(ctx, id)
	if err != nil {
		return domain.Collection{}, storeError(s.log.WithField("collection_id", id), err, domain.Fetchf, "failed to fetch video collection")
	}
	normalize(&c)
	return c, nil
}

// CreateCollection creates an empty collection. name defaults to id.
func (s *VideoService) CreateCollection(ctx context.Context, id, name string) (domain.Collection, error) {
	in := collectionInput{ID: strings.TrimSpace(id)}
	if err := checkInput(&in); err != nil {
		return domain.Collection{}, err
	}
	now := s.now()
	c := domain.Collection{
		ID:         in.ID,
		Name:       cmp.Or(strings.TrimSpace(name), in.ID),
		Categories: []string{},
		Links:      []domain.Link{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	log := s.log.WithField("collection_id", c.ID)
	if err := s.store.CreateCollection(ctx, c); err != nil {
		if errors.Is(err, storage.ErrExists) {
			return domain.Collection{}, domain.Duplicatef("collection %s already exists", c.ID)
		}
		return domain.Collection{}, storeError(log, err, domain.Writef, "failed to create video collection")
	}
	s.invalidate(c.ID)
	return c, nil
}

// EnsureCollections creates the given collections when they do not exist.
func (s *VideoService) EnsureCollections(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		_, err := s.CreateCollection(ctx, id, "")
		if err != nil && !errors.Is(err, domain.ErrDuplicate) {
			return err
		}
	}
	return nil
}

// AddLink validates and appends a new link to a collection. The category is
// attached only when non-empty and must already exist in the collection.
func (s *VideoService) AddLink(ctx context.Context, collectionID, url, title, category string) (domain.Link, error) {
	in := linkInput{URL: strings.TrimSpace(url), Title: strings.TrimSpace(title)}
	if err := checkInput(&in); err != nil {
		return domain.Link{}, err
	}
	category = strings.TrimSpace(category)

	now := s.now()
	link := domain.Link{
		ID:       s.newID(),
		URL:      in.URL,
		Title:    in.Title,
		AddedAt:  now,
		Watched:  false,
		Category: category,
	}
	log := s.log.WithFields(logrus.Fields{"collection_id": collectionID, "link_id": link.ID})

	var err error
	if category == "" {
		err = s.store.AppendLink(ctx, collectionID, link, now)
	} else {
		err = s.store.UpdateCollections(ctx, []string{collectionID}, func(cols []*domain.Collection) error {
			c := cols[0]
			if !c.HasCategory(category) {
				return missingCategory(collectionID, category)
			}
			c.Links = append(c.Links, link)
			c.UpdatedAt = now
			return nil
		})
	}
	if err != nil {
		return domain.Link{}, storeError(log, err, domain.Writef, "failed to add YouTube link")
	}

	log.Info("Link added")
	s.invalidate(collectionID)
	return link, nil
}

// updateOne runs fn on a single collection inside a store transaction and
// invalidates its page on success.
func (s *VideoService) updateOne(ctx context.Context, log logrus.FieldLogger, collectionID, failMsg string, fn func(c *domain.Collection) error) error {
	err := s.store.UpdateCollections(ctx, []string{collectionID}, func(cols []*domain.Collection) error {
		if err := fn(cols[0]); err != nil {
			return err
		}
		cols[0].UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return storeError(log, err, domain.Writef, failMsg)
	}
	s.invalidate(collectionID)
	return nil
}

// DeleteLink removes a link. A link that is not in the collection is
// reported as not found.
func (s *VideoService) DeleteLink(ctx context.Context, collectionID, linkID string) error {
	log := s.log.WithFields(logrus.Fields{"collection_id": collectionID, "link_id": linkID})
	return s.updateOne(ctx, log, collectionID, "failed to delete YouTube link", func(c *domain.Collection) error {
		if _, ok := c.RemoveLink(linkID); !ok {
			return linkNotFound(collectionID, linkID)
		}
		return nil
	})
}

// MoveLink moves a link, unchanged, from one collection to the end of
// another. Both collections are written in one transaction.
func (s *VideoService) MoveLink(ctx context.Context, fromID, toID, linkID string) error {
	if fromID == toID {
		return domain.Validationf("source and destination collection are the same")
	}
	log := s.log.WithFields(logrus.Fields{"from": fromID, "to": toID, "link_id": linkID})

	err := s.store.UpdateCollections(ctx, []string{fromID, toID}, func(cols []*domain.Collection) error {
		from, to := cols[0], cols[1]
		link, ok := from.RemoveLink(linkID)
		if !ok {
			return linkNotFound(fromID, linkID)
		}
		to.Links = append(to.Links, link)
		now := s.now()
		from.UpdatedAt = now
		to.UpdatedAt = now
		return nil
	})
	if err != nil {
		return storeError(log, err, domain.Writef, "failed to move YouTube link")
	}

	log.Info("Link moved")
	s.invalidate(fromID, toID)
	return nil
}

// SetLinkCategory sets a link's category, or removes it when category is
// empty. A non-empty category must exist in the collection.
func (s *VideoService) SetLinkCategory(ctx context.Context, collectionID, linkID, category string) (domain.Link, error) {
	category = strings.TrimSpace(category)
	log := s.log.WithFields(logrus.Fields{"collection_id": collectionID, "link_id": linkID})

	var updated domain.Link
	err := s.updateOne(ctx, log, collectionID, "failed to update link category", func(c *domain.Collection) error {
		i := c.LinkIndex(linkID)
		if i < 0 {
			return linkNotFound(collectionID, linkID)
		}
		if category != "" && !c.HasCategory(category) {
			return missingCategory(collectionID, category)
		}
		c.Links[i].Category = category
		updated = c.Links[i]
		return nil
	})
	return updated, err
}

// SetLinkWatched marks a link as watched or unwatched.
func (s *VideoService) SetLinkWatched(ctx context.Context, collectionID, linkID string, watched bool) (domain.Link, error) {
	log := s.log.WithFields(logrus.Fields{"collection_id": collectionID, "link_id": linkID})

	var updated domain.Link
	err := s.updateOne(ctx, log, collectionID, "failed to update link", func(c *domain.Collection) error {
		i := c.LinkIndex(linkID)
		if i < 0 {
			return linkNotFound(collectionID, linkID)
		}
		c.Links[i].Watched = watched
		updated = c.Links[i]
		return nil
	})
	return updated, err
}

// AddCategory appends a category. Names are compared exactly.
func (s *VideoService) AddCategory(ctx context.Context, collectionID, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validationf("category name is required")
	}
	log := s.log.WithFields(logrus.Fields{"collection_id": collectionID, "category": name})

	var categories []string
	err := s.updateOne(ctx, log, collectionID, "failed to add category", func(c *domain.Collection) error {
		if c.HasCategory(name) {
			return domain.Duplicatef("category %q already exists", name)
		}
		c.Categories = append(c.Categories, name)
		categories = c.Categories
		return nil
	})
	return categories, err
}

// DeleteCategory removes a category and clears it from every link.
func (s *VideoService) DeleteCategory(ctx context.Context, collectionID, name string) error {
	log := s.log.WithFields(logrus.Fields{"collection_id": collectionID, "category": name})
	return s.updateOne(ctx, log, collectionID, "failed to delete category", func(c *domain.Collection) error {
		if !c.DeleteCategory(name) {
			return domain.NotFoundf("category %q not found in collection %s", name, collectionID)
		}
		return nil
	})
}

// RenameCategory renames a category and every link that uses it.
func (s *VideoService) RenameCategory(ctx context.Context, collectionID, oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return domain.Validationf("new category name is required")
	}
	log := s.log.WithFields(logrus.Fields{"collection_id": collectionID, "category": oldName, "new_category": newName})
	return s.updateOne(ctx, log, collectionID, "failed to rename category", func(c *domain.Collection) error {
		if c.HasCategory(newName) {
			return domain.Duplicatef("category %q already exists", newName)
		}
		if !c.RenameCategory(oldName, newName) {
			return domain.NotFoundf("category %q not found in collection %s", oldName, collectionID)
		}
		return nil
	})
}

// ListAllLinks flattens the links of every collection, in collection
// insertion order, annotated with the owning collection.
func (s *VideoService) ListAllLinks(ctx context.Context) ([]domain.CollectionLink, error) {
	cols, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, storeError(s.log, err, domain.Fetchf, "failed to fetch videos")
	}
	sortByInsertion(cols)

	out := []domain.CollectionLink{}
	for _, c := range cols {
		for _, l := range c.Links {
			out = append(out, domain.CollectionLink{
				Link:           l,
				CollectionID:   c.ID,
				CollectionName: c.DisplayName(),
				Thumbnail:      youtube.ThumbnailFromURL(l.URL, youtube.QualityMedium),
			})
		}
	}
	return out, nil
}

// FilterLinks keeps the links of one dashboard tab and category. Empty
// arguments do not filter.
func FilterLinks(links []domain.CollectionLink, tab domain.Tab, category string) []domain.CollectionLink {
	out := []domain.CollectionLink{}
	for _, l := range links {
		owner := domain.Collection{ID: l.CollectionID, Name: l.CollectionName}
		if tab != "" && owner.Tab() != tab {
			continue
		}
		if category != "" && l.Category != category {
			continue
		}
		out = append(out, l)
	}
	return out
}

// BackfillReport counts what BackfillUncategorized changed.
type BackfillReport struct {
	Collections int `json:"collections"`
	Links       int `json:"links"`
}

// BackfillUncategorized assigns the "unknown" category to every link that
// has none, adding "unknown" to the collection's categories when missing.
// Collections without uncategorized links are not written, so a second run
// changes nothing.
func (s *VideoService) BackfillUncategorized(ctx context.Context) (BackfillReport, error) {
	var report BackfillReport

	cols, err := s.store.ListCollections(ctx)
	if err != nil {
		return report, storeError(s.log, err, domain.Fetchf, "failed to fetch video collections")
	}

	var touched []string
	for _, col := range cols {
		if !slices.ContainsFunc(col.Links, func(l domain.Link) bool { return l.Category == "" }) {
			continue
		}
		log := s.log.WithField("collection_id", col.ID)

		var changed int
		err := s.store.UpdateCollections(ctx, []string{col.ID}, func(cs []*domain.Collection) error {
			c := cs[0]
			changed = 0
			for i := range c.Links {
				if c.Links[i].Category == "" {
					c.Links[i].Category = domain.UnknownCategory
					changed++
				}
			}
			if changed == 0 {
				return storage.ErrNoChange
			}
			if !c.HasCategory(domain.UnknownCategory) {
				c.Categories = append(c.Categories, domain.UnknownCategory)
			}
			c.UpdatedAt = s.now()
			return nil
		})
		if err != nil {
			if len(touched) > 0 {
				s.invalidate(touched...)
			}
			return report, storeError(log, err, domain.Writef, "failed to migrate video categories")
		}
		if changed > 0 {
			report.Collections++
			report.Links += changed
			touched = append(touched, col.ID)
			log.WithField("links", changed).Info("Backfilled uncategorized links")
		}
	}

	if len(touched) > 0 {
		s.invalidate(touched...)
	}
	return report, nil
}
