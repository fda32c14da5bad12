package service

import (
	"context"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"tubetrack/internal/cache"
	"tubetrack/internal/curriculum"
	"tubetrack/internal/domain"
	"tubetrack/internal/storage"
)

// TrainingService implements the training progress operations.
type TrainingService struct {
	store storage.MonthStore
	pages cache.Invalidator
	log   logrus.FieldLogger

	now  func() time.Time
	plan func() ([]curriculum.MonthPlan, error)
}

// NewTrainingService creates a TrainingService seeded from the built-in
// curriculum.
func NewTrainingService(store storage.MonthStore, pages cache.Invalidator, logger logrus.FieldLogger) *TrainingService {
	return &TrainingService{
		store: store,
		pages: pages,
		log:   logger.WithField("component", "training_service"),
		now:   time.Now,
		plan:  curriculum.Load,
	}
}

func (s *TrainingService) invalidate(monthIDs ...string) {
	pages := []string{cache.TrainingPage}
	for _, id := range monthIDs {
		pages = append(pages, cache.MonthPage(id))
	}
	s.pages.Invalidate(pages...)
}

// ListMonths returns every month ordered by month number.
func (s *TrainingService) ListMonths(ctx context.Context) ([]domain.Month, error) {
	months, err := s.store.ListMonths(ctx)
	if err != nil {
		return nil, storeError(s.log, err, domain.Fetchf, "failed to fetch training data")
	}
	slices.SortFunc(months, func(a, b domain.Month) int { return a.Month - b.Month })
	if months == nil {
		months = []domain.Month{}
	}
	return months, nil
}

// GetMonth returns one month with all its days.
func (s *TrainingService) GetMonth(ctx context.Context, monthID string) (domain.Month, error) {
	m, err := s.store.GetMonth(ctx, monthID)
	if err != nil {
		return domain.Month{}, storeError(s.log.WithField("month_id", monthID), err, domain.Fetchf, "failed to fetch training month")
	}
	return m, nil
}

// updateDay runs fn on one day of a month inside a transaction, then
// re-evaluates the day's completion and returns the stored day.
func (s *TrainingService) updateDay(ctx context.Context, monthID string, dayNumber int, failMsg string, fn func(d *domain.Day) error) (domain.Day, error) {
	log := s.log.WithFields(logrus.Fields{"month_id": monthID, "day": dayNumber})

	var updated domain.Day
	err := s.store.UpdateMonth(ctx, monthID, func(m *domain.Month) error {
		key := domain.DayKey(dayNumber)
		day, ok := m.Days[key]
		if !ok {
			return dayNotFound(monthID, dayNumber)
		}
		if err := fn(&day); err != nil {
			return err
		}
		now := s.now()
		day.SyncCompletion(now)
		m.Days[key] = day
		m.UpdatedAt = now
		updated = day
		return nil
	})
	if err != nil {
		return domain.Day{}, storeError(log, err, domain.Writef, failMsg)
	}
	s.invalidate(monthID)
	return updated, nil
}

// ToggleChecklistItem sets one checklist item's completed flag. The day is
// stamped complete when its last item is checked and unstamped when any
// item is unchecked again.
func (s *TrainingService) ToggleChecklistItem(ctx context.Context, monthID string, dayNumber, index int, completed bool) (domain.Day, error) {
	return s.updateDay(ctx, monthID, dayNumber, "failed to update checklist", func(d *domain.Day) error {
		if index < 0 || index >= len(d.Checklist) {
			return domain.NotFoundf("checklist item %d not found on day %d", index, dayNumber)
		}
		d.Checklist[index].Completed = completed
		return nil
	})
}

// SetDayNote replaces a day's note. An empty note removes it.
func (s *TrainingService) SetDayNote(ctx context.Context, monthID string, dayNumber int, note string) (domain.Day, error) {
	return s.updateDay(ctx, monthID, dayNumber, "failed to update note", func(d *domain.Day) error {
		d.Note = note
		return nil
	})
}

// ResetDay unchecks every item and clears the note and completion stamp.
func (s *TrainingService) ResetDay(ctx context.Context, monthID string, dayNumber int) (domain.Day, error) {
	return s.updateDay(ctx, monthID, dayNumber, "failed to reset day", func(d *domain.Day) error {
		d.Reset()
		return nil
	})
}

// GetProgressStats summarises a month's progress.
func (s *TrainingService) GetProgressStats(ctx context.Context, monthID string) (domain.ProgressStats, error) {
	m, err := s.GetMonth(ctx, monthID)
	if err != nil {
		return domain.ProgressStats{}, err
	}
	return m.Stats(), nil
}

// Seed writes every curriculum month, replacing existing progress. It
// returns the number of months written.
func (s *TrainingService) Seed(ctx context.Context) (int, error) {
	plans, err := s.plan()
	if err != nil {
		s.log.WithError(err).Error("Failed to load curriculum")
		return 0, domain.Writef("Failed to seed training data")
	}

	now := s.now()
	ids := make([]string, 0, len(plans))
	for _, p := range plans {
		m := curriculum.Expand(p, now)
		log := s.log.WithField("month_id", m.ID)
		if err := s.store.PutMonth(ctx, m); err != nil {
			return len(ids), storeError(log, err, domain.Writef, "failed to seed training data")
		}
		log.WithField("days", len(m.Days)).Info("Seeded month")
		ids = append(ids, m.ID)
	}

	s.invalidate(ids...)
	return len(ids), nil
}
