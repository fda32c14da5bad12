package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubetrack/internal/domain"
)

// setupTestDB creates a temporary BadgerDB instance for testing.
// It returns the repository instance and a cleanup function.
func setupTestDB(t *testing.T) (*BadgerRepository, func()) {
	t.Helper()

	testLogger := logrus.New()
	testLogger.SetOutput(os.Stderr)
	testLogger.SetLevel(logrus.ErrorLevel)

	repo, err := NewBadgerRepository(t.TempDir(), testLogger)
	require.NoError(t, err, "Failed to create test BadgerDB repository")

	cleanup := func() {
		assert.NoError(t, repo.Close(), "Failed to close test BadgerDB repository")
	}
	return repo, cleanup
}

func TestBadgerRepository_Conformance(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	runRepositorySuite(t, repo)
}

// TestBadgerRepository_ConcurrentUpdates checks that conflicting
// read-modify-write transactions are retried instead of losing updates.
func TestBadgerRepository_ConcurrentUpdates(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, repo.CreateCollection(ctx, domain.Collection{ID: "race"}))

	const writers = 4
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.UpdateCollections(ctx, []string{"race"}, func(cols []*domain.Collection) error {
				cols[0].Categories = append(cols[0].Categories, string(rune('a'+i)))
				return nil
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		}
	}
	c, err := repo.GetCollection(ctx, "race")
	require.NoError(t, err)
	assert.Len(t, c.Categories, succeeded, "every committed update must be visible")
}

func TestBadgerRepository_BackupRestore(t *testing.T) {
	src, cleanupSrc := setupTestDB(t)
	defer cleanupSrc()
	dst, cleanupDst := setupTestDB(t)
	defer cleanupDst()

	ctx := context.Background()
	require.NoError(t, src.CreateCollection(ctx, domain.Collection{ID: "videostowatch", Categories: []string{"push"}}))
	require.NoError(t, src.PutMonth(ctx, domain.Month{ID: "month-1", Month: 1, Phase: "Foundation"}))

	var buf bytes.Buffer
	require.NoError(t, src.Backup(&buf))
	require.NotZero(t, buf.Len())

	require.NoError(t, dst.Restore(&buf))

	c, err := dst.GetCollection(ctx, "videostowatch")
	require.NoError(t, err)
	assert.Equal(t, []string{"push"}, c.Categories)

	m, err := dst.GetMonth(ctx, "month-1")
	require.NoError(t, err)
	assert.Equal(t, "Foundation", m.Phase)
}

// runRepositorySuite exercises the Repository contract shared by backends.
func runRepositorySuite(t *testing.T, repo Repository) {
	ctx := context.Background()
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("CreateAndGetCollection", func(t *testing.T) {
		err := repo.CreateCollection(ctx, domain.Collection{
			ID: "suite-a", Name: "Suite A", Categories: []string{"push"}, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)

		c, err := repo.GetCollection(ctx, "suite-a")
		require.NoError(t, err)
		assert.Equal(t, "suite-a", c.ID)
		assert.Equal(t, "Suite A", c.Name)
		assert.Equal(t, []string{"push"}, c.Categories)
		assert.True(t, now.Equal(c.CreatedAt))

		err = repo.CreateCollection(ctx, domain.Collection{ID: "suite-a"})
		assert.True(t, errors.Is(err, ErrExists), "got %v", err)
	})

	t.Run("GetMissingCollection", func(t *testing.T) {
		_, err := repo.GetCollection(ctx, "does-not-exist")
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})

	t.Run("AppendLink", func(t *testing.T) {
		link := domain.Link{ID: "l1", URL: "https://youtu.be/x", Title: "X", AddedAt: now}
		require.NoError(t, repo.AppendLink(ctx, "suite-a", link, now.Add(time.Minute)))

		c, err := repo.GetCollection(ctx, "suite-a")
		require.NoError(t, err)
		require.Len(t, c.Links, 1)
		assert.Equal(t, "l1", c.Links[0].ID)
		assert.Empty(t, c.Links[0].Category)
		assert.True(t, now.Add(time.Minute).Equal(c.UpdatedAt))

		err = repo.AppendLink(ctx, "does-not-exist", link, now)
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})

	t.Run("UpdateCollectionsAcrossDocuments", func(t *testing.T) {
		require.NoError(t, repo.CreateCollection(ctx, domain.Collection{ID: "suite-b"}))

		err := repo.UpdateCollections(ctx, []string{"suite-a", "suite-b"}, func(cols []*domain.Collection) error {
			link, ok := cols[0].RemoveLink("l1")
			require.True(t, ok)
			cols[1].Links = append(cols[1].Links, link)
			return nil
		})
		require.NoError(t, err)

		a, err := repo.GetCollection(ctx, "suite-a")
		require.NoError(t, err)
		b, err := repo.GetCollection(ctx, "suite-b")
		require.NoError(t, err)
		assert.Empty(t, a.Links)
		require.Len(t, b.Links, 1)
		assert.Equal(t, "l1", b.Links[0].ID)
	})

	t.Run("UpdateCollectionsAbortsOnError", func(t *testing.T) {
		boom := errors.New("boom")
		err := repo.UpdateCollections(ctx, []string{"suite-b"}, func(cols []*domain.Collection) error {
			cols[0].Links = nil
			return boom
		})
		assert.ErrorIs(t, err, boom)

		b, err := repo.GetCollection(ctx, "suite-b")
		require.NoError(t, err)
		assert.Len(t, b.Links, 1, "aborted transaction must not write")
	})

	t.Run("UpdateCollectionsNoChange", func(t *testing.T) {
		err := repo.UpdateCollections(ctx, []string{"suite-b"}, func(cols []*domain.Collection) error {
			cols[0].Name = "ignored"
			return ErrNoChange
		})
		require.NoError(t, err)

		b, err := repo.GetCollection(ctx, "suite-b")
		require.NoError(t, err)
		assert.Empty(t, b.Name)
	})

	t.Run("UpdateCollectionsMissing", func(t *testing.T) {
		called := false
		err := repo.UpdateCollections(ctx, []string{"suite-a", "nope"}, func([]*domain.Collection) error {
			called = true
			return nil
		})
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
		assert.False(t, called)
	})

	t.Run("ListCollections", func(t *testing.T) {
		cols, err := repo.ListCollections(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(cols))
		for _, c := range cols {
			ids = append(ids, c.ID)
		}
		assert.Contains(t, ids, "suite-a")
		assert.Contains(t, ids, "suite-b")
	})

	t.Run("Months", func(t *testing.T) {
		m := domain.Month{
			ID: "month-2", Month: 2, Phase: "Strength",
			Days: map[string]domain.Day{
				"day1": {DayNumber: 1, DayName: "Monday", Checklist: []domain.ChecklistItem{{Text: "Push-ups"}}},
			},
		}
		require.NoError(t, repo.PutMonth(ctx, m))
		require.NoError(t, repo.PutMonth(ctx, domain.Month{ID: "month-1", Month: 1}))

		err := repo.UpdateMonth(ctx, "month-2", func(m *domain.Month) error {
			d := m.Days["day1"]
			d.Checklist[0].Completed = true
			d.SyncCompletion(now)
			m.Days["day1"] = d
			return nil
		})
		require.NoError(t, err)

		got, err := repo.GetMonth(ctx, "month-2")
		require.NoError(t, err)
		assert.Equal(t, "month-2", got.ID)
		require.NotNil(t, got.Days["day1"].CompletedAt)
		assert.True(t, got.Days["day1"].Checklist[0].Completed)

		months, err := repo.ListMonths(ctx)
		require.NoError(t, err)
		assert.Len(t, months, 2)

		_, err = repo.GetMonth(ctx, "month-99")
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

		err = repo.UpdateMonth(ctx, "month-99", func(*domain.Month) error { return nil })
		assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})
}
