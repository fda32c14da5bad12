package service

import (
	"os"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubetrack/internal/domain"
	"tubetrack/internal/storage"
)

// recorder collects invalidated page paths.
type recorder struct {
	mu    sync.Mutex
	pages []string
}

func (r *recorder) Invalidate(pages ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, pages...)
}

func (r *recorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.pages
	r.pages = nil
	slices.Sort(p)
	return p
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.ErrorLevel)
	return l
}

// setupTestStore opens a temporary BadgerDB repository.
func setupTestStore(t *testing.T) *storage.BadgerRepository {
	t.Helper()
	repo, err := storage.NewBadgerRepository(t.TempDir(), testLogger())
	require.NoError(t, err, "Failed to create test BadgerDB repository")
	t.Cleanup(func() {
		assert.NoError(t, repo.Close())
	})
	return repo
}

// fixedClock returns a clock that advances one second per call.
func fixedClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func assertKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind, "unexpected error: %v", err)
	var de *domain.Error
	assert.ErrorAs(t, err, &de)
}
