package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubetrack/internal/curriculum"
	"tubetrack/internal/domain"
)

func setupTrainingService(t *testing.T) (*TrainingService, *recorder) {
	t.Helper()
	repo := setupTestStore(t)
	rec := &recorder{}
	svc := NewTrainingService(repo, rec, testLogger())
	svc.now = fixedClock()
	return svc, rec
}

// seedOne stores a single month whose days each have the given number of
// checklist items.
func seedOne(t *testing.T, svc *TrainingService, month, items int) string {
	t.Helper()
	session := curriculum.Session{Focus: "Push"}
	for i := 0; i < items; i++ {
		session.Exercises = append(session.Exercises, "exercise")
	}
	schedule := map[string]curriculum.Session{}
	for _, d := range curriculum.Weekdays {
		schedule[d] = session
	}
	svc.plan = func() ([]curriculum.MonthPlan, error) {
		return []curriculum.MonthPlan{{Month: month, Phase: "Test", WeeklySchedule: schedule}}, nil
	}
	n, err := svc.Seed(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	return domain.MonthID(month)
}

func TestTrainingService_SeedBuiltin(t *testing.T) {
	svc, rec := setupTrainingService(t)
	ctx := context.Background()

	n, err := svc.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, n)
	pages := rec.take()
	assert.Contains(t, pages, "/training")
	assert.Contains(t, pages, "/training/month-15")

	months, err := svc.ListMonths(ctx)
	require.NoError(t, err)
	require.Len(t, months, 15)
	for i, m := range months {
		assert.Equal(t, i+1, m.Month, "months are ordered numerically")
		assert.Len(t, m.Days, domain.DaysPerMonth)
	}
}

func TestTrainingService_SeedFailure(t *testing.T) {
	svc, _ := setupTrainingService(t)
	svc.plan = func() ([]curriculum.MonthPlan, error) { return nil, errors.New("boom") }

	_, err := svc.Seed(context.Background())
	assertKind(t, err, domain.ErrWrite)
}

func TestTrainingService_ListMonthsEmpty(t *testing.T) {
	svc, _ := setupTrainingService(t)
	months, err := svc.ListMonths(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Month{}, months)
}

func TestTrainingService_GetMonthMissing(t *testing.T) {
	svc, _ := setupTrainingService(t)
	_, err := svc.GetMonth(context.Background(), "month-99")
	assertKind(t, err, domain.ErrNotFound)
	_, err = svc.GetProgressStats(context.Background(), "month-99")
	assertKind(t, err, domain.ErrNotFound)
}

func TestTrainingService_ToggleCompletion(t *testing.T) {
	svc, rec := setupTrainingService(t)
	ctx := context.Background()
	id := seedOne(t, svc, 1, 2)
	rec.take()

	day, err := svc.ToggleChecklistItem(ctx, id, 3, 0, true)
	require.NoError(t, err)
	assert.True(t, day.Checklist[0].Completed)
	assert.Nil(t, day.CompletedAt)
	assert.Equal(t, []string{"/training", "/training/month-1"}, rec.take())

	day, err = svc.ToggleChecklistItem(ctx, id, 3, 1, true)
	require.NoError(t, err)
	require.NotNil(t, day.CompletedAt, "checking the last item completes the day")
	stamp := *day.CompletedAt

	// Re-checking a done item keeps the original stamp.
	day, err = svc.ToggleChecklistItem(ctx, id, 3, 1, true)
	require.NoError(t, err)
	require.NotNil(t, day.CompletedAt)
	assert.True(t, stamp.Equal(*day.CompletedAt))

	day, err = svc.ToggleChecklistItem(ctx, id, 3, 0, false)
	require.NoError(t, err)
	assert.Nil(t, day.CompletedAt, "unchecking an item clears completion")

	m, err := svc.GetMonth(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, day, m.Days["day3"])
}

func TestTrainingService_ToggleNotFound(t *testing.T) {
	svc, rec := setupTrainingService(t)
	ctx := context.Background()
	id := seedOne(t, svc, 1, 2)
	rec.take()

	tests := []struct {
		name  string
		month string
		day   int
		index int
	}{
		{"missing month", "month-42", 1, 0},
		{"missing day", id, 29, 0},
		{"index too large", id, 1, 2},
		{"negative index", id, 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ToggleChecklistItem(ctx, tt.month, tt.day, tt.index, true)
			assertKind(t, err, domain.ErrNotFound)
		})
	}
	assert.Empty(t, rec.take())
}

func TestTrainingService_EmptyChecklistNeverCompletes(t *testing.T) {
	svc, _ := setupTrainingService(t)
	ctx := context.Background()
	id := seedOne(t, svc, 2, 0)

	day, err := svc.SetDayNote(ctx, id, 1, "rest")
	require.NoError(t, err)
	assert.Nil(t, day.CompletedAt)

	stats, err := svc.GetProgressStats(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressStats{TotalDays: 28}, stats)
}

func TestTrainingService_Notes(t *testing.T) {
	svc, _ := setupTrainingService(t)
	ctx := context.Background()
	id := seedOne(t, svc, 1, 1)

	day, err := svc.SetDayNote(ctx, id, 5, "felt strong")
	require.NoError(t, err)
	assert.Equal(t, "felt strong", day.Note)

	day, err = svc.SetDayNote(ctx, id, 5, "")
	require.NoError(t, err)
	assert.Empty(t, day.Note)

	_, err = svc.SetDayNote(ctx, id, 0, "x")
	assertKind(t, err, domain.ErrNotFound)
}

func TestTrainingService_ResetDay(t *testing.T) {
	svc, _ := setupTrainingService(t)
	ctx := context.Background()
	id := seedOne(t, svc, 1, 2)

	_, err := svc.ToggleChecklistItem(ctx, id, 7, 0, true)
	require.NoError(t, err)
	_, err = svc.ToggleChecklistItem(ctx, id, 7, 1, true)
	require.NoError(t, err)
	_, err = svc.SetDayNote(ctx, id, 7, "done")
	require.NoError(t, err)

	day, err := svc.ResetDay(ctx, id, 7)
	require.NoError(t, err)
	assert.Empty(t, day.Note)
	assert.Nil(t, day.CompletedAt)
	for _, item := range day.Checklist {
		assert.False(t, item.Completed)
	}

	_, err = svc.ResetDay(ctx, id, 30)
	assertKind(t, err, domain.ErrNotFound)
}

func TestTrainingService_ProgressStats(t *testing.T) {
	svc, _ := setupTrainingService(t)
	ctx := context.Background()
	id := seedOne(t, svc, 1, 5)

	// Complete 14 of 28 days fully.
	for d := 1; d <= 14; d++ {
		for i := 0; i < 5; i++ {
			_, err := svc.ToggleChecklistItem(ctx, id, d, i, true)
			require.NoError(t, err)
		}
	}

	stats, err := svc.GetProgressStats(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ProgressStats{
		TotalTasks:             140,
		CompletedTasks:         70,
		CompletedDays:          14,
		TotalDays:              28,
		ProgressPercentage:     50,
		DaysProgressPercentage: 50,
	}, stats)
}
