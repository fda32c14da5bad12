package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fiveItemDay(n, done int) Day {
	d := Day{DayNumber: n, DayName: "Monday", Focus: "Push"}
	for i := 0; i < 5; i++ {
		d.Checklist = append(d.Checklist, ChecklistItem{Text: "rep", Completed: i < done})
	}
	return d
}

func TestDay_SyncCompletion(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	d := fiveItemDay(1, 4)

	d.SyncCompletion(now)
	assert.Nil(t, d.CompletedAt, "partially done day must not be stamped")

	d.Checklist[4].Completed = true
	d.SyncCompletion(now)
	require.NotNil(t, d.CompletedAt)
	assert.Equal(t, now, *d.CompletedAt)

	// A later sync keeps the original stamp.
	d.SyncCompletion(now.Add(time.Hour))
	assert.Equal(t, now, *d.CompletedAt)

	d.Checklist[0].Completed = false
	d.SyncCompletion(now)
	assert.Nil(t, d.CompletedAt)
}

func TestDay_EmptyChecklistNeverCompletes(t *testing.T) {
	d := Day{DayNumber: 7}
	d.SyncCompletion(time.Now())
	assert.False(t, d.AllCompleted())
	assert.Nil(t, d.CompletedAt)
}

func TestDay_Reset(t *testing.T) {
	now := time.Now()
	d := fiveItemDay(2, 5)
	d.Note = "felt strong"
	d.CompletedAt = &now

	d.Reset()

	for _, item := range d.Checklist {
		assert.False(t, item.Completed)
	}
	assert.Empty(t, d.Note)
	assert.Nil(t, d.CompletedAt)
}

func TestMonth_Stats(t *testing.T) {
	now := time.Now()
	m := Month{Days: map[string]Day{}}
	// 14 complete days and 14 untouched days: 70 of 140 items done.
	for n := 1; n <= DaysPerMonth; n++ {
		var d Day
		if n <= 14 {
			d = fiveItemDay(n, 5)
			d.CompletedAt = &now
		} else {
			d = fiveItemDay(n, 0)
		}
		m.Days[DayKey(n)] = d
	}

	assert.Equal(t, ProgressStats{
		TotalTasks:             140,
		CompletedTasks:         70,
		CompletedDays:          14,
		TotalDays:              28,
		ProgressPercentage:     50,
		DaysProgressPercentage: 50,
	}, m.Stats())
}

func TestMonth_StatsEmpty(t *testing.T) {
	m := Month{}
	assert.Equal(t, ProgressStats{}, m.Stats())
}

func TestMonth_StatsRounding(t *testing.T) {
	m := Month{Days: map[string]Day{
		"day1": {Checklist: []ChecklistItem{{Completed: true}, {}, {}}},
	}}
	s := m.Stats()
	assert.Equal(t, 33, s.ProgressPercentage)
	assert.Equal(t, 1, s.TotalDays)
	assert.Equal(t, 0, s.DaysProgressPercentage)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "day12", DayKey(12))
	assert.Equal(t, "month-3", MonthID(3))
}
