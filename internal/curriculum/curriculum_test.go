package curriculum

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubetrack/internal/domain"
)

func TestLoad_Builtin(t *testing.T) {
	plans, err := Load()
	require.NoError(t, err)
	require.Len(t, plans, 15)

	for i, p := range plans {
		assert.Equal(t, i+1, p.Month)
		assert.NotEmpty(t, p.Phase)
		assert.Len(t, p.WeeklySchedule, 7, "month %d", p.Month)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "months: [\n"},
		{"zero month", "months:\n  - month: 0\n"},
		{"duplicate month", "months:\n  - month: 1\n  - month: 1\n"},
		{"unknown weekday", "months:\n  - month: 1\n    weekly_schedule:\n      funday:\n        focus: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestExpand(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	plan := MonthPlan{
		Month: 3,
		Phase: "Strength",
		WeeklySchedule: map[string]Session{
			"monday": {Focus: "Push", Exercises: []string{"push-ups", "dips"}},
			"sunday": {Focus: "Rest", Exercises: []string{"stretch"}},
		},
	}

	m := Expand(plan, now)
	assert.Equal(t, "month-3", m.ID)
	assert.Equal(t, 3, m.Month)
	assert.Equal(t, []string{}, m.Goals)
	assert.Equal(t, now, m.CreatedAt)

	// Four weeks of two scheduled weekdays.
	require.Len(t, m.Days, 8)

	day1 := m.Days["day1"]
	assert.Equal(t, 1, day1.DayNumber)
	assert.Equal(t, "Monday", day1.DayName)
	assert.Equal(t, "Push", day1.Focus)
	assert.Equal(t, []domain.ChecklistItem{{Text: "push-ups"}, {Text: "dips"}}, day1.Checklist)
	assert.Nil(t, day1.CompletedAt)

	assert.Equal(t, "Sunday", m.Days["day28"].DayName)
	assert.Contains(t, m.Days, "day22")
	assert.NotContains(t, m.Days, "day2")
}

func TestExpand_Builtin(t *testing.T) {
	plans, err := Load()
	require.NoError(t, err)

	m := Expand(plans[0], time.Now())
	require.Len(t, m.Days, domain.DaysPerMonth)
	assert.Equal(t, domain.DaysPerMonth, m.Stats().TotalDays)
	assert.Equal(t, 0, m.Stats().ProgressPercentage)
}
