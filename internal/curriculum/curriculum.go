// Package curriculum holds the training program and expands its weekly
// schedules into the 28 day records stored per month.
package curriculum

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tubetrack/internal/domain"
)

//go:embed curriculum.yaml
var builtin []byte

// Weekdays in schedule order. Day n of a month uses Weekdays[(n-1)%7].
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Session is one weekday of a weekly schedule.
type Session struct {
	Focus     string   `yaml:"focus"`
	Exercises []string `yaml:"exercises"`
}

// MonthPlan is one month as written in the curriculum file.
type MonthPlan struct {
	Month             int                `yaml:"month"`
	Phase             string             `yaml:"phase"`
	Goals             []string           `yaml:"goals"`
	BonusSkillsToWork []string           `yaml:"bonus_skills_to_work"`
	MilestoneCheck    []string           `yaml:"milestone_check"`
	WeeklySchedule    map[string]Session `yaml:"weekly_schedule"`
}

type file struct {
	Months []MonthPlan `yaml:"months"`
}

// Load parses the built-in curriculum.
func Load() ([]MonthPlan, error) {
	return Parse(builtin)
}

// Parse decodes a curriculum document. Month numbers must be positive and
// unique, and schedule keys must be weekday names.
func Parse(data []byte) ([]MonthPlan, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse curriculum: %w", err)
	}

	seen := make(map[int]bool, len(f.Months))
	for _, m := range f.Months {
		if m.Month <= 0 {
			return nil, fmt.Errorf("curriculum: invalid month number %d", m.Month)
		}
		if seen[m.Month] {
			return nil, fmt.Errorf("curriculum: month %d listed twice", m.Month)
		}
		seen[m.Month] = true
		for key := range m.WeeklySchedule {
			if !isWeekday(key) {
				return nil, fmt.Errorf("curriculum: month %d: unknown weekday %q", m.Month, key)
			}
		}
	}
	return f.Months, nil
}

func isWeekday(s string) bool {
	for _, d := range Weekdays {
		if d == s {
			return true
		}
	}
	return false
}

// Expand builds the stored month: DaysPerMonth days cycling through the
// weekly schedule. Weekdays without a session produce no day record.
func Expand(plan MonthPlan, now time.Time) domain.Month {
	days := make(map[string]domain.Day, domain.DaysPerMonth)
	for n := 1; n <= domain.DaysPerMonth; n++ {
		weekday := Weekdays[(n-1)%len(Weekdays)]
		session, ok := plan.WeeklySchedule[weekday]
		if !ok {
			continue
		}
		checklist := make([]domain.ChecklistItem, len(session.Exercises))
		for i, text := range session.Exercises {
			checklist[i] = domain.ChecklistItem{Text: text}
		}
		days[domain.DayKey(n)] = domain.Day{
			DayNumber: n,
			DayName:   strings.ToUpper(weekday[:1]) + weekday[1:],
			Focus:     session.Focus,
			Checklist: checklist,
		}
	}

	return domain.Month{
		ID:                domain.MonthID(plan.Month),
		Month:             plan.Month,
		Phase:             plan.Phase,
		Goals:             orEmpty(plan.Goals),
		BonusSkillsToWork: orEmpty(plan.BonusSkillsToWork),
		MilestoneCheck:    orEmpty(plan.MilestoneCheck),
		Days:              days,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
