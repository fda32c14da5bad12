package domain

import (
	"fmt"
	"math"
	"time"
)

// DaysPerMonth is the number of days the curriculum expands each month to.
const DaysPerMonth = 28

// ChecklistItem is one exercise of a training day.
type ChecklistItem struct {
	Text      string `json:"text" firestore:"text"`
	Completed bool   `json:"completed" firestore:"completed"`
}

// Day is one training day. CompletedAt is set iff every checklist item is
// completed, as of the last write through SyncCompletion or Reset.
type Day struct {
	DayNumber   int             `json:"dayNumber" firestore:"dayNumber"`
	DayName     string          `json:"dayName" firestore:"dayName"`
	Focus       string          `json:"focus" firestore:"focus"`
	Checklist   []ChecklistItem `json:"checklist" firestore:"checklist"`
	Note        string          `json:"note,omitempty" firestore:"note,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty" firestore:"completedAt,omitempty"`
}

// AllCompleted reports whether the checklist is non-empty and fully done.
func (d *Day) AllCompleted() bool {
	if len(d.Checklist) == 0 {
		return false
	}
	for _, item := range d.Checklist {
		if !item.Completed {
			return false
		}
	}
	return true
}

// SyncCompletion stamps CompletedAt on the transition to complete and clears
// it on the transition away. An existing stamp is kept.
func (d *Day) SyncCompletion(now time.Time) {
	done := d.AllCompleted()
	switch {
	case done && d.CompletedAt == nil:
		d.CompletedAt = &now
	case !done && d.CompletedAt != nil:
		d.CompletedAt = nil
	}
}

// Reset marks every item incomplete and clears the note and completion stamp.
func (d *Day) Reset() {
	for i := range d.Checklist {
		d.Checklist[i].Completed = false
	}
	d.Note = ""
	d.CompletedAt = nil
}

// DayKey returns the map key of a day, e.g. "day3".
func DayKey(dayNumber int) string {
	return fmt.Sprintf("day%d", dayNumber)
}

// MonthID returns the document key of a month, e.g. "month-3".
func MonthID(month int) string {
	return fmt.Sprintf("month-%d", month)
}

// Month is one month of the training curriculum.
type Month struct {
	ID                string         `json:"id" firestore:"-"`
	Month             int            `json:"month" firestore:"month"`
	Phase             string         `json:"phase" firestore:"phase"`
	Goals             []string       `json:"goals" firestore:"goals"`
	BonusSkillsToWork []string       `json:"bonus_skills_to_work" firestore:"bonus_skills_to_work"`
	MilestoneCheck    []string       `json:"milestone_check" firestore:"milestone_check"`
	Days              map[string]Day `json:"days" firestore:"days"`
	CreatedAt         time.Time      `json:"createdAt" firestore:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt" firestore:"updatedAt"`
}

// ProgressStats summarises a month.
type ProgressStats struct {
	TotalTasks             int `json:"totalTasks"`
	CompletedTasks         int `json:"completedTasks"`
	CompletedDays          int `json:"completedDays"`
	TotalDays              int `json:"totalDays"`
	ProgressPercentage     int `json:"progressPercentage"`
	DaysProgressPercentage int `json:"daysProgressPercentage"`
}

// Stats scans every day of the month. TotalDays counts the day records
// actually present.
func (m *Month) Stats() ProgressStats {
	var s ProgressStats
	for _, day := range m.Days {
		s.TotalDays++
		s.TotalTasks += len(day.Checklist)
		for _, item := range day.Checklist {
			if item.Completed {
				s.CompletedTasks++
			}
		}
		if day.CompletedAt != nil {
			s.CompletedDays++
		}
	}
	s.ProgressPercentage = percent(s.CompletedTasks, s.TotalTasks)
	s.DaysProgressPercentage = percent(s.CompletedDays, s.TotalDays)
	return s
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
