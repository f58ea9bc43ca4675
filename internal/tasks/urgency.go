package tasks

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"scholarship-tracker/internal/models"
)

// Urgency buckets a deadline relative to now.
type Urgency string

const (
	UrgencyOverdue  Urgency = "overdue"
	UrgencyDueToday Urgency = "due-today"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyNormal   Urgency = "normal"
)

const (
	msPerDay         = 86_400_000
	UrgentWithinDays = 7
)

// DeadlineStatus is the computed urgency of one deadline.
type DeadlineStatus struct {
	DaysLeft int     `json:"days_left"`
	Urgency  Urgency `json:"urgency"`
	Label    string  `json:"label"`
}

// Status computes the days left, rounding partial days up, and its bucket.
func Status(deadline, now time.Time) DeadlineStatus {
	ms := deadline.Sub(now).Milliseconds()
	days := int(math.Ceil(float64(ms) / msPerDay))

	switch {
	case days < 0:
		return DeadlineStatus{DaysLeft: days, Urgency: UrgencyOverdue, Label: "Overdue"}
	case days == 0:
		return DeadlineStatus{DaysLeft: 0, Urgency: UrgencyDueToday, Label: "Due Today"}
	case days <= UrgentWithinDays:
		return DeadlineStatus{DaysLeft: days, Urgency: UrgencyUrgent, Label: daysLeft(days)}
	default:
		return DeadlineStatus{DaysLeft: days, Urgency: UrgencyNormal, Label: daysLeft(days)}
	}
}

func daysLeft(days int) string {
	if days == 1 {
		return "1 day left"
	}
	return fmt.Sprintf("%d days left", days)
}

// UpcomingEntry is one row of the upcoming-deadlines view.
type UpcomingEntry struct {
	TaskID        string    `json:"task_id,omitempty"`
	ScholarshipID string    `json:"scholarship_id"`
	Title         string    `json:"title"`
	Deadline      time.Time `json:"deadline"`
	DeadlineStatus
}

// Upcoming filters tasks with a deadline within windowDays (overdue ones
// included) and sorts them by deadline.
func Upcoming(tasks []models.Task, now time.Time, windowDays int) []UpcomingEntry {
	out := []UpcomingEntry{}
	for _, t := range tasks {
		if t.Deadline == nil || t.Completed {
			continue
		}
		st := Status(*t.Deadline, now)
		if st.DaysLeft > windowDays {
			continue
		}
		out = append(out, UpcomingEntry{
			TaskID:         t.ID,
			ScholarshipID:  t.ScholarshipID,
			Title:          t.Title,
			Deadline:       *t.Deadline,
			DeadlineStatus: st,
		})
	}
	sortEntries(out)
	return out
}

// ScholarshipDeadlines is Upcoming computed from the added scholarships'
// MM/DD/YYYY deadlines. Unparseable or missing deadlines are skipped.
func ScholarshipDeadlines(list []models.Scholarship, now time.Time, windowDays int) []UpcomingEntry {
	out := []UpcomingEntry{}
	for _, s := range list {
		if !s.IsAdded() || s.Deadline == nil {
			continue
		}
		d, err := ParseDeadline(*s.Deadline, now.Location())
		if err != nil {
			continue
		}
		st := Status(d, now)
		if st.DaysLeft > windowDays {
			continue
		}
		out = append(out, UpcomingEntry{
			ScholarshipID:  s.ID,
			Title:          s.Title,
			Deadline:       d,
			DeadlineStatus: st,
		})
	}
	sortEntries(out)
	return out
}

// ParseDeadline reads a MM/DD/YYYY deadline as midnight in loc.
func ParseDeadline(v string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(models.DeadlineLayout, strings.TrimSpace(v), loc)
}

func sortEntries(entries []UpcomingEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Deadline.Before(entries[j].Deadline)
	})
}
