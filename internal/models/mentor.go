// internal/models/mentor.go
package models

import "time"

type MentorProfile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Nationality string    `json:"nationality,omitempty"`
	Languages   []string  `json:"languages"`
	Profession  string    `json:"profession,omitempty"`
	Scholarship string    `json:"scholarship,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	LinkedIn    string    `json:"linkedin,omitempty"`
	DriveLink   string    `json:"drive_link,omitempty"`
	Country     string    `json:"country,omitempty"`
	Verified    bool      `json:"verified"`
	RatingSum   int64     `json:"-"`
	RatingCount int64     `json:"rating_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Rating is the mean of all ratings, 0 when unrated.
func (m MentorProfile) Rating() float64 {
	if m.RatingCount == 0 {
		return 0
	}
	return float64(m.RatingSum) / float64(m.RatingCount)
}

// Bookable reports whether students may book this mentor.
func (m MentorProfile) Bookable() bool {
	return m.Verified
}

// Timeslot is a recurring weekly availability window. DayOfWeek follows
// time.Weekday (0 = Sunday).
type Timeslot struct {
	ID          string `json:"id"`
	MentorID    string `json:"mentor_id"`
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsRecurring bool   `json:"is_recurring"`
}

// Appointment binds a timeslot on a concrete date to a requesting user. The
// slot's day and times are copied so the appointment outlives the slot.
type Appointment struct {
	ID         string    `json:"id"`
	TimeslotID string    `json:"timeslot_id"`
	MentorID   string    `json:"mentor_id"`
	UserID     string    `json:"user_id"`
	Date       string    `json:"date"`
	DayOfWeek  int       `json:"day_of_week"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	CreatedAt  time.Time `json:"created_at"`
}
