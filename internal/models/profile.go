// internal/models/profile.go
package models

import "time"

// UserProfile holds the wizard's formatted profile string and the discrete
// demographic fields kept for querying.
type UserProfile struct {
	UserID      string    `json:"user_id"`
	ProfileText string    `json:"profile_text"`
	DateOfBirth string    `json:"date_of_birth,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Nationality string    `json:"nationality,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
