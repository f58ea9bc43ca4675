// Package mentors manages mentor profiles, their weekly timeslots and the
// appointments students book against them.
package mentors

import (
	"context"
	"errors"

	"scholarship-tracker/internal/models"
)

var (
	ErrMentorNotFound    = errors.New("MENTOR_NOT_FOUND")
	ErrTimeslotNotFound  = errors.New("TIMESLOT_NOT_FOUND")
	ErrAlreadyRegistered = errors.New("MENTOR_ALREADY_REGISTERED")
	ErrSlotAlreadyBooked = errors.New("SLOT_ALREADY_BOOKED")
)

type Store interface {
	CreateMentor(ctx context.Context, m models.MentorProfile) error
	// UpdateMentor rewrites the editable fields of the mentor owned by m.UserID.
	UpdateMentor(ctx context.Context, m models.MentorProfile) error
	GetMentor(ctx context.Context, id string) (*models.MentorProfile, error)
	GetMentorByUser(ctx context.Context, userID string) (*models.MentorProfile, error)
	// ListMentors orders unverified mentors first, then by name.
	ListMentors(ctx context.Context, verifiedOnly bool) ([]models.MentorProfile, error)
	SetVerified(ctx context.Context, id string, verified bool) error
	AddRating(ctx context.Context, id string, stars int) error

	CreateTimeslot(ctx context.Context, ts models.Timeslot) error
	GetTimeslot(ctx context.Context, id string) (*models.Timeslot, error)
	ListTimeslots(ctx context.Context, mentorID string) ([]models.Timeslot, error)
	DeleteTimeslot(ctx context.Context, mentorID, id string) error

	// CreateAppointment fails with ErrSlotAlreadyBooked when the timeslot is
	// already taken on that date.
	CreateAppointment(ctx context.Context, a models.Appointment) error
	ListMentorAppointments(ctx context.Context, mentorID string) ([]models.Appointment, error)
	ListUserAppointments(ctx context.Context, userID string) ([]models.Appointment, error)
}
