package mentors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/common/validation"
	"scholarship-tracker/internal/models"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// Notifier is told about new bookings. A failing notifier never fails the booking.
type Notifier interface {
	AppointmentBooked(ctx context.Context, mentor models.MentorProfile, appt models.Appointment) error
}

type Service struct {
	store    Store
	notifier Notifier
	log      logger.Logger
	now      func() time.Time
}

func NewService(store Store, notifier Notifier, log logger.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		log:      logger.Component(log, "mentors"),
		now:      time.Now,
	}
}

// ==========================
// Profiles
// ==========================

// Register creates the caller's mentor profile. New mentors start unverified.
func (s *Service) Register(ctx context.Context, userID string, in models.MentorProfile) (*models.MentorProfile, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	in = clean(in)
	if err := validateProfile(in); err != nil {
		return nil, err
	}

	in.ID = uuid.NewString()
	in.UserID = userID
	in.Verified = false
	in.RatingSum, in.RatingCount = 0, 0
	in.CreatedAt = s.now().UTC()

	if err := s.store.CreateMentor(ctx, in); err != nil {
		if errors.Is(err, ErrAlreadyRegistered) {
			return nil, apperrors.NewConflictError(apperrors.ErrCodeMentorExists, "Mentor already registered", userID)
		}
		return nil, apperrors.NewDatabaseError("create mentor", err)
	}
	s.log.Info("mentor registered", map[string]interface{}{"userId": userID, "mentorId": in.ID})
	return &in, nil
}

// UpdateProfile rewrites the caller's editable profile fields. Verification
// and ratings are left untouched.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in models.MentorProfile) (*models.MentorProfile, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	in = clean(in)
	if err := validateProfile(in); err != nil {
		return nil, err
	}
	in.UserID = userID
	if err := s.store.UpdateMentor(ctx, in); err != nil {
		return nil, mapStoreError(err, userID)
	}
	return s.Me(ctx, userID)
}

func (s *Service) Get(ctx context.Context, mentorID string) (*models.MentorProfile, error) {
	m, err := s.store.GetMentor(ctx, mentorID)
	if err != nil {
		return nil, mapStoreError(err, mentorID)
	}
	return m, nil
}

// Me returns the mentor profile owned by userID.
func (s *Service) Me(ctx context.Context, userID string) (*models.MentorProfile, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	m, err := s.store.GetMentorByUser(ctx, userID)
	if err != nil {
		return nil, mapStoreError(err, userID)
	}
	return m, nil
}

// ListVerified is the public directory.
func (s *Service) ListVerified(ctx context.Context) ([]models.MentorProfile, error) {
	out, err := s.store.ListMentors(ctx, true)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list mentors", err)
	}
	return out, nil
}

// ListAll includes unverified mentors, pending ones first.
func (s *Service) ListAll(ctx context.Context) ([]models.MentorProfile, error) {
	out, err := s.store.ListMentors(ctx, false)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list mentors", err)
	}
	return out, nil
}

func (s *Service) SetVerified(ctx context.Context, mentorID string, verified bool) (*models.MentorProfile, error) {
	if err := s.store.SetVerified(ctx, mentorID, verified); err != nil {
		return nil, mapStoreError(err, mentorID)
	}
	s.log.Info("mentor verification changed", map[string]interface{}{"mentorId": mentorID, "verified": verified})
	return s.Get(ctx, mentorID)
}

// Rate adds a 1-5 star rating to the mentor's aggregate.
func (s *Service) Rate(ctx context.Context, userID, mentorID string, stars int) (*models.MentorProfile, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	if stars < 1 || stars > 5 {
		return nil, apperrors.NewFieldValidationError("stars", "rating must be between 1 and 5")
	}
	m, err := s.Get(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if m.UserID == userID {
		return nil, apperrors.NewFieldValidationError("mentor_id", "mentors cannot rate themselves")
	}
	if err := s.store.AddRating(ctx, mentorID, stars); err != nil {
		return nil, mapStoreError(err, mentorID)
	}
	return s.Get(ctx, mentorID)
}

// ==========================
// Timeslots
// ==========================

func (s *Service) AddTimeslot(ctx context.Context, userID string, slot models.Timeslot) (*models.Timeslot, error) {
	m, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	slot.StartTime = strings.TrimSpace(slot.StartTime)
	slot.EndTime = strings.TrimSpace(slot.EndTime)
	if err := validateTimeslot(slot); err != nil {
		return nil, err
	}

	slot.ID = uuid.NewString()
	slot.MentorID = m.ID
	if err := s.store.CreateTimeslot(ctx, slot); err != nil {
		return nil, mapStoreError(err, m.ID)
	}
	return &slot, nil
}

// DeleteTimeslot removes one of the caller's timeslots. Appointments already
// booked on it are kept.
func (s *Service) DeleteTimeslot(ctx context.Context, userID, timeslotID string) error {
	m, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTimeslot(ctx, m.ID, timeslotID); err != nil {
		return mapStoreError(err, timeslotID)
	}
	return nil
}

func (s *Service) ListTimeslots(ctx context.Context, mentorID string) ([]models.Timeslot, error) {
	if _, err := s.Get(ctx, mentorID); err != nil {
		return nil, err
	}
	out, err := s.store.ListTimeslots(ctx, mentorID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list timeslots", err)
	}
	return out, nil
}

// ==========================
// Appointments
// ==========================

// Book reserves timeslotID of a verified mentor on date (YYYY-MM-DD), which
// must fall on the slot's weekday and not be in the past.
func (s *Service) Book(ctx context.Context, userID, mentorID, timeslotID, date string) (*models.Appointment, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	day, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return nil, apperrors.NewFieldValidationError("date", "date must be YYYY-MM-DD")
	}

	m, err := s.Get(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if !m.Bookable() {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeMentorNotVerified, "Mentor is not verified", mentorID)
	}

	slot, err := s.store.GetTimeslot(ctx, timeslotID)
	if err != nil {
		return nil, mapStoreError(err, timeslotID)
	}
	if slot.MentorID != m.ID {
		return nil, apperrors.NewNotFoundError(apperrors.ErrCodeTimeslotNotFound, "timeslot", timeslotID)
	}
	if int(day.Weekday()) != slot.DayOfWeek {
		return nil, apperrors.NewFieldValidationError("date",
			fmt.Sprintf("%s is a %s, the timeslot is on %s", day.Format(dateLayout), day.Weekday(), time.Weekday(slot.DayOfWeek)))
	}
	if day.Format(dateLayout) < s.now().UTC().Format(dateLayout) {
		return nil, apperrors.NewFieldValidationError("date", "date is in the past")
	}

	appt := models.Appointment{
		ID:         uuid.NewString(),
		TimeslotID: slot.ID,
		MentorID:   m.ID,
		UserID:     userID,
		Date:       day.Format(dateLayout),
		DayOfWeek:  slot.DayOfWeek,
		StartTime:  slot.StartTime,
		EndTime:    slot.EndTime,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.CreateAppointment(ctx, appt); err != nil {
		if errors.Is(err, ErrSlotAlreadyBooked) {
			return nil, apperrors.NewConflictError(apperrors.ErrCodeSlotAlreadyBooked, "Timeslot already booked",
				fmt.Sprintf("timeslot %s on %s", slot.ID, appt.Date))
		}
		return nil, apperrors.NewDatabaseError("create appointment", err)
	}

	s.log.Info("appointment booked", map[string]interface{}{
		"mentorId":   m.ID,
		"userId":     userID,
		"timeslotId": slot.ID,
		"date":       appt.Date,
	})
	if s.notifier != nil {
		if err := s.notifier.AppointmentBooked(ctx, *m, appt); err != nil {
			s.log.WithError(err).Warn("mentor not notified of booking", map[string]interface{}{"appointmentId": appt.ID})
		}
	}
	return &appt, nil
}

// ListAppointments returns the bookings made against the caller's mentor profile.
func (s *Service) ListAppointments(ctx context.Context, userID string) ([]models.Appointment, error) {
	m, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	out, err := s.store.ListMentorAppointments(ctx, m.ID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list appointments", err)
	}
	return out, nil
}

// ListBookings returns the appointments the caller booked as a student.
func (s *Service) ListBookings(ctx context.Context, userID string) ([]models.Appointment, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	out, err := s.store.ListUserAppointments(ctx, userID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list bookings", err)
	}
	return out, nil
}

func clean(m models.MentorProfile) models.MentorProfile {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.LinkedIn = strings.TrimSpace(m.LinkedIn)
	m.DriveLink = strings.TrimSpace(m.DriveLink)
	langs := make([]string, 0, len(m.Languages))
	for _, l := range m.Languages {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	m.Languages = langs
	return m
}

func validateProfile(m models.MentorProfile) error {
	f := &validation.Fields{}
	f.Required("name", m.Name).MaxLength("name", m.Name, 200)
	f.Required("email", m.Email)
	if m.Email != "" {
		f.Check(validation.ValidateEmail(m.Email), "email", "invalid email address")
	}
	if m.LinkedIn != "" {
		f.Check(validation.ValidateURL(m.LinkedIn), "linkedin", "invalid url")
	}
	if m.DriveLink != "" {
		f.Check(validation.ValidateURL(m.DriveLink), "drive_link", "invalid url")
	}
	if m.DateOfBirth != "" {
		f.Check(validation.ValidateDate(m.DateOfBirth), "date_of_birth", "date must be YYYY-MM-DD")
	}
	f.MaxLength("bio", m.Bio, 4000)
	return f.Err()
}

func validateTimeslot(ts models.Timeslot) error {
	f := &validation.Fields{}
	f.Check(ts.DayOfWeek >= 0 && ts.DayOfWeek <= 6, "day_of_week", "day_of_week must be between 0 and 6")
	f.Check(validation.ValidateClock(ts.StartTime), "start_time", "time must be HH:MM")
	f.Check(validation.ValidateClock(ts.EndTime), "end_time", "time must be HH:MM")
	if validation.ValidateClock(ts.StartTime) && validation.ValidateClock(ts.EndTime) {
		f.Check(ts.StartTime < ts.EndTime, "end_time", "end_time must be after start_time")
	}
	return f.Err()
}

func checkUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.NewUnauthenticatedError("no active session")
	}
	return nil
}

func mapStoreError(err error, id string) error {
	switch {
	case errors.Is(err, ErrMentorNotFound):
		return apperrors.NewNotFoundError(apperrors.ErrCodeMentorNotFound, "mentor", id)
	case errors.Is(err, ErrTimeslotNotFound):
		return apperrors.NewNotFoundError(apperrors.ErrCodeTimeslotNotFound, "timeslot", id)
	default:
		return apperrors.NewDatabaseError("mentor store", err)
	}
}
