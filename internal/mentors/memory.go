package mentors

import (
	"context"
	"sort"
	"sync"

	"scholarship-tracker/internal/models"
)

type MemoryStore struct {
	mu           sync.Mutex
	mentors      map[string]models.MentorProfile
	timeslots    map[string]models.Timeslot
	appointments []models.Appointment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mentors:   make(map[string]models.MentorProfile),
		timeslots: make(map[string]models.Timeslot),
	}
}

func (s *MemoryStore) CreateMentor(ctx context.Context, m models.MentorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.mentors {
		if existing.UserID == m.UserID {
			return ErrAlreadyRegistered
		}
	}
	s.mentors[m.ID] = m
	return nil
}

func (s *MemoryStore) UpdateMentor(ctx context.Context, m models.MentorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.mentors {
		if existing.UserID == m.UserID {
			m.ID = existing.ID
			m.Verified = existing.Verified
			m.RatingSum = existing.RatingSum
			m.RatingCount = existing.RatingCount
			m.CreatedAt = existing.CreatedAt
			s.mentors[id] = m
			return nil
		}
	}
	return ErrMentorNotFound
}

func (s *MemoryStore) GetMentor(ctx context.Context, id string) (*models.MentorProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mentors[id]
	if !ok {
		return nil, ErrMentorNotFound
	}
	return &m, nil
}

func (s *MemoryStore) GetMentorByUser(ctx context.Context, userID string) (*models.MentorProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.mentors {
		if m.UserID == userID {
			return &m, nil
		}
	}
	return nil, ErrMentorNotFound
}

func (s *MemoryStore) ListMentors(ctx context.Context, verifiedOnly bool) ([]models.MentorProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.MentorProfile{}
	for _, m := range s.mentors {
		if verifiedOnly && !m.Verified {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Verified != out[j].Verified {
			return !out[i].Verified
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *MemoryStore) SetVerified(ctx context.Context, id string, verified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mentors[id]
	if !ok {
		return ErrMentorNotFound
	}
	m.Verified = verified
	s.mentors[id] = m
	return nil
}

func (s *MemoryStore) AddRating(ctx context.Context, id string, stars int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mentors[id]
	if !ok {
		return ErrMentorNotFound
	}
	m.RatingSum += int64(stars)
	m.RatingCount++
	s.mentors[id] = m
	return nil
}

func (s *MemoryStore) CreateTimeslot(ctx context.Context, ts models.Timeslot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mentors[ts.MentorID]; !ok {
		return ErrMentorNotFound
	}
	s.timeslots[ts.ID] = ts
	return nil
}

func (s *MemoryStore) GetTimeslot(ctx context.Context, id string) (*models.Timeslot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.timeslots[id]
	if !ok {
		return nil, ErrTimeslotNotFound
	}
	return &ts, nil
}

func (s *MemoryStore) ListTimeslots(ctx context.Context, mentorID string) ([]models.Timeslot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Timeslot{}
	for _, ts := range s.timeslots {
		if ts.MentorID == mentorID {
			out = append(out, ts)
		}
	}
	sortTimeslots(out)
	return out, nil
}

func (s *MemoryStore) DeleteTimeslot(ctx context.Context, mentorID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.timeslots[id]
	if !ok || ts.MentorID != mentorID {
		return ErrTimeslotNotFound
	}
	delete(s.timeslots, id)
	return nil
}

func (s *MemoryStore) CreateAppointment(ctx context.Context, a models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.appointments {
		if existing.TimeslotID == a.TimeslotID && existing.Date == a.Date {
			return ErrSlotAlreadyBooked
		}
	}
	s.appointments = append(s.appointments, a)
	return nil
}

func (s *MemoryStore) ListMentorAppointments(ctx context.Context, mentorID string) ([]models.Appointment, error) {
	return s.filterAppointments(func(a models.Appointment) bool { return a.MentorID == mentorID }), nil
}

func (s *MemoryStore) ListUserAppointments(ctx context.Context, userID string) ([]models.Appointment, error) {
	return s.filterAppointments(func(a models.Appointment) bool { return a.UserID == userID }), nil
}

func (s *MemoryStore) filterAppointments(keep func(models.Appointment) bool) []models.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Appointment{}
	for _, a := range s.appointments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func sortTimeslots(list []models.Timeslot) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].DayOfWeek != list[j].DayOfWeek {
			return list[i].DayOfWeek < list[j].DayOfWeek
		}
		return list[i].StartTime < list[j].StartTime
	})
}
