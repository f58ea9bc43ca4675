package mentors

import (
	"context"
	"database/sql"
	"errors"

	"scholarship-tracker/internal/models"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const mentorColumns = `id, user_id, name, email, date_of_birth, gender, nationality, languages,
	profession, scholarship, bio, linkedin, drive_link, country, verified,
	rating_sum, rating_count, created_at`

const appointmentColumns = `id, timeslot_id, mentor_id, user_id, to_char(date, 'YYYY-MM-DD'),
	day_of_week, start_time, end_time, created_at`

func (p *PostgresStore) CreateMentor(ctx context.Context, m models.MentorProfile) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO mentors (`+mentorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		m.ID, m.UserID, m.Name, m.Email, m.DateOfBirth, m.Gender, m.Nationality, pq.Array(m.Languages),
		m.Profession, m.Scholarship, m.Bio, m.LinkedIn, m.DriveLink, m.Country, m.Verified,
		m.RatingSum, m.RatingCount, m.CreatedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyRegistered
	}
	return err
}

func (p *PostgresStore) UpdateMentor(ctx context.Context, m models.MentorProfile) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE mentors
		SET name = $2, email = $3, date_of_birth = $4, gender = $5, nationality = $6,
		    languages = $7, profession = $8, scholarship = $9, bio = $10, linkedin = $11,
		    drive_link = $12, country = $13, updated_at = NOW()
		WHERE user_id = $1`,
		m.UserID, m.Name, m.Email, m.DateOfBirth, m.Gender, m.Nationality, pq.Array(m.Languages),
		m.Profession, m.Scholarship, m.Bio, m.LinkedIn, m.DriveLink, m.Country)
	return expectRow(res, err, ErrMentorNotFound)
}

func (p *PostgresStore) GetMentor(ctx context.Context, id string) (*models.MentorProfile, error) {
	return p.getMentor(ctx, `SELECT `+mentorColumns+` FROM mentors WHERE id = $1`, id)
}

func (p *PostgresStore) GetMentorByUser(ctx context.Context, userID string) (*models.MentorProfile, error) {
	return p.getMentor(ctx, `SELECT `+mentorColumns+` FROM mentors WHERE user_id = $1`, userID)
}

func (p *PostgresStore) getMentor(ctx context.Context, q string, arg string) (*models.MentorProfile, error) {
	m, err := scanMentor(p.db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMentorNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (p *PostgresStore) ListMentors(ctx context.Context, verifiedOnly bool) ([]models.MentorProfile, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+mentorColumns+` FROM mentors
		WHERE verified OR NOT $1
		ORDER BY verified, name`, verifiedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.MentorProfile{}
	for rows.Next() {
		m, err := scanMentor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (p *PostgresStore) SetVerified(ctx context.Context, id string, verified bool) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE mentors SET verified = $2, updated_at = NOW() WHERE id = $1`, id, verified)
	return expectRow(res, err, ErrMentorNotFound)
}

// AddRating updates the aggregate in one statement so concurrent ratings never lose a vote.
func (p *PostgresStore) AddRating(ctx context.Context, id string, stars int) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE mentors
		SET rating_sum = rating_sum + $2, rating_count = rating_count + 1, updated_at = NOW()
		WHERE id = $1`, id, stars)
	return expectRow(res, err, ErrMentorNotFound)
}

func (p *PostgresStore) CreateTimeslot(ctx context.Context, ts models.Timeslot) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO timeslots (id, mentor_id, day_of_week, start_time, end_time, is_recurring)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ts.ID, ts.MentorID, ts.DayOfWeek, ts.StartTime, ts.EndTime, ts.IsRecurring)
	return err
}

func (p *PostgresStore) GetTimeslot(ctx context.Context, id string) (*models.Timeslot, error) {
	var ts models.Timeslot
	err := p.db.QueryRowContext(ctx, `
		SELECT id, mentor_id, day_of_week, start_time, end_time, is_recurring
		FROM timeslots WHERE id = $1`, id).
		Scan(&ts.ID, &ts.MentorID, &ts.DayOfWeek, &ts.StartTime, &ts.EndTime, &ts.IsRecurring)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTimeslotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func (p *PostgresStore) ListTimeslots(ctx context.Context, mentorID string) ([]models.Timeslot, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, mentor_id, day_of_week, start_time, end_time, is_recurring
		FROM timeslots WHERE mentor_id = $1
		ORDER BY day_of_week, start_time`, mentorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Timeslot{}
	for rows.Next() {
		var ts models.Timeslot
		if err := rows.Scan(&ts.ID, &ts.MentorID, &ts.DayOfWeek, &ts.StartTime, &ts.EndTime, &ts.IsRecurring); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (p *PostgresStore) DeleteTimeslot(ctx context.Context, mentorID, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM timeslots WHERE id = $1 AND mentor_id = $2`, id, mentorID)
	return expectRow(res, err, ErrTimeslotNotFound)
}

func (p *PostgresStore) CreateAppointment(ctx context.Context, a models.Appointment) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO appointments (id, timeslot_id, mentor_id, user_id, date, day_of_week, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.TimeslotID, a.MentorID, a.UserID, a.Date, a.DayOfWeek, a.StartTime, a.EndTime, a.CreatedAt)
	if isUniqueViolation(err) {
		return ErrSlotAlreadyBooked
	}
	return err
}

func (p *PostgresStore) ListMentorAppointments(ctx context.Context, mentorID string) ([]models.Appointment, error) {
	return p.listAppointments(ctx, `SELECT `+appointmentColumns+` FROM appointments
		WHERE mentor_id = $1 ORDER BY date, start_time`, mentorID)
}

func (p *PostgresStore) ListUserAppointments(ctx context.Context, userID string) ([]models.Appointment, error) {
	return p.listAppointments(ctx, `SELECT `+appointmentColumns+` FROM appointments
		WHERE user_id = $1 ORDER BY date, start_time`, userID)
}

func (p *PostgresStore) listAppointments(ctx context.Context, q, arg string) ([]models.Appointment, error) {
	rows, err := p.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Appointment{}
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.TimeslotID, &a.MentorID, &a.UserID, &a.Date,
			&a.DayOfWeek, &a.StartTime, &a.EndTime, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMentor(row rowScanner) (*models.MentorProfile, error) {
	var m models.MentorProfile
	var languages pq.StringArray
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Email, &m.DateOfBirth, &m.Gender, &m.Nationality, &languages,
		&m.Profession, &m.Scholarship, &m.Bio, &m.LinkedIn, &m.DriveLink, &m.Country, &m.Verified,
		&m.RatingSum, &m.RatingCount, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Languages = []string(languages)
	if m.Languages == nil {
		m.Languages = []string{}
	}
	return &m, nil
}

func expectRow(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
