package notifications

import (
	"context"
	"fmt"

	awsx "scholarship-tracker/internal/common/aws"
	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/common/metrics"
	"scholarship-tracker/internal/models"
)

// AppointmentNotifier emails a mentor when a student books one of their slots.
type AppointmentNotifier struct {
	ses     awsx.SESService
	from    string
	enabled bool
	logger  logger.Logger
}

func NewAppointmentNotifier(ses awsx.SESService, from string, enabled bool, log logger.Logger) *AppointmentNotifier {
	return &AppointmentNotifier{
		ses:     ses,
		from:    from,
		enabled: enabled && ses != nil,
		logger:  logger.Component(log, "appointment-notifier"),
	}
}

func (n *AppointmentNotifier) AppointmentBooked(ctx context.Context, mentor models.MentorProfile, appt models.Appointment) error {
	if !n.enabled || mentor.Email == "" {
		n.logger.Debug("appointment notice skipped", map[string]interface{}{
			"mentorId":      mentor.ID,
			"appointmentId": appt.ID,
		})
		return nil
	}

	subject := fmt.Sprintf("New mentoring session on %s", appt.Date)
	body := fmt.Sprintf(
		"Hello %s,\n\nA student booked your %s-%s slot on %s.\n\nAppointment id: %s\n",
		mentor.Name, appt.StartTime, appt.EndTime, appt.Date, appt.ID,
	)

	if _, err := n.ses.SendEmail(ctx, awsx.BuildEmail(n.from, mentor.Email, subject, body, "")); err != nil {
		metrics.RemindersSent.WithLabelValues(ChannelEmail, "failed").Inc()
		return apperrors.NewNotificationSendFailedError(ChannelEmail, err)
	}
	metrics.RemindersSent.WithLabelValues(ChannelEmail, "sent").Inc()
	return nil
}
