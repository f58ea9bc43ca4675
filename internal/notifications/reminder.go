// Package notifications delivers deadline reminders and booking notices over SES and SNS.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	awsx "scholarship-tracker/internal/common/aws"
	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/common/metrics"
	"scholarship-tracker/internal/profile"
	"scholarship-tracker/internal/tasks"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

var (
	ErrNoChannel = errors.New("NO_DELIVERY_CHANNEL")
)

// ContactSource lists the users reminders can reach.
type ContactSource interface {
	Contacts(ctx context.Context) ([]profile.Contact, error)
}

// DeadlineSource yields a user's upcoming task deadlines.
type DeadlineSource interface {
	UpcomingDeadlines(ctx context.Context, userID string, now time.Time, windowDays int) ([]tasks.UpcomingEntry, error)
}

type Config struct {
	FromEmail    string
	SMSSenderID  string
	WindowDays   int
	EmailEnabled bool
	SMSEnabled   bool
}

// Report summarises one reminder run.
type Report struct {
	Users   int `json:"users"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type Reminder struct {
	cfg       Config
	contacts  ContactSource
	deadlines DeadlineSource
	ses       awsx.SESService
	sns       awsx.SNSService
	logger    logger.Logger
}

// NewReminder wires the reminder. ses or sns may be nil when the channel is off.
func NewReminder(cfg Config, contacts ContactSource, deadlines DeadlineSource, ses awsx.SESService, sns awsx.SNSService, log logger.Logger) *Reminder {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = tasks.UrgentWithinDays
	}
	return &Reminder{
		cfg:       cfg,
		contacts:  contacts,
		deadlines: deadlines,
		ses:       ses,
		sns:       sns,
		logger:    logger.Component(log, "reminders"),
	}
}

// Run sends one reminder per user with a task due today or due within the
// urgent window. A failed send is counted and does not stop the run.
func (r *Reminder) Run(ctx context.Context, now time.Time) (*Report, error) {
	contacts, err := r.contacts.Contacts(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list contacts", err)
	}

	report := &Report{}
	for _, c := range contacts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Users++

		entries, err := r.deadlines.UpcomingDeadlines(ctx, c.UserID, now, r.cfg.WindowDays)
		if err != nil {
			r.logger.Warn("failed to load deadlines", map[string]interface{}{
				"userId": c.UserID,
				"error":  err.Error(),
			})
			report.Failed++
			continue
		}

		due := dueSoon(entries)
		if len(due) == 0 {
			report.Skipped++
			continue
		}

		channel, err := r.deliver(ctx, c, due)
		switch {
		case errors.Is(err, ErrNoChannel):
			report.Skipped++
		case err != nil:
			metrics.RemindersSent.WithLabelValues(channel, "failed").Inc()
			r.logger.Error("reminder send failed", map[string]interface{}{
				"userId":  c.UserID,
				"channel": channel,
				"error":   err.Error(),
			})
			report.Failed++
		default:
			metrics.RemindersSent.WithLabelValues(channel, "sent").Inc()
			report.Sent++
		}
	}

	r.logger.Info("reminder run finished", map[string]interface{}{
		"users":   report.Users,
		"sent":    report.Sent,
		"failed":  report.Failed,
		"skipped": report.Skipped,
	})
	return report, nil
}

// deliver prefers SMS when the user has a phone and SMS is on, and falls back to email.
func (r *Reminder) deliver(ctx context.Context, c profile.Contact, due []tasks.UpcomingEntry) (string, error) {
	if r.cfg.SMSEnabled && r.sns != nil && c.Phone != "" {
		_, err := r.sns.Publish(ctx, awsx.BuildSMS(c.Phone, smsText(due), r.cfg.SMSSenderID))
		return ChannelSMS, err
	}
	if r.cfg.EmailEnabled && r.ses != nil && c.Email != "" {
		subject, body := emailText(due)
		_, err := r.ses.SendEmail(ctx, awsx.BuildEmail(r.cfg.FromEmail, c.Email, subject, body, ""))
		return ChannelEmail, err
	}
	return "", ErrNoChannel
}

func dueSoon(entries []tasks.UpcomingEntry) []tasks.UpcomingEntry {
	var out []tasks.UpcomingEntry
	for _, e := range entries {
		if e.Urgency == tasks.UrgencyDueToday || e.Urgency == tasks.UrgencyUrgent {
			out = append(out, e)
		}
	}
	return out
}

func emailText(due []tasks.UpcomingEntry) (string, string) {
	subject := fmt.Sprintf("%d scholarship deadline(s) coming up", len(due))
	if len(due) == 1 {
		subject = fmt.Sprintf("Deadline reminder: %s", entryTitle(due[0]))
	}

	var b strings.Builder
	b.WriteString("Upcoming application deadlines:\n\n")
	for _, e := range due {
		fmt.Fprintf(&b, "- %s (%s): %s\n", entryTitle(e), e.Deadline.Format(dateLayout), e.Label)
	}
	return subject, b.String()
}

func smsText(due []tasks.UpcomingEntry) string {
	parts := make([]string, 0, len(due))
	for _, e := range due {
		parts = append(parts, fmt.Sprintf("%s: %s", entryTitle(e), e.Label))
	}
	return "Scholarship deadlines: " + strings.Join(parts, "; ")
}

func entryTitle(e tasks.UpcomingEntry) string {
	if e.Title != "" {
		return e.Title
	}
	return "Scholarship application"
}

const dateLayout = "Jan 2, 2006"
