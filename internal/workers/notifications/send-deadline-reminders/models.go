// internal/workers/notifications/send-deadline-reminders/models.go
package senddeadlinereminders

import "scholarship-tracker/internal/common/validation"

// Input optionally pins the reference time of the run (RFC 3339). The
// timer event that starts the process leaves it empty.
type Input struct {
	RunAt string `json:"runAt,omitempty"`
}

type Output struct {
	Users   int    `json:"users"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Skipped int    `json:"skipped"`
	RanAt   string `json:"ranAt"` // ISO 8601
}

var inputSchema = validation.MustCompile(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"runAt": map[string]interface{}{"type": "string", "format": "date-time"},
	},
})
