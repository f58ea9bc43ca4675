// internal/workers/documents/reconcile-uploads/models.go
package reconcileuploads

import "scholarship-tracker/internal/common/validation"

type Input struct {
	OlderThanSeconds int `json:"olderThanSeconds,omitempty"`
}

type Output struct {
	PendingRemoved  int  `json:"pendingRemoved"`
	DeletingRemoved int  `json:"deletingRemoved"`
	Failed          int  `json:"failed"`
	Clean           bool `json:"clean"`
}

var inputSchema = validation.MustCompile(map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"olderThanSeconds": map[string]interface{}{"type": "integer", "minimum": 60},
	},
})
