// internal/workers/search/index-scholarships/models.go
package indexscholarships

import (
	"scholarship-tracker/internal/common/validation"
)

// Input names the user whose stored collection is mirrored into the index.
type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	UserID  string `json:"userId"`
	Indexed int    `json:"indexed"`
	Removed int    `json:"removed"`
}

var inputSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"userId"},
	"properties": map[string]interface{}{
		"userId": map[string]interface{}{"type": "string", "minLength": 1},
	},
})
