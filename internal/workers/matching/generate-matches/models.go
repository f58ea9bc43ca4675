// internal/workers/matching/generate-matches/models.go
package generatematches

import (
	"scholarship-tracker/internal/common/validation"
	"scholarship-tracker/internal/models"
)

type Input struct {
	UserID  string `json:"userId"`
	Profile string `json:"profile"`
}

type Output struct {
	UserID           string               `json:"userId"`
	Scholarships     []models.Scholarship `json:"scholarships"`
	ScholarshipCount int                  `json:"scholarshipCount"`
	Persisted        bool                 `json:"persisted"`
	PersistError     string               `json:"persistError,omitempty"`
}

var inputSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"userId", "profile"},
	"properties": map[string]interface{}{
		"userId":  map[string]interface{}{"type": "string", "minLength": 1},
		"profile": map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 20000},
	},
})
