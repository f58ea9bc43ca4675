// internal/workers/matching/persist-matches/models.go
package persistmatches

import (
	"scholarship-tracker/internal/common/validation"
	"scholarship-tracker/internal/models"
)

type Input struct {
	UserID       string               `json:"userId"`
	Scholarships []models.Scholarship `json:"scholarships"`
}

type Output struct {
	UserID       string `json:"userId"`
	MatchedCount int    `json:"matchedCount"`
	AddedCount   int    `json:"addedCount"`
	Persisted    bool   `json:"persisted"`
}

var inputSchema = validation.MustCompile(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"userId", "scholarships"},
	"properties": map[string]interface{}{
		"userId": map[string]interface{}{"type": "string", "minLength": 1},
		"scholarships": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"id"},
				"properties": map[string]interface{}{
					"id": map[string]interface{}{"type": "string", "minLength": 1},
				},
			},
		},
	},
})
