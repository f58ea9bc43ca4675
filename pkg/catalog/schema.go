// pkg/catalog/schema.go
package catalog

import "scholarship-tracker/internal/models"

// Catalog is the document category catalog. It is the only place category
// display data lives.
type Catalog struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Categories  []Category `json:"categories"`
}

// Category describes one document category.
type Category struct {
	Key             models.CategoryKey     `json:"key"`
	DisplayName     string                 `json:"displayName"`
	Description     string                 `json:"description"`
	PresentationKey models.PresentationKey `json:"presentationKey"`
	MaxFileSize     int64                  `json:"maxFileSize,omitempty"`
	AllowedTypes    []string               `json:"allowedTypes,omitempty"`
}

// fileSchema is the JSON schema every catalog file must satisfy.
var fileSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"version", "categories"},
	"properties": map[string]interface{}{
		"version":     map[string]interface{}{"type": "string", "minLength": 1},
		"lastUpdated": map[string]interface{}{"type": "string"},
		"categories": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":                 "object",
				"required":             []interface{}{"key", "displayName", "presentationKey"},
				"additionalProperties": false,
				"properties": map[string]interface{}{
					"key": map[string]interface{}{
						"type": "string",
						"enum": []interface{}{"cv", "lor", "sop", "others", "english", "transcript"},
					},
					"displayName":     map[string]interface{}{"type": "string", "minLength": 1},
					"description":     map[string]interface{}{"type": "string"},
					"presentationKey": map[string]interface{}{"type": "string"},
					"maxFileSize":     map[string]interface{}{"type": "integer", "minimum": 1},
					"allowedTypes": map[string]interface{}{
						"type":  "array",
						"items": map[string]interface{}{"type": "string"},
					},
				},
			},
		},
	},
}
