package genai

import (
	"encoding/json"

	"scholarship-tracker/internal/common/validation"
)

const matchSchemaName = "scholarship_matches"

// matchSchemaJSON is sent as the strict response format and used again to
// validate whatever comes back.
const matchSchemaJSON = `{
  "type": "object",
  "properties": {
    "scholarships": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "amount": {"type": "string"},
          "university": {"type": "string"},
          "degree_level": {"type": "string"},
          "subject": {"type": "string"},
          "eligible_nationality": {"type": "string"},
          "country": {"type": "string"},
          "deadline": {"type": ["string", "null"]},
          "source_url": {"type": "string"},
          "application_url": {"type": "string"},
          "title": {"type": "string"},
          "description": {"type": "string"},
          "eligibility_criteria": {"type": "array", "items": {"type": "string"}},
          "application_procedure": {"type": "array", "items": {"type": "string"}},
          "matching_score": {"type": "number"}
        },
        "required": [
          "amount", "university", "degree_level", "subject", "eligible_nationality",
          "country", "deadline", "source_url", "application_url", "title",
          "description", "eligibility_criteria", "application_procedure", "matching_score"
        ],
        "additionalProperties": false
      }
    }
  },
  "required": ["scholarships"],
  "additionalProperties": false
}`

var matchSchema = compileMatchSchema()

func compileMatchSchema() *validation.Schema {
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(matchSchemaJSON), &m); err != nil {
		panic(err)
	}
	return validation.MustCompile(m)
}
