// internal/models/scholarship.go
package models

// Scholarship status values. The only transitions are matched -> added
// (promote) and added -> matched (demote).
const (
	StatusMatched = "matched"
	StatusAdded   = "added"
)

// Scholarship is one entry of a user's scholarship collection.
type Scholarship struct {
	ID                   string         `json:"id"`
	Title                string         `json:"title"`
	Amount               string         `json:"amount"`
	University           string         `json:"university"`
	DegreeLevel          string         `json:"degree_level"`
	Subject              string         `json:"subject"`
	EligibleNationality  string         `json:"eligible_nationality"`
	Country              string         `json:"country"`
	Deadline             *string        `json:"deadline"`
	SourceURL            string         `json:"source_url"`
	ApplicationURL       string         `json:"application_url"`
	Description          string         `json:"description"`
	EligibilityCriteria  []string       `json:"eligibility_criteria"`
	ApplicationProcedure []string       `json:"application_procedure"`
	MatchingScore        float64        `json:"matching_score"`
	Status               string         `json:"status"`
	Documents            DocumentBundle `json:"documents"`
	Version              int64          `json:"version,omitempty"`
}

// IsAdded reports whether the scholarship is tracked on the dashboard.
func (s Scholarship) IsAdded() bool {
	return s.Status == StatusAdded
}

// DeadlineLayout is the MM/DD/YYYY format scholarship deadlines are stored in.
const DeadlineLayout = "01/02/2006"
