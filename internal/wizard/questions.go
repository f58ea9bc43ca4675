// Package wizard implements the profile intake flow: nine fixed questions
// answered one step at a time and serialized into the matching prompt.
package wizard

// Kind is the input control a question is answered with.
type Kind string

const (
	KindRadio    Kind = "radio"
	KindCheckbox Kind = "checkbox"
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindDate     Kind = "date"
)

const (
	maxTextLength     = 200
	maxTextareaLength = 2000
	maxCountries      = 3
)

type Question struct {
	ID      string   `json:"id"`
	Label   string   `json:"label"`
	Kind    Kind     `json:"kind"`
	Options []string `json:"options,omitempty"`
	// MaxSelect caps checkbox selections; zero means no cap.
	MaxSelect int `json:"max_select,omitempty"`
}

// Question ids referenced outside the wizard.
const (
	QuestionDegreeLevel  = "degree_level"
	QuestionField        = "field_of_study"
	QuestionNationality  = "nationality"
	QuestionDateOfBirth  = "date_of_birth"
	QuestionGender       = "gender"
	QuestionCountries    = "preferred_countries"
	QuestionAcademic     = "academic_score"
	QuestionFunding      = "funding_type"
	QuestionAchievements = "achievements_goals"
)

// Questions is the fixed intake sequence.
var Questions = []Question{
	{
		ID:      QuestionDegreeLevel,
		Label:   "Degree Level",
		Kind:    KindRadio,
		Options: []string{"Bachelor's", "Master's", "PhD", "Postdoctoral"},
	},
	{ID: QuestionField, Label: "Field of Study", Kind: KindText},
	{ID: QuestionNationality, Label: "Nationality", Kind: KindText},
	{ID: QuestionDateOfBirth, Label: "Date of Birth", Kind: KindDate},
	{
		ID:      QuestionGender,
		Label:   "Gender",
		Kind:    KindRadio,
		Options: []string{"Male", "Female", "Non-binary", "Prefer not to say"},
	},
	{
		ID:    QuestionCountries,
		Label: "Preferred Countries",
		Kind:  KindCheckbox,
		Options: []string{
			"United States", "United Kingdom", "Canada", "Germany", "Australia",
			"Netherlands", "France", "Sweden", "Japan", "Any",
		},
		MaxSelect: maxCountries,
	},
	{ID: QuestionAcademic, Label: "Academic Score", Kind: KindText},
	{
		ID:      QuestionFunding,
		Label:   "Funding Type",
		Kind:    KindCheckbox,
		Options: []string{"Full Funding", "Partial Funding", "Tuition Waiver", "Living Stipend", "Travel Grant"},
	},
	{ID: QuestionAchievements, Label: "Achievements and Goals", Kind: KindTextarea},
}

func (q Question) hasOption(v string) bool {
	for _, o := range q.Options {
		if o == v {
			return true
		}
	}
	return false
}
