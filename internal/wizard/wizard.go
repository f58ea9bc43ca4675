package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/common/validation"
)

var (
	ErrNotCheckbox    = errors.New("current question is not a checkbox")
	ErrNotSingleValue = errors.New("current question takes a list of options")
	ErrUnknownOption  = errors.New("unknown option")
	ErrSelectionLimit = errors.New("selection limit reached")
)

// Matcher receives the serialized profile once the wizard is submitted.
type Matcher interface {
	Match(ctx context.Context, profile string) error
}

type MatcherFunc func(ctx context.Context, profile string) error

func (f MatcherFunc) Match(ctx context.Context, profile string) error { return f(ctx, profile) }

// Result is what a completed wizard yields for the user's profile.
type Result struct {
	ProfileText string `json:"profile_text"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Nationality string `json:"nationality"`
}

type answer struct {
	value  string
	values []string
}

// Wizard is a linear state machine over Questions. It is not safe for
// concurrent use; one instance serves one intake.
type Wizard struct {
	questions []Question
	answers   []answer
	step      int
}

func New() *Wizard {
	return &Wizard{
		questions: Questions,
		answers:   make([]answer, len(Questions)),
	}
}

func (w *Wizard) Step() int { return w.step }

func (w *Wizard) Len() int { return len(w.questions) }

func (w *Wizard) Current() Question { return w.questions[w.step] }

func (w *Wizard) IsLast() bool { return w.step == len(w.questions)-1 }

// SetAnswer records the answer to a non-checkbox question.
func (w *Wizard) SetAnswer(value string) error {
	q := w.Current()
	if q.Kind == KindCheckbox {
		return ErrNotSingleValue
	}
	w.answers[w.step].value = strings.TrimSpace(value)
	return nil
}

// Toggle flips a checkbox option and returns whether it is now selected.
// Selecting past the question's cap is rejected.
func (w *Wizard) Toggle(option string) (bool, error) {
	q := w.Current()
	if q.Kind != KindCheckbox {
		return false, ErrNotCheckbox
	}
	if !q.hasOption(option) {
		return false, fmt.Errorf("%w: %s", ErrUnknownOption, option)
	}

	a := &w.answers[w.step]
	for i, v := range a.values {
		if v == option {
			a.values = append(a.values[:i:i], a.values[i+1:]...)
			return false, nil
		}
	}
	if w.Disabled(option) {
		return false, ErrSelectionLimit
	}
	a.values = append(a.values, option)
	return true, nil
}

// Selected returns the options chosen on the current checkbox step.
func (w *Wizard) Selected() []string {
	return append([]string(nil), w.answers[w.step].values...)
}

// Disabled reports whether option can no longer be selected because the cap is reached.
func (w *Wizard) Disabled(option string) bool {
	q := w.Current()
	if q.Kind != KindCheckbox || q.MaxSelect == 0 {
		return false
	}
	a := w.answers[w.step]
	for _, v := range a.values {
		if v == option {
			return false
		}
	}
	return len(a.values) >= q.MaxSelect
}

// Valid reports whether the current step's answer allows moving on.
func (w *Wizard) Valid() bool {
	return w.validate(w.step) == nil
}

// Next advances when the current answer is valid and reports whether it moved.
func (w *Wizard) Next() bool {
	if !w.Valid() || w.IsLast() {
		return false
	}
	w.step++
	return true
}

// Previous steps back, stopping at the first question.
func (w *Wizard) Previous() bool {
	if w.step == 0 {
		return false
	}
	w.step--
	return true
}

func (w *Wizard) validate(i int) error {
	q := w.questions[i]
	a := w.answers[i]
	f := &validation.Fields{}

	switch q.Kind {
	case KindCheckbox:
		f.Check(len(a.values) > 0, q.ID, "select at least one option")
		f.Check(q.MaxSelect == 0 || len(a.values) <= q.MaxSelect, q.ID, fmt.Sprintf("select at most %d options", q.MaxSelect))
	case KindRadio:
		f.Required(q.ID, a.value)
		if a.value != "" {
			f.OneOf(q.ID, a.value, q.Options...)
		}
	case KindDate:
		f.Required(q.ID, a.value)
		if a.value != "" {
			f.Check(validation.ValidateDate(a.value), q.ID, "date must be YYYY-MM-DD")
		}
	case KindTextarea:
		f.Required(q.ID, a.value).MaxLength(q.ID, a.value, maxTextareaLength)
	default:
		f.Required(q.ID, a.value).MaxLength(q.ID, a.value, maxTextLength)
	}
	return f.Err()
}

// Serialize renders every answer as "<Label>: <value>" joined by ", ".
// Multi-value answers are joined by " / ".
func (w *Wizard) Serialize() string {
	parts := make([]string, len(w.questions))
	for i, q := range w.questions {
		v := w.answers[i].value
		if q.Kind == KindCheckbox {
			v = strings.Join(w.answers[i].values, " / ")
		}
		parts[i] = q.Label + ": " + v
	}
	return strings.Join(parts, ", ")
}

// Submit hands the serialized profile to m exactly once. It is only allowed
// on the last step with every answer valid.
func (w *Wizard) Submit(ctx context.Context, m Matcher) (*Result, error) {
	if !w.IsLast() {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeWizardIncomplete, "Wizard is not on its last step",
			fmt.Sprintf("step %d of %d", w.step+1, len(w.questions)))
	}
	for i := range w.questions {
		if err := w.validate(i); err != nil {
			return nil, apperrors.NewValidationError(apperrors.ErrCodeWizardIncomplete, "Wizard has invalid answers",
				w.questions[i].ID).WithMetadata("step", w.questions[i].ID)
		}
	}

	res := &Result{
		ProfileText: w.Serialize(),
		DateOfBirth: w.answer(QuestionDateOfBirth),
		Gender:      w.answer(QuestionGender),
		Nationality: w.answer(QuestionNationality),
	}
	if m != nil {
		if err := m.Match(ctx, res.ProfileText); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (w *Wizard) answer(id string) string {
	for i, q := range w.questions {
		if q.ID == id {
			return w.answers[i].value
		}
	}
	return ""
}
