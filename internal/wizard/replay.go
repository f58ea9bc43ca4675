package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "scholarship-tracker/internal/common/errors"
)

// Value is an answer as sent over the wire: a string or a list of strings.
type Value []string

func (v *Value) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*v = Value{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return errors.New("answer must be a string or a list of strings")
	}
	*v = many
	return nil
}

// Answers maps question ids to answers.
type Answers map[string]Value

// Replay walks a fresh wizard through answers step by step, exactly as an
// interactive user would, and leaves it on the last step. The first step
// that cannot be passed is reported with its question id.
func Replay(answers Answers) (*Wizard, error) {
	w := New()
	for {
		q := w.Current()
		vals := answers[q.ID]

		if q.Kind == KindCheckbox {
			for _, opt := range vals {
				if _, err := w.Toggle(strings.TrimSpace(opt)); err != nil {
					return nil, stepError(q, err.Error())
				}
			}
		} else {
			if len(vals) > 1 {
				return nil, stepError(q, "expected a single value")
			}
			if len(vals) == 1 {
				_ = w.SetAnswer(vals[0])
			}
		}

		if err := w.validate(w.step); err != nil {
			detail := err.Error()
			if se, ok := apperrors.AsStandard(err); ok {
				detail = se.Details
			}
			return nil, stepError(q, detail)
		}
		if w.IsLast() {
			return w, nil
		}
		w.Next()
	}
}

func stepError(q Question, details string) error {
	return apperrors.NewValidationError(apperrors.ErrCodeValidationFailed,
		fmt.Sprintf("Invalid answer for %s", q.Label), details).
		WithMetadata("step", q.ID)
}
