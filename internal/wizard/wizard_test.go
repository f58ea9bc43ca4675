package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	apperrors "scholarship-tracker/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

func completeAnswers() Answers {
	return Answers{
		QuestionDegreeLevel:  {"Master's"},
		QuestionField:        {"Computer Science"},
		QuestionNationality:  {"Kenyan"},
		QuestionDateOfBirth:  {"1999-04-12"},
		QuestionGender:       {"Female"},
		QuestionCountries:    {"Germany", "Canada"},
		QuestionAcademic:     {"3.8 GPA"},
		QuestionFunding:      {"Full Funding"},
		QuestionAchievements: {"Published two papers; aim to work on climate models"},
	}
}

type countingMatcher struct {
	calls    int
	profiles []string
	err      error
}

func (m *countingMatcher) Match(ctx context.Context, profile string) error {
	m.calls++
	m.profiles = append(m.profiles, profile)
	return m.err
}

// ==========================
// State Machine Tests
// ==========================

func TestWizard_NextBlockedUntilValid(t *testing.T) {
	w := New()
	assert.Equal(t, 0, w.Step())

	assert.False(t, w.Next(), "empty radio answer blocks")
	assert.Equal(t, 0, w.Step())

	require.NoError(t, w.SetAnswer("Astronaut"))
	assert.False(t, w.Next(), "unknown radio option blocks")

	require.NoError(t, w.SetAnswer("PhD"))
	assert.True(t, w.Next())
	assert.Equal(t, 1, w.Step())

	require.NoError(t, w.SetAnswer("   "))
	assert.False(t, w.Next(), "blank text blocks")
	assert.Equal(t, 1, w.Step())
}

func TestWizard_PreviousClampedAtZero(t *testing.T) {
	w := New()
	assert.False(t, w.Previous())
	assert.Equal(t, 0, w.Step())

	require.NoError(t, w.SetAnswer("PhD"))
	require.True(t, w.Next())
	assert.True(t, w.Previous())
	assert.Equal(t, 0, w.Step())
	assert.Equal(t, "PhD", w.answer(QuestionDegreeLevel), "answers survive going back")
}

func TestWizard_NextClampedAtLast(t *testing.T) {
	w, err := Replay(completeAnswers())
	require.NoError(t, err)
	require.True(t, w.IsLast())

	assert.False(t, w.Next())
	assert.Equal(t, len(Questions)-1, w.Step())
}

func TestWizard_CountriesCap(t *testing.T) {
	w, err := Replay(Answers{
		QuestionDegreeLevel: {"PhD"},
		QuestionField:       {"Physics"},
		QuestionNationality: {"Ghanaian"},
		QuestionDateOfBirth: {"1995-01-01"},
		QuestionGender:      {"Male"},
	})
	require.Error(t, err, "replay stops on the empty countries step")
	assert.Nil(t, w)

	w = New()
	for _, v := range []string{"PhD", "Physics", "Ghanaian", "1995-01-01", "Male"} {
		require.NoError(t, w.SetAnswer(v))
		require.True(t, w.Next(), "step %d", w.Step())
	}
	require.Equal(t, QuestionCountries, w.Current().ID)
	assert.False(t, w.Next(), "checkbox needs one selection")

	for _, c := range []string{"Germany", "France", "Japan"} {
		selected, err := w.Toggle(c)
		require.NoError(t, err)
		assert.True(t, selected)
	}
	assert.True(t, w.Disabled("Canada"))
	assert.False(t, w.Disabled("France"))

	_, err = w.Toggle("Canada")
	assert.ErrorIs(t, err, ErrSelectionLimit)
	assert.Equal(t, []string{"Germany", "France", "Japan"}, w.Selected())

	selected, err := w.Toggle("France")
	require.NoError(t, err)
	assert.False(t, selected)
	assert.False(t, w.Disabled("Canada"))

	_, err = w.Toggle("Atlantis")
	assert.ErrorIs(t, err, ErrUnknownOption)

	assert.ErrorIs(t, w.SetAnswer("x"), ErrNotSingleValue)
	assert.True(t, w.Next())
	_, err = w.Toggle("Germany")
	assert.ErrorIs(t, err, ErrNotCheckbox)
}

func TestWizard_DateValidation(t *testing.T) {
	w := New()
	for _, v := range []string{"PhD", "Physics", "Ghanaian"} {
		require.NoError(t, w.SetAnswer(v))
		require.True(t, w.Next())
	}
	require.Equal(t, KindDate, w.Current().Kind)

	require.NoError(t, w.SetAnswer("12/04/1999"))
	assert.False(t, w.Next())
	require.NoError(t, w.SetAnswer("1999-02-30"))
	assert.False(t, w.Next())
	require.NoError(t, w.SetAnswer("1999-02-28"))
	assert.True(t, w.Next())
}

// ==========================
// Serialization and Submit Tests
// ==========================

func TestWizard_Serialize(t *testing.T) {
	w, err := Replay(completeAnswers())
	require.NoError(t, err)

	got := w.Serialize()
	assert.Equal(t, "Degree Level: Master's, Field of Study: Computer Science, Nationality: Kenyan, "+
		"Date of Birth: 1999-04-12, Gender: Female, Preferred Countries: Germany / Canada, "+
		"Academic Score: 3.8 GPA, Funding Type: Full Funding, "+
		"Achievements and Goals: Published two papers; aim to work on climate models", got)
	assert.Len(t, strings.Split(got, ": "), len(Questions)+1)
}

func TestWizard_Submit(t *testing.T) {
	t.Run("calls matcher once", func(t *testing.T) {
		w, err := Replay(completeAnswers())
		require.NoError(t, err)
		m := &countingMatcher{}

		res, err := w.Submit(context.Background(), m)
		require.NoError(t, err)
		assert.Equal(t, 1, m.calls)
		assert.Equal(t, w.Serialize(), m.profiles[0])
		assert.Equal(t, "1999-04-12", res.DateOfBirth)
		assert.Equal(t, "Female", res.Gender)
		assert.Equal(t, "Kenyan", res.Nationality)
	})

	t.Run("not on last step", func(t *testing.T) {
		w := New()
		m := &countingMatcher{}
		_, err := w.Submit(context.Background(), m)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeWizardIncomplete))
		assert.Zero(t, m.calls)
	})

	t.Run("matcher error is returned", func(t *testing.T) {
		w, err := Replay(completeAnswers())
		require.NoError(t, err)
		boom := errors.New("boom")

		res, err := w.Submit(context.Background(), &countingMatcher{err: boom})
		assert.ErrorIs(t, err, boom)
		require.NotNil(t, res)
	})
}

func TestReplay_InvalidStep(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(Answers)
		step   string
	}{
		{"missing field", func(a Answers) { delete(a, QuestionField) }, QuestionField},
		{"bad date", func(a Answers) { a[QuestionDateOfBirth] = Value{"yesterday"} }, QuestionDateOfBirth},
		{"four countries", func(a Answers) {
			a[QuestionCountries] = Value{"Germany", "Canada", "France", "Japan"}
		}, QuestionCountries},
		{"no funding", func(a Answers) { a[QuestionFunding] = Value{} }, QuestionFunding},
		{"list for text", func(a Answers) { a[QuestionAcademic] = Value{"a", "b"} }, QuestionAcademic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := completeAnswers()
			tt.mutate(answers)

			_, err := Replay(answers)
			require.Error(t, err)
			se, ok := apperrors.AsStandard(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.KindValidationFailed, se.Kind)
			assert.Equal(t, tt.step, se.Metadata["step"])
		})
	}
}

func TestValue_UnmarshalJSON(t *testing.T) {
	var a Answers
	require.NoError(t, jsonUnmarshal(`{"gender":"Male","preferred_countries":["Japan","Sweden"]}`, &a))
	assert.Equal(t, Value{"Male"}, a["gender"])
	assert.Equal(t, Value{"Japan", "Sweden"}, a["preferred_countries"])

	assert.Error(t, jsonUnmarshal(`{"gender":3}`, &a))
}

func jsonUnmarshal(s string, v interface{}) error {
	return json.Unmarshal([]byte(s), v)
}
