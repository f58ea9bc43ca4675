package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	apperrors "scholarship-tracker/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Schema is a compiled JSON schema, safe for concurrent use.
type Schema struct {
	schema *gojsonschema.Schema
}

// MustCompile compiles a schema given as a Go map and panics on a malformed schema.
func MustCompile(schemaMap map[string]interface{}) *Schema {
	s, err := Compile(schemaMap)
	if err != nil {
		panic(err)
	}
	return s
}

// Compile compiles a schema given as a Go map.
func Compile(schemaMap map[string]interface{}) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// ValidateBytes validates a raw JSON document.
func (s *Schema) ValidateBytes(doc []byte) (*ValidationResult, error) {
	return s.validate(gojsonschema.NewBytesLoader(doc))
}

// ValidateValue validates an already decoded Go value.
func (s *Schema) ValidateValue(doc interface{}) (*ValidationResult, error) {
	return s.validate(gojsonschema.NewGoLoader(doc))
}

func (s *Schema) validate(loader gojsonschema.JSONLoader) (*ValidationResult, error) {
	result, err := s.schema.Validate(loader)
	if err != nil {
		return nil, err
	}
	out := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    strings.ToUpper(e.Type()),
		})
	}
	return out, nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}

// ToError converts a failed result into a ValidationFailed error. A valid result yields nil.
func (vr *ValidationResult) ToError() error {
	if vr == nil || vr.Valid {
		return nil
	}
	stdErr := apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "Validation failed", strings.Join(vr.GetErrorMessages(), "; "))
	if len(vr.Errors) > 0 {
		stdErr.WithMetadata("field", vr.Errors[0].Field)
	}
	return stdErr
}

// Fields accumulates field checks for request structs.
type Fields struct {
	errs []ValidationError
}

func (f *Fields) Required(field, value string) *Fields {
	if strings.TrimSpace(value) == "" {
		f.errs = append(f.errs, ValidationError{Field: field, Message: "required field missing", Code: "REQUIRED_FIELD_MISSING"})
	}
	return f
}

func (f *Fields) MaxLength(field, value string, max int) *Fields {
	if len(value) > max {
		f.errs = append(f.errs, ValidationError{Field: field, Message: fmt.Sprintf("value must be at most %d characters", max), Code: "MAX_LENGTH_VIOLATION"})
	}
	return f
}

func (f *Fields) OneOf(field, value string, allowed ...string) *Fields {
	for _, a := range allowed {
		if value == a {
			return f
		}
	}
	f.errs = append(f.errs, ValidationError{Field: field, Message: fmt.Sprintf("value must be one of %v", allowed), Code: "INVALID_ENUM_VALUE"})
	return f
}

// Check appends err as a field error when cond is false.
func (f *Fields) Check(cond bool, field, message string) *Fields {
	if !cond {
		f.errs = append(f.errs, ValidationError{Field: field, Message: message, Code: "INVALID_VALUE"})
	}
	return f
}

func (f *Fields) Result() *ValidationResult {
	return &ValidationResult{Valid: len(f.errs) == 0, Errors: f.errs}
}

// Err is Result().ToError().
func (f *Fields) Err() error {
	return f.Result().ToError()
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	urlPattern   = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)
	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateURL validates http(s) URL format
func ValidateURL(url string) bool {
	return urlPattern.MatchString(url)
}

// ValidateClock validates a 24h HH:MM time.
func ValidateClock(v string) bool {
	return clockPattern.MatchString(v)
}

// ValidateDate validates a YYYY-MM-DD calendar date.
func ValidateDate(v string) bool {
	_, err := time.Parse("2006-01-02", v)
	return err == nil
}
