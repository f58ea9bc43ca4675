package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/documents"
	"scholarship-tracker/internal/models"
)

func fieldError(field, details string) error {
	return apperrors.NewFieldValidationError(field, details)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fieldError(name, "must be a non-negative integer")
	}
	return n, nil
}

var deadlineLayouts = []string{time.RFC3339, "2006-01-02", models.DeadlineLayout}

// parseDeadline accepts RFC 3339, YYYY-MM-DD or the MM/DD/YYYY scholarship format.
// Empty means no deadline.
func parseDeadline(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fieldError("deadline", "expected YYYY-MM-DD, MM/DD/YYYY or RFC 3339")
}

// readUploads reads every part of the multipart field "files".
func readUploads(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]documents.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewValidationError(apperrors.ErrCodeFileTooLarge, "Upload too large", err.Error())
		}
		return nil, apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "Malformed multipart body", err.Error())
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		return nil, fieldError("files", "at least one file is required")
	}

	uploads := make([]documents.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "Unreadable upload", err.Error())
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, apperrors.NewValidationError(apperrors.ErrCodeValidationFailed, "Unreadable upload", err.Error())
		}
		uploads = append(uploads, documents.Upload{Name: fh.Filename, Data: data})
	}
	return uploads, nil
}
