// internal/models/document.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// CategoryKey is the closed set of document categories.
type CategoryKey string

const (
	CategoryCV         CategoryKey = "cv"
	CategoryLOR        CategoryKey = "lor"
	CategorySOP        CategoryKey = "sop"
	CategoryOthers     CategoryKey = "others"
	CategoryEnglish    CategoryKey = "english"
	CategoryTranscript CategoryKey = "transcript"
)

// AllCategories lists every key in canonical order.
var AllCategories = []CategoryKey{
	CategoryCV,
	CategoryLOR,
	CategorySOP,
	CategoryOthers,
	CategoryEnglish,
	CategoryTranscript,
}

// ParseCategoryKey accepts only the six known keys; anything else is an error,
// never a silent fallback to "others".
func ParseCategoryKey(raw string) (CategoryKey, error) {
	key := CategoryKey(strings.ToLower(strings.TrimSpace(raw)))
	for _, k := range AllCategories {
		if k == key {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown document category %q", raw)
}

// PresentationKey tells the presentation layer how to render a category.
type PresentationKey string

const (
	PresentGraduationCap PresentationKey = "graduation-cap"
	PresentFileText      PresentationKey = "file-text"
	PresentUser          PresentationKey = "user"
	PresentGlobe         PresentationKey = "globe"
	PresentFolder        PresentationKey = "folder"
	PresentAward         PresentationKey = "award"
)

var presentationKeys = map[PresentationKey]struct{}{
	PresentGraduationCap: {},
	PresentFileText:      {},
	PresentUser:          {},
	PresentGlobe:         {},
	PresentFolder:        {},
	PresentAward:         {},
}

// ValidPresentationKey reports whether k is a known presentation key.
func ValidPresentationKey(k PresentationKey) bool {
	_, ok := presentationKeys[k]
	return ok
}

// File lifecycle states for the two-phase upload.
const (
	FileStatePending   = "pending"
	FileStateConfirmed = "confirmed"
	FileStateDeleting  = "deleting"
)

// FileRef is the metadata record of one stored document.
type FileRef struct {
	ID          string      `json:"id"`
	UserID      string      `json:"-"`
	Category    CategoryKey `json:"category"`
	Name        string      `json:"name"`
	Path        string      `json:"path"`
	Size        int64       `json:"size"`
	ContentType string      `json:"content_type"`
	State       string      `json:"state"`
	UploadedAt  time.Time   `json:"uploaded_at"`
	UpdatedAt   time.Time   `json:"-"`
}

// DocumentBundle maps every category key to the storage paths filed under it.
type DocumentBundle map[CategoryKey][]string

// NewDocumentBundle returns a bundle with all six keys present and empty.
func NewDocumentBundle() DocumentBundle {
	b := make(DocumentBundle, len(AllCategories))
	for _, k := range AllCategories {
		b[k] = []string{}
	}
	return b
}

// Normalize fills any absent key with an empty list and returns the bundle.
// A nil receiver yields a fresh bundle.
func (b DocumentBundle) Normalize() DocumentBundle {
	if b == nil {
		return NewDocumentBundle()
	}
	for _, k := range AllCategories {
		if b[k] == nil {
			b[k] = []string{}
		}
	}
	return b
}
