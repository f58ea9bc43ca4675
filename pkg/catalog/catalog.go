// pkg/catalog/catalog.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"scholarship-tracker/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// Default is the built-in catalog used when no catalog file is configured.
func Default() *Catalog {
	return &Catalog{
		Version: "1.0.0",
		Categories: []Category{
			{Key: models.CategoryTranscript, DisplayName: "Academic Transcripts", Description: "Official academic records and grade reports", PresentationKey: models.PresentGraduationCap},
			{Key: models.CategoryLOR, DisplayName: "Letters of Recommendation", Description: "References from teachers, professors, or employers", PresentationKey: models.PresentFileText},
			{Key: models.CategorySOP, DisplayName: "Statement of Purpose", Description: "Personal statement explaining your goals and motivation", PresentationKey: models.PresentFileText},
			{Key: models.CategoryCV, DisplayName: "CV / Resume", Description: "Professional and academic achievements overview", PresentationKey: models.PresentUser},
			{Key: models.CategoryEnglish, DisplayName: "English Proficiency", Description: "TOEFL, IELTS, Duolingo test scores", PresentationKey: models.PresentGlobe},
			{Key: models.CategoryOthers, DisplayName: "Other Documents", Description: "Passport, financial statements, certificates and anything else", PresentationKey: models.PresentFolder},
		},
	}
}

// Load reads and validates a catalog file. An empty path yields Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse validates raw catalog JSON against the schema and the category enum.
func Parse(data []byte) (*Catalog, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(fileSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog is not valid JSON: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("catalog schema violation: %s", strings.Join(msgs, "; "))
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every key is known, appears once, and that all six are present.
func (c *Catalog) Validate() error {
	seen := make(map[models.CategoryKey]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if _, err := models.ParseCategoryKey(string(cat.Key)); err != nil {
			return err
		}
		if seen[cat.Key] {
			return fmt.Errorf("category %q listed twice", cat.Key)
		}
		if !models.ValidPresentationKey(cat.PresentationKey) {
			return fmt.Errorf("category %q has unknown presentation key %q", cat.Key, cat.PresentationKey)
		}
		seen[cat.Key] = true
	}
	for _, k := range models.AllCategories {
		if !seen[k] {
			return fmt.Errorf("category %q missing from catalog", k)
		}
	}
	return nil
}

// Lookup returns the category for key.
func (c *Catalog) Lookup(key models.CategoryKey) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Key == key {
			return cat, true
		}
	}
	return Category{}, false
}

// Save writes the catalog as indented JSON.
func (c *Catalog) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
