// Package cvbuilder renders CV data into one of the bundled HTML templates.
package cvbuilder

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	apperrors "scholarship-tracker/internal/common/errors"
	"scholarship-tracker/internal/models"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

type TemplateInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	file string
}

var catalog = []TemplateInfo{
	{ID: "A", Name: "Classic", file: "templates/a.html.tmpl"},
	{ID: "B", Name: "Modern sidebar", file: "templates/b.html.tmpl"},
}

// DefaultTemplate is used when no template is requested.
const DefaultTemplate = "A"

var parsed = mustParse()

func mustParse() map[string]*template.Template {
	funcs := template.FuncMap{"join": strings.Join}
	out := make(map[string]*template.Template, len(catalog))
	for _, info := range catalog {
		t := template.Must(template.New(info.ID).Funcs(funcs).ParseFS(templateFS, info.file))
		out[info.ID] = t.Lookup(strings.TrimPrefix(info.file, "templates/"))
	}
	return out
}

// Templates lists the available template ids and names.
func Templates() []TemplateInfo {
	return append([]TemplateInfo(nil), catalog...)
}

// Render produces a standalone HTML document. Empty list items and entries
// are dropped before rendering.
func Render(data models.CVData, templateID string) ([]byte, error) {
	id := strings.ToUpper(strings.TrimSpace(templateID))
	if id == "" {
		id = DefaultTemplate
	}
	t, ok := parsed[id]
	if !ok {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeUnknownTemplate, "Unknown CV template",
			fmt.Sprintf("template %q", templateID))
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, compact(data)); err != nil {
		return nil, fmt.Errorf("render cv template %s: %w", id, err)
	}
	return buf.Bytes(), nil
}

func compact(d models.CVData) models.CVData {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Address = strings.TrimSpace(d.Address)
	d.Summary = strings.TrimSpace(d.Summary)
	d.Skills = strs(d.Skills)
	d.Interests = strs(d.Interests)
	d.Recognitions = strs(d.Recognitions)
	d.Achievements = strs(d.Achievements)

	var edu []models.CVEducation
	for _, e := range d.Education {
		e.Details = strs(e.Details)
		if blank(e.School, e.Degree, e.Location, e.Year) && len(e.Details) == 0 {
			continue
		}
		edu = append(edu, e)
	}
	d.Education = edu

	var exp []models.CVExperience
	for _, e := range d.Experience {
		e.Description = strs(e.Description)
		if blank(e.Company, e.Role, e.Location, e.Duration) && len(e.Description) == 0 {
			continue
		}
		exp = append(exp, e)
	}
	d.Experience = exp

	var vol []models.CVVolunteer
	for _, v := range d.Volunteering {
		v.Description = strs(v.Description)
		if blank(v.Organization, v.Role, v.Location, v.Duration) && len(v.Description) == 0 {
			continue
		}
		vol = append(vol, v)
	}
	d.Volunteering = vol

	var certs []models.CVCertificate
	for _, c := range d.Certifications {
		if !blank(c.Title, c.Institution, c.Year) {
			certs = append(certs, c)
		}
	}
	d.Certifications = certs

	var refs []models.CVReference
	for _, r := range d.References {
		if !blank(r.Name, r.Position, r.Contact) {
			refs = append(refs, r)
		}
	}
	d.References = refs
	return d
}

func strs(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func blank(vals ...string) bool {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
