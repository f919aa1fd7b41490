package email

import (
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Template identifies a transactional email template, keyed by the event
// that triggers it.
type Template string

const (
	TemplateWelcome                   Template = "welcome"
	TemplateEnrollment                Template = "enrollment"
	TemplateStudentEnrolledInstructor Template = "student_enrolled_instructor"
	TemplateNewCourseSubmitted        Template = "new_course_submitted"
	TemplateCourseApproval            Template = "course_approval"
	TemplateCourseRejection           Template = "course_rejection"
	TemplateLessonRelease             Template = "lesson_release"
	TemplateQuizResult                Template = "quiz_result"
	TemplatePaymentConfirmation       Template = "payment_confirmation"
	TemplateCourseCompletedInstructor Template = "course_completed_instructor"
	TemplateCertificateIssued         Template = "certificate_issued"
)

//go:embed templates/*.html templates/catalog.yaml
var templateFS embed.FS

// subjectCatalog mirrors templates/catalog.yaml: an ordered language list
// (first entry is the fallback) and per-template localized subject lines.
type subjectCatalog struct {
	Languages []string                     `yaml:"languages"`
	Subjects  map[string]map[string]string `yaml:"subjects"`
}

// Renderer renders localized transactional emails from the embedded template
// set. Bodies are HTML templates; subjects come from the YAML catalog and
// support the same placeholder data. Safe for concurrent use after creation.
type Renderer struct {
	bodies   map[Template]*htmltemplate.Template
	subjects map[Template]map[string]*texttemplate.Template
	matcher  language.Matcher
	langs    []string
}

// NewRenderer parses the embedded template catalog. An incomplete catalog
// (template without a fallback-language subject, or subject without a body
// file) is a build defect and fails construction.
func NewRenderer() (*Renderer, error) {
	raw, err := templateFS.ReadFile("templates/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read template catalog: %w", err)
	}

	var cat subjectCatalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}
	if len(cat.Languages) == 0 {
		return nil, fmt.Errorf("template catalog declares no languages")
	}

	tags := make([]language.Tag, len(cat.Languages))
	for i, l := range cat.Languages {
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q in template catalog: %w", l, err)
		}
		tags[i] = tag
	}

	r := &Renderer{
		bodies:   make(map[Template]*htmltemplate.Template),
		subjects: make(map[Template]map[string]*texttemplate.Template),
		matcher:  language.NewMatcher(tags),
		langs:    cat.Languages,
	}

	fallback := cat.Languages[0]
	for name, perLang := range cat.Subjects {
		tpl := Template(name)

		if _, ok := perLang[fallback]; !ok {
			return nil, fmt.Errorf("template %q has no %s subject", name, fallback)
		}

		r.subjects[tpl] = make(map[string]*texttemplate.Template, len(perLang))
		for lang, subject := range perLang {
			parsed, err := texttemplate.New(name + "." + lang).Parse(subject)
			if err != nil {
				return nil, fmt.Errorf("failed to parse subject for template %q (%s): %w", name, lang, err)
			}
			r.subjects[tpl][lang] = parsed
		}

		body, err := htmltemplate.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse body for template %q: %w", name, err)
		}
		r.bodies[tpl] = body
	}

	return r, nil
}

// MustNewRenderer creates a renderer that panics on a broken catalog.
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render produces the localized subject and HTML body for a template.
// lang is the recipient's preferred language (BCP 47); unknown or empty
// values fall back to the catalog's first language.
func (r *Renderer) Render(tpl Template, lang string, data map[string]string) (subject, bodyHTML string, err error) {
	body, ok := r.bodies[tpl]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, tpl)
	}

	matched := r.langs[0]
	if lang != "" {
		if _, idx := language.MatchStrings(r.matcher, lang); idx >= 0 && idx < len(r.langs) {
			matched = r.langs[idx]
		}
	}

	subjectTpl, ok := r.subjects[tpl][matched]
	if !ok {
		subjectTpl = r.subjects[tpl][r.langs[0]]
	}

	var sb strings.Builder
	if err := subjectTpl.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("failed to render subject for template %q: %w", tpl, err)
	}

	var bb strings.Builder
	if err := body.Execute(&bb, data); err != nil {
		return "", "", fmt.Errorf("failed to render body for template %q: %w", tpl, err)
	}

	return sb.String(), bb.String(), nil
}

// Has reports whether the renderer knows the given template.
func (r *Renderer) Has(tpl Template) bool {
	_, ok := r.bodies[tpl]
	return ok
}
