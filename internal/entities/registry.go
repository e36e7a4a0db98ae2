// Package entities extracts structured entities (contacts, skills, education,
// experience) from classified document text via independent pattern extractors.
package entities

import (
	"fmt"

	"github.com/jonathan/docharvest/internal/types"
)

// Extractor is one stateless pattern extractor. Fn must be pure: same text in,
// same values out, no shared state.
type Extractor struct {
	Name       string
	Type       types.EntityType
	Method     string // extraction_method recorded on each entity
	ResumeOnly bool   // gated on detected_type == resume
	Fn         func(text string) ([]string, error)
}

// Registry maps extractor names to implementations. It is constructed once
// and passed by reference rather than rebuilt from globals.
type Registry struct {
	extractors []Extractor
}

// NewRegistry builds the standard extractor set. Contact-info extractors run
// for every document; resume-specific extractors only for resumes.
func NewRegistry() *Registry {
	return &Registry{extractors: []Extractor{
		{Name: "email", Type: types.EntityEmail, Method: "regex", Fn: extractEmails},
		{Name: "phone", Type: types.EntityPhone, Method: "regex", Fn: extractPhones},
		{Name: "name", Type: types.EntityName, Method: "heading_heuristic", ResumeOnly: true, Fn: extractNameCandidates},
		{Name: "skill", Type: types.EntitySkill, Method: "dictionary", ResumeOnly: true, Fn: extractSkills},
		{Name: "education", Type: types.EntityEducation, Method: "keyword_line", ResumeOnly: true, Fn: extractEducation},
		{Name: "experience", Type: types.EntityExperience, Method: "pattern_line", ResumeOnly: true, Fn: extractExperience},
	}}
}

// Value is one extracted entity value before persistence
type Value struct {
	Type   types.EntityType `json:"type"`
	Value  string           `json:"value"`
	Method string           `json:"method"`
}

// Result holds partial extraction results, explicitly tagged with which
// extractors ran and which failed. One extractor's failure never aborts
// the others.
type Result struct {
	Entities []Value           `json:"entities"`
	Ran      []string          `json:"ran"`
	Failed   map[string]string `json:"failed,omitempty"`
}

// Run executes every applicable extractor over the text and collects partial
// results. Panics and errors in a single extractor are captured against that
// extractor only.
func (r *Registry) Run(text string, docType types.DocType) *Result {
	result := &Result{Failed: map[string]string{}}

	for _, ex := range r.extractors {
		if ex.ResumeOnly && docType != types.DocTypeResume {
			continue
		}

		values, err := runOne(ex, text)
		if err != nil {
			result.Failed[ex.Name] = err.Error()
			continue
		}

		result.Ran = append(result.Ran, ex.Name)
		for _, v := range dedupe(values) {
			result.Entities = append(result.Entities, Value{Type: ex.Type, Value: v, Method: ex.Method})
		}
	}

	if len(result.Failed) == 0 {
		result.Failed = nil
	}
	return result
}

// runOne isolates a single extractor, converting panics into errors
func runOne(ex Extractor, text string) (values []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("extractor panic: %v", rec)
		}
	}()
	return ex.Fn(text)
}

// dedupe removes duplicate values preserving first-seen order
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
