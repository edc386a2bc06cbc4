package model

import "strings"

// Annotation is an opaque specification string understood by the verifier.
type Annotation = string

// Position selects whether an explicit hint targets the line before or after
// the resolved location.
type Position string

const (
	// PositionBefore inserts directly above the resolved line.
	PositionBefore Position = "before"
	// PositionAfter inserts directly below the resolved line.
	PositionAfter Position = "after"
)

// InsertionHint binds an annotation to an explicit location: either a
// function name or a literal 1-based line number.
type InsertionHint struct {
	Location string   `json:"location" yaml:"location"`
	Position Position `json:"position,omitempty" yaml:"position,omitempty"`
}

// AnnotationRequest is an annotation together with its optional hint.
type AnnotationRequest struct {
	Text Annotation     `json:"text" yaml:"text"`
	Hint *InsertionHint `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// RequestsFromAnnotations wraps plain annotations into unhinted requests.
func RequestsFromAnnotations(annotations []Annotation) []AnnotationRequest {
	requests := make([]AnnotationRequest, 0, len(annotations))
	for _, a := range annotations {
		requests = append(requests, AnnotationRequest{Text: a})
	}

	return requests
}

// AnnotationTexts extracts the annotation strings of the requests.
func AnnotationTexts(requests []AnnotationRequest) []Annotation {
	texts := make([]Annotation, 0, len(requests))
	for _, r := range requests {
		texts = append(texts, r.Text)
	}

	return texts
}

// HelperLemma is an auxiliary Coq fact supplied to discharge a side condition.
type HelperLemma struct {
	Name         string   `json:"name" yaml:"name" msgpack:"name"`
	Statement    string   `json:"statement" yaml:"statement" msgpack:"statement"`
	ProofBody    string   `json:"proof" yaml:"proof,omitempty" msgpack:"proof"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty" msgpack:"dependencies"`
}

// Admitted reports whether the lemma has no proof body and will be stubbed.
func (l HelperLemma) Admitted() bool {
	return strings.TrimSpace(l.ProofBody) == ""
}
