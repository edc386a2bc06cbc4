package adapter

import (
	"context"

	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// SpecRequest is the input of one specification generation.
type SpecRequest struct {
	Path           m.Path
	SourceText     string
	RelatedContext string
	// PriorError is the raw verifier output of the previous attempt, empty on
	// the first call.
	PriorError string
}

// SpecResult is the annotation set proposed by the spec generator.
type SpecResult struct {
	Annotations []m.AnnotationRequest
	Explanation string
}

// LemmaRequest is the input of one lemma synthesis.
type LemmaRequest struct {
	Path           m.Path
	SourceText     string
	LastError      string
	ExistingLemmas []m.HelperLemma
}

// LemmaResult is the lemma set proposed by the lemma generator.
type LemmaResult struct {
	Lemmas  []m.HelperLemma
	Imports []string
}

// SpecGenerator produces specification annotations for a C file.
type SpecGenerator interface {
	GenerateSpec(ctx context.Context, req SpecRequest) (SpecResult, error)
}

// LemmaGenerator produces helper lemmas for unproved side conditions.
type LemmaGenerator interface {
	GenerateLemma(ctx context.Context, req LemmaRequest) (LemmaResult, error)
}
