package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DiagnosticKind tags the variant of a Diagnostic.
type DiagnosticKind int

const (
	// InvalidAnnotation is a syntax or type error inside an annotation.
	InvalidAnnotation DiagnosticKind = iota
	// ProofFailure means the annotation was accepted but the property is unproved.
	ProofFailure
)

func (k DiagnosticKind) String() string {
	switch k {
	case InvalidAnnotation:
		return "invalid-annotation"
	case ProofFailure:
		return "proof-failure"
	default:
		return "unknown"
	}
}

// MarshalYAML renders the kind by name in stored reports.
func (k DiagnosticKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// UnmarshalYAML parses a kind stored by name.
func (k *DiagnosticKind) UnmarshalYAML(node *yaml.Node) error {
	switch node.Value {
	case InvalidAnnotation.String():
		*k = InvalidAnnotation
	case ProofFailure.String():
		*k = ProofFailure
	default:
		return fmt.Errorf("unknown diagnostic kind %q", node.Value)
	}

	return nil
}

// Diagnostic is one classified finding from verifier output.
// Location and Reason are set for InvalidAnnotation; Symbol and Message for
// ProofFailure.
type Diagnostic struct {
	Kind     DiagnosticKind `yaml:"kind"`
	Location string         `yaml:"location,omitempty"`
	Reason   string         `yaml:"reason,omitempty"`
	Symbol   string         `yaml:"symbol,omitempty"`
	Message  string         `yaml:"message,omitempty"`
}

// NewInvalidAnnotation builds an InvalidAnnotation diagnostic.
func NewInvalidAnnotation(location, reason string) Diagnostic {
	return Diagnostic{Kind: InvalidAnnotation, Location: location, Reason: reason}
}

// NewProofFailure builds a ProofFailure diagnostic.
func NewProofFailure(symbol, message string) Diagnostic {
	return Diagnostic{Kind: ProofFailure, Symbol: symbol, Message: message}
}

// DiagnosticSet is the structured form of one verifier run's output.
type DiagnosticSet struct {
	Diagnostics      []Diagnostic `yaml:"diagnostics,omitempty"`
	HasSyntaxErrors  bool         `yaml:"has_syntax_errors"`
	HasProofFailures bool         `yaml:"has_proof_failures"`
	Summary          string       `yaml:"summary"`
}

// Count returns how many diagnostics of the given kind the set holds.
func (s DiagnosticSet) Count(kind DiagnosticKind) int {
	n := 0

	for _, d := range s.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}

	return n
}
