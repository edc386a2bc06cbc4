package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FlowState is a node of the per-file repair state machine.
type FlowState int

const (
	// StateInit resolves the file inside the codebase.
	StateInit FlowState = iota
	// StateGeneratingSpec asks the spec generator for the first annotation set.
	StateGeneratingSpec
	// StateVerifying runs the verifier on spec-phase text.
	StateVerifying
	// StateRegeneratingSpec asks for a new annotation set after a failure.
	StateRegeneratingSpec
	// StateEscalatingToLemmas binds the source to its lemma file.
	StateEscalatingToLemmas
	// StateGeneratingLemma asks the lemma generator for the first lemmas.
	StateGeneratingLemma
	// StateVerifyingWithLemma runs the verifier with the lemma file in place.
	StateVerifyingWithLemma
	// StateRegeneratingLemma asks for more lemmas after a failure.
	StateRegeneratingLemma
	// StateCheckingLemma compiles the lemma file before verification.
	StateCheckingLemma
	// StateSuccess is terminal: the verifier accepted the text.
	StateSuccess
	// StateExhausted is terminal: every budget was spent.
	StateExhausted
)

func (s FlowState) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateGeneratingSpec:
		return "generating-spec"
	case StateVerifying:
		return "verifying"
	case StateRegeneratingSpec:
		return "regenerating-spec"
	case StateEscalatingToLemmas:
		return "escalating-to-lemmas"
	case StateGeneratingLemma:
		return "generating-lemma"
	case StateVerifyingWithLemma:
		return "verifying-with-lemma"
	case StateRegeneratingLemma:
		return "regenerating-lemma"
	case StateCheckingLemma:
		return "checking-lemma"
	case StateSuccess:
		return "success"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can follow.
func (s FlowState) Terminal() bool {
	return s == StateSuccess || s == StateExhausted
}

// MarshalYAML renders the state by name in stored reports.
func (s FlowState) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML parses a state stored by name.
func (s *FlowState) UnmarshalYAML(node *yaml.Node) error {
	for candidate := StateInit; candidate <= StateExhausted; candidate++ {
		if candidate.String() == node.Value {
			*s = candidate
			return nil
		}
	}

	return fmt.Errorf("unknown flow state %q", node.Value)
}

// RepairReport is the terminal outcome of one file's repair flow.
type RepairReport struct {
	Path            Path          `yaml:"path"`
	Success         bool          `yaml:"success"`
	IterationsTotal int           `yaml:"iterations_total"`
	FinalText       string        `yaml:"final_text"`
	HelperLemmas    []HelperLemma `yaml:"helper_lemmas,omitempty"`
	ErrorMessage    *string       `yaml:"error_message,omitempty"`
	Suggestions     *string       `yaml:"suggestions,omitempty"`
	FinalState      FlowState     `yaml:"final_state"`
	Diagnostics     DiagnosticSet `yaml:"diagnostics"`
	// ResumableState is always populated so a failed run can be retried.
	ResumableState RepairState `yaml:"resumable_state"`
}
