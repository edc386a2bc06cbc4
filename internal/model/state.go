package model

// Phase records which repair strategy a resumable state belongs to.
type Phase string

const (
	// PhaseSpec is the specification (re)generation phase.
	PhaseSpec Phase = "spec"
	// PhaseLemma is the helper-lemma synthesis phase.
	PhaseLemma Phase = "lemma"
)

// RepairState is the unit of resumability of a repair flow.
type RepairState struct {
	// CurrentAnnotations is nil until the spec generator has run once. An empty
	// set is stored like a missing one, so a resumed flow asks again.
	CurrentAnnotations []AnnotationRequest `yaml:"current_annotations,omitempty" msgpack:"current_annotations"`
	// HelperLemmas only ever grows.
	HelperLemmas []HelperLemma `yaml:"helper_lemmas,omitempty" msgpack:"helper_lemmas"`
	// LemmaImports are the Coq modules the lemma file requires.
	LemmaImports []string `yaml:"lemma_imports,omitempty" msgpack:"lemma_imports"`
	// LastError is the most recent raw verifier output.
	LastError string `yaml:"last_error,omitempty" msgpack:"last_error"`
	// IterationsUsed counts verifier runs across every phase and every resume.
	IterationsUsed int `yaml:"iterations_used" msgpack:"iterations_used"`
	// LemmaIterationsUsed counts the verifier runs spent in the lemma phase.
	LemmaIterationsUsed int `yaml:"lemma_iterations_used" msgpack:"lemma_iterations_used"`
	// Phase is the strategy the next iteration belongs to.
	Phase Phase `yaml:"phase,omitempty" msgpack:"phase"`
	// Text is the best-known annotated text at the time of the checkpoint.
	Text string `yaml:"text,omitempty" msgpack:"text"`
	// SourceHash fingerprints the original text the state was built from.
	// A state whose hash no longer matches the file is not resumed.
	SourceHash string `yaml:"source_hash,omitempty" msgpack:"source_hash"`
}

// SpecIterationsUsed is the share of IterationsUsed spent in the spec phase.
func (s RepairState) SpecIterationsUsed() int {
	return s.IterationsUsed - s.LemmaIterationsUsed
}

// Generated reports whether the spec generator has produced annotations.
func (s RepairState) Generated() bool {
	return s.CurrentAnnotations != nil
}

// HasLemma reports whether a lemma with the given name was already accepted
// into the state.
func (s RepairState) HasLemma(name string) bool {
	for _, l := range s.HelperLemmas {
		if l.Name == name {
			return true
		}
	}

	return false
}

// Clone returns a deep copy safe to hand to another owner.
func (s RepairState) Clone() RepairState {
	clone := s
	if s.CurrentAnnotations != nil {
		clone.CurrentAnnotations = append(make([]AnnotationRequest, 0, len(s.CurrentAnnotations)), s.CurrentAnnotations...)
	}

	clone.HelperLemmas = append([]HelperLemma(nil), s.HelperLemmas...)
	clone.LemmaImports = append([]string(nil), s.LemmaImports...)

	return clone
}
