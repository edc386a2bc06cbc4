// Package model defines the data structures of the annotation repair workflow.
package model

// Path represents a file system path.
type Path string

// PointContext describes the syntactic construct an annotation point belongs to.
type PointContext string

const (
	// ContextFunction is a function definition.
	ContextFunction PointContext = "function"

	// ContextLoop is a for/while/do loop header.
	ContextLoop PointContext = "loop"

	// ContextBlock is a compound-statement opening.
	ContextBlock PointContext = "block"
)

// SourceFile is the in-memory view of a single C source file.
//
// Text only ever changes by inserting whole lines; the lines of OriginalText
// keep their relative order.
type SourceFile struct {
	// Path is the project-relative, slash-separated identifier.
	Path Path `yaml:"path"`
	// Text is the current, mutable content.
	Text string `yaml:"text"`
	// OriginalText is the immutable baseline used for diffing.
	OriginalText string `yaml:"original_text"`
	// AnnotationLocations maps an inserted annotation to the 1-based line it
	// was placed on, for traceability only.
	AnnotationLocations map[string]int `yaml:"annotation_locations,omitempty"`
}

// NewSourceFile creates a SourceFile whose current text equals its baseline.
func NewSourceFile(path Path, text string) *SourceFile {
	return &SourceFile{
		Path:         path,
		Text:         text,
		OriginalText: text,
	}
}

// Changed reports whether the current text differs from the baseline.
func (f *SourceFile) Changed() bool {
	return f.Text != f.OriginalText
}

// Clone returns a deep copy so a flow can own its file exclusively.
func (f *SourceFile) Clone() *SourceFile {
	clone := *f
	if f.AnnotationLocations != nil {
		clone.AnnotationLocations = make(map[string]int, len(f.AnnotationLocations))
		for k, v := range f.AnnotationLocations {
			clone.AnnotationLocations[k] = v
		}
	}

	return &clone
}

// AnnotationPoint is a legal insertion location derived from parsing text.
// Points are only valid for the exact text they were computed from.
type AnnotationPoint struct {
	Line    int          // 1-based insertion target
	Context PointContext // function, loop or block
	Name    string       // symbol name, set for functions
	Indent  int          // column width used for generated text
}
