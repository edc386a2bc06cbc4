package domain

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rcpilot.dev/pkg/rcpilot/internal/adapter"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// InsertResult is the outcome of one insertion pass.
type InsertResult struct {
	Text string
	// Placed holds the requests now present in Text, including those that
	// were already there.
	Placed []m.AnnotationRequest
	// Unplaced holds requests no point could be resolved for. They are never
	// dropped silently; the caller decides on a fallback.
	Unplaced []m.AnnotationRequest
	// Points are the annotation points of the input text.
	Points []m.AnnotationPoint
	// Locations maps each placed annotation to its 1-based line in Text.
	Locations map[string]int
}

// Inserter places annotations into C text at annotation points.
type Inserter interface {
	// Insert places requests above their resolved points.
	Insert(ctx context.Context, text string, requests []m.AnnotationRequest) (InsertResult, error)
	// Points lists the annotation points of text.
	Points(ctx context.Context, text string) ([]m.AnnotationPoint, error)
}

// InserterOption configures an Inserter.
type InserterOption func(*inserter)

// WithGroupContinuation attaches an unhinted annotation that names no
// function to the point of the previously placed annotation, so contract
// lines such as [[rc::args(...)]] follow their [[rc::function ...]] line.
func WithGroupContinuation(enabled bool) InserterOption {
	return func(i *inserter) {
		i.groupContinuation = enabled
	}
}

type inserter struct {
	adapter.CFileAdapter
	groupContinuation bool
}

// NewInserter creates an Inserter backed by the given C parser.
func NewInserter(cFileAdapter adapter.CFileAdapter, opts ...InserterOption) Inserter {
	i := &inserter{CFileAdapter: cFileAdapter}
	for _, opt := range opts {
		opt(i)
	}

	return i
}

// insertion is one annotation bound to a target line.
type insertion struct {
	line   int
	indent int
	text   string
	order  int
}

func (i *inserter) Insert(ctx context.Context, text string, requests []m.AnnotationRequest) (InsertResult, error) {
	points, err := i.Points(ctx, text)
	if err != nil {
		return InsertResult{}, fmt.Errorf("failed to compute annotation points: %w", err)
	}

	lines, trailingNewline := splitLines(text)
	present := presentLines(lines)

	result := InsertResult{Points: points}

	var pending []insertion

	if len(points) == 0 {
		for n, req := range requests {
			trimmed := strings.TrimSpace(req.Text)
			if trimmed == "" || isPresent(text, present, trimmed) {
				result.Placed = append(result.Placed, req)
				continue
			}

			present[trimmed] = struct{}{}

			pending = append(pending, insertion{line: 1, text: trimmed, order: n})
			result.Placed = append(result.Placed, req)
		}

		return i.finish(result, lines, trailingNewline, pending), nil
	}

	functions := eligibleFunctions(points)
	requested := requestedTexts(requests)
	queued := make(map[insertion]struct{})
	lastTarget := -1
	lastIndent := 0

	for n, req := range requests {
		trimmed := strings.TrimSpace(req.Text)
		if trimmed == "" {
			result.Placed = append(result.Placed, req)
			continue
		}

		var (
			line, indent int
			ok           bool
		)

		if req.Hint != nil {
			line, indent, ok = resolveHint(*req.Hint, functions, lines)
		} else {
			line, indent, ok = matchFunction(trimmed, functions)
			if !ok && i.groupContinuation && lastTarget > 0 {
				line, indent, ok = lastTarget, lastIndent, true
			}
		}

		if !ok {
			result.Unplaced = append(result.Unplaced, req)
			continue
		}

		lastTarget, lastIndent = line, indent
		key := insertion{line: line, text: trimmed}

		if _, dup := queued[key]; dup || presentAt(text, lines, line, trimmed, requested) {
			result.Placed = append(result.Placed, req)
			continue
		}

		queued[key] = struct{}{}

		pending = append(pending, insertion{line: line, indent: indent, text: trimmed, order: n})
		result.Placed = append(result.Placed, req)
	}

	return i.finish(result, lines, trailingNewline, pending), nil
}

// finish applies pending insertions in descending line order so earlier
// line numbers stay valid. Insertions sharing a line keep their input order.
func (i *inserter) finish(result InsertResult, lines []string, trailingNewline bool, pending []insertion) InsertResult {
	sort.SliceStable(pending, func(a, b int) bool {
		if pending[a].line != pending[b].line {
			return pending[a].line > pending[b].line
		}

		return pending[a].order < pending[b].order
	})

	for start := 0; start < len(pending); {
		end := start
		for end < len(pending) && pending[end].line == pending[start].line {
			end++
		}

		block := make([]string, 0, end-start)
		for _, ins := range pending[start:end] {
			block = append(block, strings.Repeat(" ", ins.indent)+ins.text)
		}

		idx := pending[start].line - 1
		if idx > len(lines) {
			idx = len(lines)
		}

		lines = append(lines[:idx], append(block, lines[idx:]...)...)
		start = end
	}

	result.Text = joinLines(lines, trailingNewline)
	result.Locations = locate(lines, result.Placed)

	return result
}

// eligibleFunctions returns function points in pre-order, keeping only the
// first point of each name so one annotation never lands on two definitions.
func eligibleFunctions(points []m.AnnotationPoint) []m.AnnotationPoint {
	seen := make(map[string]struct{})

	var functions []m.AnnotationPoint

	for _, p := range points {
		if p.Context != m.ContextFunction || p.Name == "" {
			continue
		}

		if _, dup := seen[p.Name]; dup {
			continue
		}

		seen[p.Name] = struct{}{}
		functions = append(functions, p)
	}

	return functions
}

func matchFunction(text string, functions []m.AnnotationPoint) (int, int, bool) {
	for _, p := range functions {
		if strings.Contains(text, p.Name) {
			return p.Line, p.Indent, true
		}
	}

	return 0, 0, false
}

// resolveHint maps a hint to a target line: an exact function name first,
// then a literal line number.
func resolveHint(hint m.InsertionHint, functions []m.AnnotationPoint, lines []string) (int, int, bool) {
	location := strings.TrimSpace(hint.Location)

	line, indent, ok := 0, 0, false

	for _, p := range functions {
		if p.Name == location {
			line, indent, ok = p.Line, p.Indent, true
			break
		}
	}

	if !ok {
		n, err := strconv.Atoi(location)
		if err != nil || n < 1 || n > len(lines) {
			return 0, 0, false
		}

		line, indent, ok = n, leadingWidth(lines[n-1]), true
	}

	if hint.Position == m.PositionAfter {
		line++
	}

	return line, indent, ok
}

// PrependAnnotations inserts annotations at the top of text in input order,
// skipping those already present. Text that is not a structured annotation
// is turned into a comment so the file stays parseable.
func PrependAnnotations(text string, annotations []m.Annotation) (string, []m.Annotation) {
	lines, trailingNewline := splitLines(text)
	present := presentLines(lines)

	var (
		block []string
		added []m.Annotation
	)

	for _, a := range annotations {
		normalized := NormalizeFallback(a)
		if normalized == "" || isPresent(text, present, normalized) {
			continue
		}

		present[normalized] = struct{}{}
		block = append(block, normalized)
		added = append(added, normalized)
	}

	if len(block) == 0 {
		return text, nil
	}

	return joinLines(append(block, lines...), trailingNewline), added
}

// NormalizeFallback returns the form an annotation takes when it is placed at
// the top of a file: structured tokens stay as they are, anything else becomes
// a line comment.
func NormalizeFallback(annotation m.Annotation) string {
	trimmed := strings.TrimSpace(annotation)

	switch {
	case trimmed == "":
		return ""
	case strings.HasPrefix(trimmed, "[["),
		strings.HasPrefix(trimmed, "//"),
		strings.HasPrefix(trimmed, "/*"):
		return trimmed
	default:
		return "// " + trimmed
	}
}

// InsertDirective places a single-line directive after the leading directives
// of the same family (for "//@rc::import ..." that is every leading
// "//@rc::" line) and before ordinary code. It is a no-op when the directive
// is already present.
func InsertDirective(text, directive string) string {
	directive = strings.TrimSpace(directive)

	lines, trailingNewline := splitLines(text)
	for _, l := range lines {
		if strings.TrimSpace(l) == directive {
			return text
		}
	}

	family := directiveFamily(directive)
	at := 0

	for idx, l := range lines {
		trimmed := strings.TrimSpace(l)
		if family != "" && strings.HasPrefix(trimmed, family) {
			at = idx + 1
			continue
		}

		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "*") {
			continue
		}

		break
	}

	lines = append(lines[:at], append([]string{directive}, lines[at:]...)...)

	return joinLines(lines, trailingNewline)
}

// directiveFamily is the prefix up to and including the first "::".
func directiveFamily(directive string) string {
	if i := strings.Index(directive, "::"); i >= 0 {
		return directive[:i+2]
	}

	return ""
}

func splitLines(text string) ([]string, bool) {
	if text == "" {
		return nil, false
	}

	trailing := strings.HasSuffix(text, "\n")
	if trailing {
		text = strings.TrimSuffix(text, "\n")
	}

	return strings.Split(text, "\n"), trailing
}

func joinLines(lines []string, trailingNewline bool) string {
	out := strings.Join(lines, "\n")
	if trailingNewline {
		out += "\n"
	}

	return out
}

func presentLines(lines []string) map[string]struct{} {
	present := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		present[strings.TrimSpace(l)] = struct{}{}
	}

	return present
}

// isPresent reports whether an annotation already appears verbatim: as a
// whole line for single-line text, anywhere in the file otherwise.
func isPresent(text string, present map[string]struct{}, annotation string) bool {
	if strings.Contains(annotation, "\n") {
		return strings.Contains(text, annotation)
	}

	_, ok := present[annotation]

	return ok
}

// presentAt reports whether annotation already sits in the annotation block
// around the 1-based target line: the annotation lines directly above it and
// the comment or include run the target may have been moved onto. The same
// text above another function does not count.
func presentAt(text string, lines []string, target int, annotation string, requested map[string]struct{}) bool {
	if strings.Contains(annotation, "\n") {
		return strings.Contains(text, annotation)
	}

	for idx := min(target-1, len(lines)) - 1; idx >= 0; idx-- {
		trimmed := strings.TrimSpace(lines[idx])
		if trimmed == annotation {
			return true
		}

		if !isAnnotationLine(trimmed, requested) {
			break
		}
	}

	for idx := max(target-1, 0); idx < len(lines); idx++ {
		trimmed := strings.TrimSpace(lines[idx])
		if trimmed == annotation {
			return true
		}

		if !isAnnotationLine(trimmed, requested) && !strings.HasPrefix(trimmed, "#include") {
			break
		}
	}

	return false
}

// isAnnotationLine reports whether a trimmed line belongs to an annotation
// block: a structured token, a comment, or the text of a request.
func isAnnotationLine(trimmed string, requested map[string]struct{}) bool {
	if strings.HasPrefix(trimmed, "[[") ||
		strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*") {
		return true
	}

	_, ok := requested[trimmed]

	return ok
}

func requestedTexts(requests []m.AnnotationRequest) map[string]struct{} {
	texts := make(map[string]struct{}, len(requests))
	for _, r := range requests {
		if trimmed := strings.TrimSpace(r.Text); trimmed != "" {
			texts[trimmed] = struct{}{}
		}
	}

	return texts
}

func leadingWidth(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

func locate(lines []string, placed []m.AnnotationRequest) map[string]int {
	if len(placed) == 0 {
		return nil
	}

	index := make(map[string]int, len(lines))
	for n, l := range lines {
		trimmed := strings.TrimSpace(l)
		if _, ok := index[trimmed]; !ok {
			index[trimmed] = n + 1
		}
	}

	locations := make(map[string]int, len(placed))

	for _, req := range placed {
		trimmed := strings.TrimSpace(req.Text)
		if line, ok := index[trimmed]; ok {
			locations[trimmed] = line
		}
	}

	return locations
}
