package domain

import (
	"fmt"
	"regexp"
	"strings"

	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// reasonContextLines is how many lines after a front-end error may be folded
// into its reason.
const reasonContextLines = 3

var (
	bracketPrefix      = regexp.MustCompile(`^\s*\[([^\]]+)\]`)
	invalidOnFunction  = regexp.MustCompile(`(?i)annotations on function\s+"?([A-Za-z_][A-Za-z0-9_]*)"?\s+are invalid`)
	functionNameAfter  = regexp.MustCompile(`(?i)\bfunction\s+["'\x60]?([A-Za-z_][A-Za-z0-9_]*)`)
	frontendMarkers    = []string{"frontend error", "front-end error", "frontend failure"}
	proofFailureMarker = []string{
		"cannot solve side condition",
		"failed to verify",
		"verification failed",
		"unverified",
		"proof failed",
	}
)

// Classify turns raw verifier output into a DiagnosticSet. It is a pure,
// best-effort line scan: the first matching rule wins for each line, and
// lines read as context for a reason are still scanned themselves. Syntax
// errors take priority, so HasProofFailures is false whenever any
// InvalidAnnotation was found.
func Classify(raw string) m.DiagnosticSet {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	var diags []m.Diagnostic

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		lower := strings.ToLower(line)

		switch {
		case containsAny(lower, frontendMarkers):
			end := i + 1
			for end < len(lines) && end <= i+reasonContextLines && !isMarkerLine(lines[end]) {
				end++
			}

			reason := joinNonEmpty(lines[i:end])
			diags = append(diags, m.NewInvalidAnnotation(bracketLocation(line, "unknown"), reason))

		case strings.Contains(lower, "invalid annotation"):
			reason := strings.TrimSpace(line)
			if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" && !isMarkerLine(lines[i+1]) {
				reason = strings.TrimSpace(lines[i+1])
			}

			diags = append(diags, m.NewInvalidAnnotation(bracketLocation(line, "unknown"), reason))

		case invalidOnFunction.MatchString(line):
			name := invalidOnFunction.FindStringSubmatch(line)[1]
			diags = append(diags, m.NewInvalidAnnotation("function "+name, strings.TrimSpace(line)))

		case strings.Contains(lower, "unexpected token"):
			location := "unknown"
			if i > 0 {
				location = bracketLocation(lines[i-1], location)
			}

			location = bracketLocation(line, location)
			diags = append(diags, m.NewInvalidAnnotation(location, strings.TrimSpace(line)))

		case containsAny(lower, proofFailureMarker):
			symbol := ""
			if match := functionNameAfter.FindStringSubmatch(line); match != nil {
				symbol = match[1]
			}

			diags = append(diags, m.NewProofFailure(symbol, strings.TrimSpace(line)))
		}
	}

	set := m.DiagnosticSet{Diagnostics: diags}

	invalid := set.Count(m.InvalidAnnotation)
	failures := set.Count(m.ProofFailure)

	set.HasSyntaxErrors = invalid > 0
	set.HasProofFailures = failures > 0 && !set.HasSyntaxErrors

	switch {
	case set.HasSyntaxErrors:
		set.Summary = fmt.Sprintf("%d invalid annotation(s)", invalid)
	case set.HasProofFailures:
		set.Summary = fmt.Sprintf("%d proof failure(s)", failures)
	default:
		set.Summary = "no recognized diagnostics"
	}

	return set
}

// isMarkerLine reports whether a line triggers a rule of its own, so it is
// never taken as the reason of the line before it.
func isMarkerLine(line string) bool {
	lower := strings.ToLower(line)

	return containsAny(lower, frontendMarkers) ||
		strings.Contains(lower, "invalid annotation") ||
		invalidOnFunction.MatchString(line) ||
		strings.Contains(lower, "unexpected token") ||
		containsAny(lower, proofFailureMarker)
}

func bracketLocation(line, fallback string) string {
	if match := bracketPrefix.FindStringSubmatch(line); match != nil {
		return strings.TrimSpace(match[1])
	}

	return fallback
}

func containsAny(s string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}

	return false
}

func joinNonEmpty(lines []string) string {
	parts := make([]string, 0, len(lines))

	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			parts = append(parts, t)
		}
	}

	return strings.Join(parts, " ")
}
