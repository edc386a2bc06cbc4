package controller

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"

	"rcpilot.dev/pkg/rcpilot/internal/domain"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

const diffContextLines = 3

var (
	successLabel = color.New(color.FgGreen, color.Bold).SprintFunc()
	failureLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	errorLabel   = color.New(color.FgYellow, color.Bold).SprintFunc()
)

// RenderOutcomes renders the settled flows of a run as a table.
func RenderOutcomes(outcomes []domain.FileOutcome) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Result", "Iterations", "Lemmas", "Final State", "Summary"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	verified := 0

	for _, o := range outcomes {
		status := outcomeStatus(o)
		if o.Err == nil && o.Report.Success {
			verified++
		}

		summary := o.Report.Diagnostics.Summary
		if o.Err != nil {
			summary = firstLine(o.Err.Error())
		}

		table.Append([]string{
			string(o.Path),
			status,
			fmt.Sprintf("%d", o.Report.IterationsTotal),
			fmt.Sprintf("%d", len(o.Report.HelperLemmas)),
			o.Report.FinalState.String(),
			summary,
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(outcomes)),
		fmt.Sprintf("%d verified", verified),
		"", "", "", "",
	})

	table.Render()

	return tableBuffer.String()
}

// RenderReports renders stored reports as a table.
func RenderReports(reports []m.RepairReport) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Result", "Iterations", "Lemmas", "Final State", "Suggestion"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, r := range reports {
		status := successLabel("verified")
		if !r.Success {
			status = failureLabel("failed")
		}

		suggestion := ""
		if r.Suggestions != nil {
			suggestion = *r.Suggestions
		}

		table.Append([]string{
			string(r.Path),
			status,
			fmt.Sprintf("%d", r.IterationsTotal),
			fmt.Sprintf("%d", len(r.HelperLemmas)),
			r.FinalState.String(),
			suggestion,
		})
	}

	table.Render()

	return tableBuffer.String()
}

// RenderDiff produces a unified diff of a file's original and final text.
// It returns an empty string when nothing changed.
func RenderDiff(path m.Path, original, final string) (string, error) {
	if original == final {
		return "", nil
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(final),
		FromFile: "a/" + string(path),
		ToFile:   "b/" + string(path),
		Context:  diffContextLines,
	}

	return difflib.GetUnifiedDiffString(diff)
}

// RenderPoints renders annotation points as a table.
func RenderPoints(points []m.AnnotationPoint) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Line", "Context", "Name", "Indent"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, p := range points {
		table.Append([]string{fmt.Sprintf("%d", p.Line), string(p.Context), p.Name, fmt.Sprintf("%d", p.Indent)})
	}

	table.Render()

	return tableBuffer.String()
}

// InventoryRow counts the annotation points of one file by context.
type InventoryRow struct {
	Path      m.Path
	Functions int
	Loops     int
	Blocks    int
}

// NewInventoryRow tallies points for path.
func NewInventoryRow(path m.Path, points []m.AnnotationPoint) InventoryRow {
	row := InventoryRow{Path: path}

	for _, p := range points {
		switch p.Context {
		case m.ContextFunction:
			row.Functions++
		case m.ContextLoop:
			row.Loops++
		case m.ContextBlock:
			row.Blocks++
		}
	}

	return row
}

// RenderInventory renders per-file point counts with a totals footer.
func RenderInventory(rows []InventoryRow) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Path", "Functions", "Loops", "Blocks"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	var total InventoryRow

	for _, r := range rows {
		total.Functions += r.Functions
		total.Loops += r.Loops
		total.Blocks += r.Blocks

		table.Append([]string{
			string(r.Path),
			fmt.Sprintf("%d", r.Functions),
			fmt.Sprintf("%d", r.Loops),
			fmt.Sprintf("%d", r.Blocks),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", len(rows)),
		fmt.Sprintf("%d", total.Functions),
		fmt.Sprintf("%d", total.Loops),
		fmt.Sprintf("%d", total.Blocks),
	})

	table.Render()

	return tableBuffer.String()
}

// RenderDiagnostics renders a classified diagnostic set.
func RenderDiagnostics(set m.DiagnosticSet) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Kind", "Where", "Detail"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, d := range set.Diagnostics {
		where, detail := d.Location, d.Reason
		if d.Kind == m.ProofFailure {
			where, detail = d.Symbol, d.Message
		}

		table.Append([]string{d.Kind.String(), where, detail})
	}

	table.SetFooter([]string{"", "", set.Summary})
	table.Render()

	return tableBuffer.String()
}

func outcomeStatus(o domain.FileOutcome) string {
	switch {
	case o.Err != nil:
		return errorLabel("error")
	case o.Report.Success:
		return successLabel("verified")
	default:
		return failureLabel("failed")
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}

	return s
}
