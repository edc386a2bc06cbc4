package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rcpilot.dev/pkg/rcpilot/internal/domain"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output  io.Writer
	program *tea.Program
	done    chan struct{}
	once    sync.Once
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output, done: make(chan struct{})}
}

// Start launches the Bubble Tea program in the background.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := newStartConfig(options)
	t.program = tea.NewProgram(newRepairModel(cfg.title, cfg.files), tea.WithOutput(t.output), tea.WithContext(ctx))

	go func() {
		defer close(t.done)

		_, _ = t.program.Run()
	}()

	return nil
}

// Close stops the program if it is still running.
func (t *TUI) Close(_ context.Context) {
	t.once.Do(func() {
		if t.program != nil {
			t.program.Quit()
		}
	})
}

// Wait blocks until the program exits.
func (t *TUI) Wait(ctx context.Context) {
	if t.program == nil {
		return
	}

	select {
	case <-t.done:
	case <-ctx.Done():
	}
}

// DisplayRunInfo updates the heading with run parameters.
func (t *TUI) DisplayRunInfo(_ context.Context, project string, files int, parallel int) {
	t.send(runInfoMsg{project: project, files: files, parallel: parallel})
}

// OnEvent forwards a flow event to the program.
func (t *TUI) OnEvent(event domain.FlowEvent) {
	t.send(eventMsg(event))
}

// DisplayOutcomes shows the final table and ends the program.
func (t *TUI) DisplayOutcomes(_ context.Context, outcomes []domain.FileOutcome) {
	t.send(outcomesMsg(outcomes))
}

func (t *TUI) send(msg tea.Msg) {
	if t.program == nil {
		return
	}

	select {
	case <-t.done:
	default:
		t.program.Send(msg)
	}
}

type (
	eventMsg    domain.FlowEvent
	outcomesMsg []domain.FileOutcome
	runInfoMsg  struct {
		project  string
		files    int
		parallel int
	}
)

type fileRow struct {
	path      m.Path
	state     m.FlowState
	started   bool
	iteration int
	summary   string
}

// repairModel represents the Bubble Tea model for live repair progress.
type repairModel struct {
	title    string
	info     string
	spinner  spinner.Model
	rows     []fileRow
	index    map[m.Path]int
	outcomes []domain.FileOutcome
	width    int
	done     bool
}

func newRepairModel(title string, files []m.Path) *repairModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	rm := &repairModel{
		title:   title,
		spinner: sp,
		index:   make(map[m.Path]int, len(files)),
		width:   80,
	}

	for _, f := range files {
		rm.addRow(f)
	}

	return rm
}

func (rm *repairModel) addRow(path m.Path) int {
	rm.rows = append(rm.rows, fileRow{path: path})
	rm.index[path] = len(rm.rows) - 1

	return len(rm.rows) - 1
}

func (rm *repairModel) Init() tea.Cmd {
	return rm.spinner.Tick
}

func (rm *repairModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runInfoMsg:
		rm.info = fmt.Sprintf("%s: %d file(s), parallel %d", msg.project, msg.files, msg.parallel)
		return rm, nil
	case eventMsg:
		rm.apply(domain.FlowEvent(msg))
		return rm, nil
	case outcomesMsg:
		rm.outcomes = msg
		rm.done = true

		return rm, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return rm, tea.Quit
		}

		return rm, nil
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			rm.width = msg.Width
		}

		return rm, nil
	case spinner.TickMsg:
		if rm.done {
			return rm, nil
		}

		var cmd tea.Cmd
		rm.spinner, cmd = rm.spinner.Update(msg)

		return rm, cmd
	}

	return rm, nil
}

func (rm *repairModel) apply(event domain.FlowEvent) {
	idx, ok := rm.index[event.Path]
	if !ok {
		idx = rm.addRow(event.Path)
	}

	row := &rm.rows[idx]
	row.state = event.State
	row.started = true
	row.iteration = event.Iteration

	if event.Diagnostics != nil {
		row.summary = event.Diagnostics.Summary
	}
}

func (rm *repairModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))

	header := rm.title
	if rm.info != "" {
		header = fmt.Sprintf("%s (%s)", header, rm.info)
	}

	if rm.done {
		header = "done: " + header
	} else {
		header = fmt.Sprintf("%s %s", rm.spinner.View(), header)
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	if rm.done {
		b.WriteString(RenderOutcomes(rm.outcomes))
		return b.String()
	}

	nameWidth := rm.width - 40
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, row := range rm.rows {
		label := "queued"
		if row.started {
			label = row.state.String()
		}

		status := styleState(row).Render(fmt.Sprintf("%20s", label))
		fmt.Fprintf(&b, "  %s %-3d %s", status, row.iteration, truncate(string(row.path), nameWidth))

		if row.summary != "" {
			fmt.Fprintf(&b, "  %s", lipgloss.NewStyle().Faint(true).Render(row.summary))
		}

		b.WriteString("\n")
	}

	return b.String()
}

func styleState(row fileRow) lipgloss.Style {
	switch {
	case !row.started:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	case row.state == m.StateSuccess:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case row.state == m.StateExhausted:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	}
}

func truncate(value string, width int) string {
	if lipgloss.Width(value) <= width {
		return value
	}

	runes := []rune(value)
	if width <= 3 || len(runes) <= 3 {
		return string(runes[:min(width, len(runes))])
	}

	return "..." + string(runes[len(runes)-(width-3):])
}
