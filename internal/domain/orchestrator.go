package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"rcpilot.dev/pkg/rcpilot/internal/adapter"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// DefaultLemmaModule is the module name used in the lemma import directive.
const DefaultLemmaModule = "generated_lemmas"

const (
	specExhaustedSuggestion  = "Consider trying with helper lemmas or manually adjusting the specifications."
	lemmaExhaustedSuggestion = "Consider proving the generated helper lemmas manually or adjusting the specifications."
	lemmaCompileFailure      = "Coq compilation failed:\n"
)

// RepairConfig bounds and tunes a repair flow.
type RepairConfig struct {
	SpecMaxIterations  int
	LemmaMaxIterations int
	LemmaEnabled       bool
	// EscalateOnProofFailure moves to lemma synthesis as soon as a spec-phase
	// run fails with proof failures only.
	EscalateOnProofFailure bool
	FlowTimeout            time.Duration
	VerifyTimeout          time.Duration
	GenerateTimeout        time.Duration
	LemmaModule            string
}

// DefaultRepairConfig returns the configuration used when none is given.
func DefaultRepairConfig() RepairConfig {
	return RepairConfig{
		SpecMaxIterations:      3,
		LemmaMaxIterations:     3,
		LemmaEnabled:           true,
		EscalateOnProofFailure: false,
		FlowTimeout:            30 * time.Minute,
		VerifyTimeout:          5 * time.Minute,
		GenerateTimeout:        2 * time.Minute,
		LemmaModule:            DefaultLemmaModule,
	}
}

// FlowEvent reports a state transition of one flow.
type FlowEvent struct {
	RunID       string
	Path        m.Path
	State       m.FlowState
	Iteration   int
	Diagnostics *m.DiagnosticSet
}

// Observer receives flow events. Calls come from concurrent flows.
type Observer interface {
	OnEvent(event FlowEvent)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(FlowEvent)

// OnEvent implements Observer.
func (f ObserverFunc) OnEvent(event FlowEvent) { f(event) }

// OrchestratorDeps are the collaborators of an Orchestrator. LemmaChecker,
// Checkpoints and Observer may be nil.
type OrchestratorDeps struct {
	FS           adapter.SourceFSAdapter
	Parser       adapter.CFileAdapter
	Inserter     Inserter
	Verifier     adapter.VerifierAdapter
	Specs        adapter.SpecGenerator
	Lemmas       adapter.LemmaGenerator
	LemmaStore   adapter.LemmaStore
	LemmaChecker adapter.LemmaChecker
	Checkpoints  adapter.ReportStore
	Observer     Observer
}

// Orchestrator runs the bounded repair state machine for one file.
type Orchestrator interface {
	// Repair drives the flow for path. Configuration errors are returned
	// without a report. Generator, verifier and write failures return the
	// best report so far together with the error.
	Repair(ctx context.Context, cb *Codebase, path m.Path, resume m.RepairState) (m.RepairReport, error)
}

type orchestrator struct {
	OrchestratorDeps
	layout adapter.Layout
	cfg    RepairConfig
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(deps OrchestratorDeps, layout adapter.Layout, cfg RepairConfig) Orchestrator {
	if cfg.LemmaModule == "" {
		cfg.LemmaModule = DefaultLemmaModule
	}

	if deps.Inserter == nil {
		deps.Inserter = NewInserter(deps.Parser)
	}

	return &orchestrator{OrchestratorDeps: deps, layout: layout, cfg: cfg}
}

// flow is the exclusively owned working set of one repair.
type flow struct {
	runID        string
	file         *m.SourceFile
	state        m.RepairState
	diagnostics  m.DiagnosticSet
	current      m.FlowState
	artifactPath m.Path
	lemmaPath    m.Path
	directive    string
	related      string
	log          *slog.Logger
}

func (o *orchestrator) Repair(ctx context.Context, cb *Codebase, path m.Path, resume m.RepairState) (m.RepairReport, error) {
	f, err := o.start(ctx, cb, path, resume)
	if err != nil {
		return m.RepairReport{}, err
	}

	if o.cfg.FlowTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, o.cfg.FlowTimeout)
		defer cancel()
	}

	report, err := o.run(ctx, f)
	if err != nil {
		f.log.Error("repair flow failed", "state", f.current, "iterations", f.state.IterationsUsed, "error", err)
	} else {
		f.log.Info("repair flow finished", "success", report.Success, "iterations", report.IterationsTotal)
	}

	return report, err
}

// start is the Init state.
func (o *orchestrator) start(ctx context.Context, cb *Codebase, path m.Path, resume m.RepairState) (*flow, error) {
	if cb == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotInCodebase, path)
	}

	source, err := cb.Lookup(path)
	if err != nil {
		return nil, err
	}

	artifactPath, err := o.layout.ArtifactPath(source.Path)
	if err != nil {
		return nil, err
	}

	lemmaPath, err := o.layout.LemmaPath(source.Path)
	if err != nil {
		return nil, err
	}

	library, err := o.layout.LemmaLibrary(source.Path, cb.CoqRoot)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	f := &flow{
		runID:        runID,
		file:         source.Clone(),
		current:      m.StateInit,
		artifactPath: artifactPath,
		lemmaPath:    lemmaPath,
		directive:    fmt.Sprintf("//@rc::import %s from %s", o.cfg.LemmaModule, library),
		log:          slog.With("run_id", runID, "path", source.Path),
	}

	hash := adapter.Digest(f.file.OriginalText)

	switch {
	case resume.SourceHash != "" && resume.SourceHash != hash:
		f.log.Warn("source changed since checkpoint, starting over")

		f.state = m.RepairState{}
	default:
		f.state = resume.Clone()
	}

	f.state.SourceHash = hash
	if f.state.Text != "" {
		f.file.Text = f.state.Text
	}

	if o.Parser != nil {
		f.related = relatedContext(ctx, o.Parser, cb, f.file)
	}

	o.emit(f, m.StateInit)

	return f, nil
}

func (o *orchestrator) run(ctx context.Context, f *flow) (m.RepairReport, error) {
	if f.state.Phase != m.PhaseLemma {
		report, done, err := o.specPhase(ctx, f)
		if done || err != nil {
			return report, err
		}

		if !o.cfg.LemmaEnabled {
			return o.exhausted(ctx, f, specExhaustedSuggestion)
		}

		f.state.Phase = m.PhaseLemma
		o.checkpoint(ctx, f)
	}

	report, done, err := o.lemmaPhase(ctx, f)
	if done || err != nil {
		return report, err
	}

	return o.exhausted(ctx, f, lemmaExhaustedSuggestion)
}

// specPhase runs GeneratingSpec, Verifying and RegeneratingSpec until success,
// budget exhaustion or an escalation to lemmas. done is true when the
// returned report is final.
func (o *orchestrator) specPhase(ctx context.Context, f *flow) (m.RepairReport, bool, error) {
	switch {
	case !f.state.Generated():
		if err := o.generateSpec(ctx, f, m.StateGeneratingSpec); err != nil {
			return o.failed(f, err), true, err
		}
	case f.state.LastError != "" && f.state.SpecIterationsUsed() < o.cfg.SpecMaxIterations:
		// Resumed after a classified failure: the stored annotations were
		// already rejected.
		if err := o.generateSpec(ctx, f, m.StateRegeneratingSpec); err != nil {
			return o.failed(f, err), true, err
		}
	default:
		if err := o.applySpec(ctx, f); err != nil {
			return o.failed(f, err), true, err
		}
	}

	for f.state.SpecIterationsUsed() < o.cfg.SpecMaxIterations {
		if err := o.writeSource(ctx, f); err != nil {
			return o.failed(f, err), true, err
		}

		result, err := o.verify(ctx, f, m.StateVerifying)
		if err != nil {
			return o.failed(f, err), true, err
		}

		if result.Success() {
			report, err := o.succeeded(ctx, f)
			return report, true, err
		}

		if o.cfg.LemmaEnabled && o.cfg.EscalateOnProofFailure && f.diagnostics.HasProofFailures {
			f.log.Info("proof failures only, escalating to lemmas", "summary", f.diagnostics.Summary)
			return m.RepairReport{}, false, nil
		}

		if f.state.SpecIterationsUsed() >= o.cfg.SpecMaxIterations {
			break
		}

		if err := o.generateSpec(ctx, f, m.StateRegeneratingSpec); err != nil {
			return o.failed(f, err), true, err
		}
	}

	return m.RepairReport{}, false, nil
}

// lemmaPhase runs EscalatingToLemmas, GeneratingLemma, CheckingLemma,
// VerifyingWithLemma and RegeneratingLemma.
func (o *orchestrator) lemmaPhase(ctx context.Context, f *flow) (m.RepairReport, bool, error) {
	o.emit(f, m.StateEscalatingToLemmas)

	f.file.Text = InsertDirective(f.file.Text, f.directive)

	for f.state.LemmaIterationsUsed < o.cfg.LemmaMaxIterations {
		stage := m.StateRegeneratingLemma
		if len(f.state.HelperLemmas) == 0 {
			stage = m.StateGeneratingLemma
		}

		lemmas, imports := len(f.state.HelperLemmas), len(f.state.LemmaImports)

		if err := o.generateLemmas(ctx, f, stage); err != nil {
			return o.failed(f, err), true, err
		}

		if err := o.LemmaStore.WriteLemmas(ctx, f.lemmaPath, f.state.LemmaImports, f.state.HelperLemmas); err != nil {
			return o.failed(f, err), true, err
		}

		compiled, err := o.checkLemmas(ctx, f, lemmas, imports)
		if err != nil {
			return o.failed(f, err), true, err
		}

		if !compiled {
			continue
		}

		if err := o.writeSource(ctx, f); err != nil {
			return o.failed(f, err), true, err
		}

		result, err := o.verify(ctx, f, m.StateVerifyingWithLemma)
		if err != nil {
			return o.failed(f, err), true, err
		}

		if result.Success() {
			report, err := o.succeeded(ctx, f)
			return report, true, err
		}
	}

	return m.RepairReport{}, false, nil
}

// checkLemmas compiles the lemma file. When it does not compile, the lemmas
// and imports added since the given counts are dropped again, the file is
// rewritten without them and the compiler output becomes the error the next
// lemma generation sees. The attempt counts against the lemma budget.
func (o *orchestrator) checkLemmas(ctx context.Context, f *flow, lemmas, imports int) (bool, error) {
	if o.LemmaChecker == nil {
		return true, nil
	}

	o.emit(f, m.StateCheckingLemma)

	checkCtx, cancel := o.withTimeout(ctx, o.cfg.VerifyTimeout)
	defer cancel()

	dir, file := filepath.Split(string(f.lemmaPath))

	result, err := o.LemmaChecker.Check(checkCtx, dir, file)
	if err != nil {
		return false, fmt.Errorf("compilation of %s did not complete: %w", f.lemmaPath, err)
	}

	if result.Success() {
		return true, nil
	}

	rejected := f.state.HelperLemmas[lemmas:]
	names := make([]string, 0, len(rejected))

	for _, l := range rejected {
		names = append(names, l.Name)
	}

	f.state.HelperLemmas = f.state.HelperLemmas[:lemmas]
	f.state.LemmaImports = f.state.LemmaImports[:imports]
	f.state.IterationsUsed++
	f.state.LemmaIterationsUsed++
	f.state.LastError = lemmaCompileFailure + result.Output()
	f.diagnostics = m.DiagnosticSet{
		Diagnostics:      []m.Diagnostic{m.NewProofFailure(adapter.LemmaFileName, strings.TrimSpace(result.Output()))},
		HasProofFailures: true,
		Summary:          "helper lemmas do not compile",
	}

	f.log.Info("helper lemmas do not compile", "rejected", names, "exit_code", result.ExitCode)

	if err := o.LemmaStore.WriteLemmas(ctx, f.lemmaPath, f.state.LemmaImports, f.state.HelperLemmas); err != nil {
		return false, err
	}

	o.checkpoint(ctx, f)
	o.emitDiagnostics(f, m.StateCheckingLemma)

	return false, nil
}

func (o *orchestrator) generateSpec(ctx context.Context, f *flow, state m.FlowState) error {
	o.emit(f, state)

	genCtx, cancel := o.withTimeout(ctx, o.cfg.GenerateTimeout)
	defer cancel()

	result, err := o.Specs.GenerateSpec(genCtx, adapter.SpecRequest{
		Path:           f.file.Path,
		SourceText:     f.file.OriginalText,
		RelatedContext: f.related,
		PriorError:     f.state.LastError,
	})
	if err != nil {
		return &GeneratorError{Stage: StageSpec, Err: err}
	}

	annotations := result.Annotations
	if annotations == nil {
		annotations = []m.AnnotationRequest{}
	}

	f.state.CurrentAnnotations = annotations
	f.log.Debug("spec generated", "annotations", len(annotations), "explanation", result.Explanation)

	return o.applySpec(ctx, f)
}

// applySpec rebuilds the text from the original and the current annotations,
// so a regenerated set replaces the previous one instead of stacking on it.
func (o *orchestrator) applySpec(ctx context.Context, f *flow) error {
	inserted, err := o.Inserter.Insert(ctx, f.file.OriginalText, f.state.CurrentAnnotations)
	if err != nil {
		return err
	}

	text := inserted.Text
	locations := inserted.Locations

	if len(inserted.Unplaced) > 0 {
		var added []m.Annotation

		text, added = PrependAnnotations(text, m.AnnotationTexts(inserted.Unplaced))
		f.log.Warn("annotations placed at top of file", "count", len(inserted.Unplaced))

		if locations == nil {
			locations = make(map[string]int)
		}

		for k := range locations {
			locations[k] += len(added)
		}

		for n, a := range added {
			locations[a] = n + 1
		}
	}

	f.file.Text = text
	f.file.AnnotationLocations = locations

	return nil
}

func (o *orchestrator) generateLemmas(ctx context.Context, f *flow, state m.FlowState) error {
	o.emit(f, state)

	genCtx, cancel := o.withTimeout(ctx, o.cfg.GenerateTimeout)
	defer cancel()

	result, err := o.Lemmas.GenerateLemma(genCtx, adapter.LemmaRequest{
		Path:           f.file.Path,
		SourceText:     f.file.Text,
		LastError:      f.state.LastError,
		ExistingLemmas: append([]m.HelperLemma(nil), f.state.HelperLemmas...),
	})
	if err != nil {
		return &GeneratorError{Stage: StageLemma, Err: err}
	}

	added := 0

	for _, lemma := range result.Lemmas {
		if f.state.HasLemma(lemma.Name) {
			continue
		}

		f.state.HelperLemmas = append(f.state.HelperLemmas, lemma)
		added++
	}

	for _, imp := range result.Imports {
		if !contains(f.state.LemmaImports, imp) {
			f.state.LemmaImports = append(f.state.LemmaImports, imp)
		}
	}

	f.log.Debug("lemmas generated", "added", added, "total", len(f.state.HelperLemmas))

	return nil
}

// verify runs the verifier once, counts the iteration and classifies a
// failure.
func (o *orchestrator) verify(ctx context.Context, f *flow, state m.FlowState) (adapter.VerifyResult, error) {
	o.emit(f, state)

	verifyCtx, cancel := o.withTimeout(ctx, o.cfg.VerifyTimeout)
	defer cancel()

	rel := string(f.file.Path)

	result, err := o.Verifier.Verify(verifyCtx, string(o.layout.ArtifactRoot()), rel)
	if err != nil {
		return result, fmt.Errorf("verification of %s did not complete: %w", rel, err)
	}

	f.state.IterationsUsed++
	if f.state.Phase == m.PhaseLemma {
		f.state.LemmaIterationsUsed++
	}

	if result.Success() {
		f.state.LastError = ""
		f.diagnostics = m.DiagnosticSet{Summary: "verified"}

		return result, nil
	}

	f.state.LastError = result.Output()
	f.diagnostics = Classify(f.state.LastError)

	f.log.Info("verification failed",
		"iteration", f.state.IterationsUsed,
		"exit_code", result.ExitCode,
		"summary", f.diagnostics.Summary)

	o.checkpoint(ctx, f)
	o.emitDiagnostics(f, state)

	return result, nil
}

func (o *orchestrator) writeSource(ctx context.Context, f *flow) error {
	if err := o.FS.WriteFile(ctx, f.artifactPath, []byte(f.file.Text), 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", f.artifactPath, err)
	}

	return nil
}

func (o *orchestrator) checkpoint(ctx context.Context, f *flow) {
	if o.Checkpoints == nil {
		return
	}

	state := f.state.Clone()
	state.Text = f.file.Text

	if err := o.Checkpoints.Checkpoint(ctx, f.file.Path, state); err != nil {
		f.log.Warn("failed to store checkpoint", "error", err)
	}
}

func (o *orchestrator) succeeded(ctx context.Context, f *flow) (m.RepairReport, error) {
	f.current = m.StateSuccess
	o.emit(f, m.StateSuccess)
	o.checkpoint(ctx, f)

	return o.report(f, true), nil
}

func (o *orchestrator) exhausted(ctx context.Context, f *flow, suggestion string) (m.RepairReport, error) {
	f.current = m.StateExhausted
	o.emit(f, m.StateExhausted)
	o.checkpoint(ctx, f)

	summary := f.diagnostics.Summary
	if summary == "" {
		summary = "iteration budget exhausted"
	}

	report := o.report(f, false)
	message := fmt.Sprintf("verification failed after %d iteration(s): %s", f.state.IterationsUsed, summary)
	report.ErrorMessage = &message
	report.Suggestions = &suggestion

	return report, nil
}

// failed builds the report for a flow interrupted by err. The state reached
// so far stays resumable.
func (o *orchestrator) failed(f *flow, err error) m.RepairReport {
	report := o.report(f, false)
	message := err.Error()
	report.ErrorMessage = &message

	var genErr *GeneratorError
	if errors.As(err, &genErr) {
		suggestion := "Retry later; the " + genErr.Stage + " generator could not be reached or returned malformed output."
		report.Suggestions = &suggestion
	}

	return report
}

func (o *orchestrator) report(f *flow, success bool) m.RepairReport {
	state := f.state.Clone()
	state.Text = f.file.Text

	return m.RepairReport{
		Path:            f.file.Path,
		Success:         success,
		IterationsTotal: f.state.IterationsUsed,
		FinalText:       f.file.Text,
		HelperLemmas:    append([]m.HelperLemma(nil), f.state.HelperLemmas...),
		FinalState:      f.current,
		Diagnostics:     f.diagnostics,
		ResumableState:  state,
	}
}

func (o *orchestrator) emit(f *flow, state m.FlowState) {
	f.current = state
	f.log.Debug("state transition", "state", state, "iteration", f.state.IterationsUsed)

	if o.Observer != nil {
		o.Observer.OnEvent(FlowEvent{RunID: f.runID, Path: f.file.Path, State: state, Iteration: f.state.IterationsUsed})
	}
}

func (o *orchestrator) emitDiagnostics(f *flow, state m.FlowState) {
	if o.Observer == nil {
		return
	}

	diagnostics := f.diagnostics
	o.Observer.OnEvent(FlowEvent{
		RunID:       f.runID,
		Path:        f.file.Path,
		State:       state,
		Iteration:   f.state.IterationsUsed,
		Diagnostics: &diagnostics,
	})
}

func (o *orchestrator) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, d)
}

func contains(list []string, s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range list {
		if strings.TrimSpace(v) == s {
			return true
		}
	}

	return false
}
