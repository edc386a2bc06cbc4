package domain_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rcpilot.dev/pkg/rcpilot/internal/adapter"
	adaptermocks "rcpilot.dev/pkg/rcpilot/internal/adapter/mocks"
	"rcpilot.dev/pkg/rcpilot/internal/domain"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

const addSource = "int add(int a, int b) {\n    return a + b;\n}\n"

const (
	proofFailureOutput      = "Cannot solve side condition in function \"add\"\nfailed to verify function add\n"
	invalidAnnotationOutput = "invalid annotation\n  rc::args expects 2 types\n"
)

var (
	verified = adapter.VerifyResult{ExitCode: 0, Stdout: "add.c: verified\n"}
	unproved = adapter.VerifyResult{ExitCode: 1, Stdout: proofFailureOutput}
	invalid  = adapter.VerifyResult{ExitCode: 1, Stderr: invalidAnnotationOutput}
)

// flowHarness wires an orchestrator to mocked generators and verifier and a
// real filesystem below a temporary directory.
type flowHarness struct {
	layout   adapter.Layout
	codebase *domain.Codebase
	fs       *adapter.LocalSourceFSAdapter
	store    *adapter.LocalReportStore
	verifier *adaptermocks.MockVerifierAdapter
	specs    *adaptermocks.MockSpecGenerator
	lemmas   *adaptermocks.MockLemmaGenerator
	checker  *adaptermocks.MockLemmaChecker

	mu     sync.Mutex
	events []domain.FlowEvent
}

func newFlowHarness(t *testing.T) *flowHarness {
	t.Helper()

	root := t.TempDir()
	layout := adapter.Layout{
		SourcesDir:   m.Path(filepath.Join(root, "sources")),
		ArtifactsDir: m.Path(filepath.Join(root, "artifacts")),
		StateDir:     m.Path(filepath.Join(root, "state")),
		Project:      "demo",
	}
	fs := adapter.NewLocalSourceFSAdapter()

	return &flowHarness{
		layout: layout,
		codebase: &domain.Codebase{
			Project: "demo",
			CoqRoot: "demo",
			Files:   map[m.Path]*m.SourceFile{"add.c": m.NewSourceFile("add.c", addSource)},
		},
		fs:       fs,
		store:    adapter.NewLocalReportStore(layout.StateRoot(), fs),
		verifier: adaptermocks.NewMockVerifierAdapter(t),
		specs:    adaptermocks.NewMockSpecGenerator(t),
		lemmas:   adaptermocks.NewMockLemmaGenerator(t),
	}
}

func (h *flowHarness) orchestrator(t *testing.T, cfg domain.RepairConfig) domain.Orchestrator {
	t.Helper()

	parser, err := adapter.NewLocalCFileAdapter(16)
	require.NoError(t, err)

	deps := domain.OrchestratorDeps{
		FS:          h.fs,
		Parser:      parser,
		Verifier:    h.verifier,
		Specs:       h.specs,
		Lemmas:      h.lemmas,
		LemmaStore:  adapter.NewLocalLemmaStore(h.fs),
		Checkpoints: h.store,
		Observer: domain.ObserverFunc(func(e domain.FlowEvent) {
			h.mu.Lock()
			defer h.mu.Unlock()

			h.events = append(h.events, e)
		}),
	}

	if h.checker != nil {
		deps.LemmaChecker = h.checker
	}

	return domain.NewOrchestrator(deps, h.layout, cfg)
}

func (h *flowHarness) expectVerify(results ...adapter.VerifyResult) {
	for _, r := range results {
		h.verifier.EXPECT().Verify(mock.Anything, string(h.layout.ArtifactRoot()), "add.c").Return(r, nil).Once()
	}
}

// states lists the observed transitions without the diagnostic re-emits.
func (h *flowHarness) states() []m.FlowState {
	h.mu.Lock()
	defer h.mu.Unlock()

	var states []m.FlowState

	for _, e := range h.events {
		if e.Diagnostics == nil {
			states = append(states, e.State)
		}
	}

	return states
}

func (h *flowHarness) artifact(t *testing.T) string {
	t.Helper()

	path, err := h.layout.ArtifactPath("add.c")
	require.NoError(t, err)

	content, err := os.ReadFile(string(path))
	require.NoError(t, err)

	return string(content)
}

func specOf(annotations ...string) adapter.SpecResult {
	return adapter.SpecResult{Annotations: m.RequestsFromAnnotations(annotations)}
}

func withPriorError(contains string) interface{} {
	return mock.MatchedBy(func(req adapter.SpecRequest) bool {
		if contains == "" {
			return req.PriorError == ""
		}

		return strings.Contains(req.PriorError, contains)
	})
}

func testConfig() domain.RepairConfig {
	cfg := domain.DefaultRepairConfig()
	cfg.SpecMaxIterations = 3
	cfg.LemmaMaxIterations = 2
	cfg.LemmaEnabled = false
	cfg.EscalateOnProofFailure = false

	return cfg
}

func TestOrchestrator_SucceedsOnSecondIteration(t *testing.T) {
	h := newFlowHarness(t)

	h.specs.EXPECT().GenerateSpec(mock.Anything, withPriorError("")).Return(specOf("[[spec::add]]"), nil).Once()
	h.specs.EXPECT().GenerateSpec(mock.Anything, withPriorError("failed to verify function add")).
		Return(specOf("[[spec::add_v2]]"), nil).Once()
	h.expectVerify(unproved, verified)

	report, err := h.orchestrator(t, testConfig()).Repair(context.Background(), h.codebase, "add.c", m.RepairState{})
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 2, report.IterationsTotal)
	assert.Nil(t, report.ErrorMessage)
	assert.Equal(t, m.StateSuccess, report.FinalState)
	assert.Equal(t, "[[spec::add_v2]]\n"+addSource, report.FinalText)
	assert.NotContains(t, report.FinalText, "[[spec::add]]", "a regenerated set replaces the previous one")
	assert.Equal(t, report.FinalText, h.artifact(t))
	assert.Equal(t, 2, report.ResumableState.IterationsUsed)

	assert.Equal(t, []m.FlowState{
		m.StateInit,
		m.StateGeneratingSpec,
		m.StateVerifying,
		m.StateRegeneratingSpec,
		m.StateVerifying,
		m.StateSuccess,
	}, h.states())
}

func TestOrchestrator_DefaultsSpendSpecBudgetBeforeLemmas(t *testing.T) {
	h := newFlowHarness(t)
	cfg := domain.DefaultRepairConfig()
	require.True(t, cfg.LemmaEnabled)
	require.False(t, cfg.EscalateOnProofFailure)

	h.specs.EXPECT().GenerateSpec(mock.Anything, withPriorError("")).Return(specOf("[[spec::add]]"), nil).Once()
	h.specs.EXPECT().GenerateSpec(mock.Anything, withPriorError("failed to verify function add")).
		Return(specOf("[[spec::add_v2]]"), nil).Once()
	h.expectVerify(unproved, verified)

	report, err := h.orchestrator(t, cfg).Repair(context.Background(), h.codebase, "add.c", m.RepairState{})
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Zero(t, report.ResumableState.LemmaIterationsUsed)
	assert.Empty(t, report.HelperLemmas)
	assert.NotContains(t, h.states(), m.StateEscalatingToLemmas)
}

func TestOrchestrator_SpecBudgetExhaustedWithoutLemmas(t *testing.T) {
	h := newFlowHarness(t)
	cfg := testConfig()
	cfg.SpecMaxIterations = 2

	h.specs.EXPECT().GenerateSpec(mock.Anything, mock.Anything).Return(specOf("[[spec::add]]"), nil).Times(2)
	h.expectVerify(unproved, unproved)

	report, err := h.orchestrator(t, cfg).Repair(context.Background(), h.codebase, "add.c", m.RepairState{})
	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, 2, report.IterationsTotal)
	assert.Equal(t, m.StateExhausted, report.FinalState)
	require.NotNil(t, report.Suggestions)
	assert.Contains(t, *report.Suggestions, "helper lemmas")
	require.NotNil(t, report.ErrorMessage)
	assert.Contains(t, *report.ErrorMessage, "proof failure")
	assert.True(t, report.Diagnostics.HasProofFailures)

	assert.Equal(t, "[[spec::add]]\n"+addSource, report.FinalText, "partial text is preserved")
	assert.Equal(t, 2, report.ResumableState.IterationsUsed)
	assert.Equal(t, proofFailureOutput, report.ResumableState.LastError)

	checkpoint, err := h.store.LatestCheckpoint(context.Background(), "add.c")
	require.NoError(t, err)
	assert.Equal(t, 2, checkpoint.IterationsUsed)
	assert.Equal(t, report.FinalText, checkpoint.Text)
}

func TestOrchestrator_LemmaPhaseAccumulates(t *testing.T) {
	h := newFlowHarness(t)
	cfg := testConfig()
	cfg.SpecMaxIterations = 1
	cfg.LemmaEnabled = true

	first := m.HelperLemma{Name: "add_no_overflow", Statement: "forall a b, a + b = b + a", ProofBody: "intros. lia."}
	second := m.HelperLemma{Name: "add_bounds", Statement: "forall a, 0 <= a -> 0 <= a + 0"}
	replaced := first
	replaced.Statement = "forall a b, False"

	h.specs.EXPECT().GenerateSpec(mock.Anything, mock.Anything).Return(specOf("[[spec::add]]"), nil).Once()
	h.lemmas.EXPECT().GenerateLemma(mock.Anything, mock.MatchedBy(func(req adapter.LemmaRequest) bool {
		return len(req.ExistingLemmas) == 0 && strings.Contains(req.LastError, "side condition")
	})).Return(adapter.LemmaResult{
		Lemmas:  []m.HelperLemma{first},
		Imports: []string{"refinedc.typing.typing"},
	}, nil).Once()
	h.lemmas.EXPECT().GenerateLemma(mock.Anything, mock.MatchedBy(func(req adapter.LemmaRequest) bool {
		return len(req.ExistingLemmas) == 1
	})).Return(adapter.LemmaResult{
		Lemmas:  []m.HelperLemma{replaced, second},
		Imports: []string{"refinedc.typing.typing"},
	}, nil).Once()
	h.expectVerify(unproved, unproved, verified)

	report, err := h.orchestrator(t, cfg).Repair(context.Background(), h.codebase, "add.c", m.RepairState{})
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 3, report.IterationsTotal)
	assert.Equal(t, 2, report.ResumableState.LemmaIterationsUsed)
	assert.Equal(t, m.PhaseLemma, report.ResumableState.Phase)

	require.Len(t, report.HelperLemmas, 2)
	assert.Equal(t, first, report.HelperLemmas[0], "accepted lemmas are never replaced")
	assert.Equal(t, second, report.HelperLemmas[1])

	directive := "//@rc::import generated_lemmas from demo.proofs.add_c"
	assert.True(t, strings.HasPrefix(report.FinalText, directive+"\n"), report.FinalText)
	assert.Equal(t, 1, strings.Count(report.FinalText, directive))

	lemmaPath, err := h.layout.LemmaPath("add.c")
	require.NoError(t, err)

	lemmaFile, err := os.ReadFile(string(lemmaPath))
	require.NoError(t, err)
	assert.Contains(t, string(lemmaFile), "Require Import refinedc.typing.typing.\n")
	assert.Equal(t, 1, strings.Count(string(lemmaFile), "Require Import"))
	assert.Contains(t, string(lemmaFile), "Lemma add_no_overflow:")
	assert.Contains(t, string(lemmaFile), "Lemma add_bounds:")
	assert.Contains(t, string(lemmaFile), "Admitted.")
	assert.Contains(t, string(lemmaFile), "Qed.")

	assert.Equal(t, []m.FlowState{
		m.StateInit,
		m.StateGeneratingSpec,
		m.StateVerifying,
		m.StateEscalatingToLemmas,
		m.StateGeneratingLemma,
		m.StateVerifyingWithLemma,
		m.StateRegeneratingLemma,
		m.StateVerifyingWithLemma,
		m.StateSuccess,
	}, h.states())
}

func TestOrchestrator_UncompilableLemmasAreDropped(t *testing.T) {
	h := newFlowHarness(t)
	h.checker = adaptermocks.NewMockLemmaChecker(t)

	cfg := testConfig()
	cfg.SpecMaxIterations = 1
	cfg.LemmaMaxIterations = 3
	cfg.LemmaEnabled = true

	bogus := m.HelperLemma{Name: "add_bogus", Statement: "False", ProofBody: "auto."}
	good := m.HelperLemma{Name: "add_comm", Statement: "forall a b, a + b = b + a", ProofBody: "lia."}
	compileError := adapter.VerifyResult{ExitCode: 1, Stderr: "Error: Attempt to save an incomplete proof\n"}

	h.specs.EXPECT().GenerateSpec(mock.Anything, mock.Anything).Return(specOf("[[spec::add]]"), nil).Once()
	h.lemmas.EXPECT().GenerateLemma(mock.Anything, mock.MatchedBy(func(req adapter.LemmaRequest) bool {
		return strings.Contains(req.LastError, "side condition")
	})).Return(adapter.LemmaResult{Lemmas: []m.HelperLemma{bogus}, Imports: []string{"Bogus.Module"}}, nil).Once()
	h.lemmas.EXPECT().GenerateLemma(mock.Anything, mock.MatchedBy(func(req adapter.LemmaRequest) bool {
		return len(req.ExistingLemmas) == 0 && strings.HasPrefix(req.LastError, "Coq compilation failed:") &&
			strings.Contains(req.LastError, "incomplete proof")
	})).Return(adapter.LemmaResult{Lemmas: []m.HelperLemma{good}}, nil).Once()
	h.checker.EXPECT().Check(mock.Anything, mock.Anything, adapter.LemmaFileName).Return(compileError, nil).Once()
	h.checker.EXPECT().Check(mock.Anything, mock.Anything, adapter.LemmaFileName).Return(adapter.VerifyResult{}, nil).Once()
	h.expectVerify(unproved, verified)

	report, err := h.orchestrator(t, cfg).Repair(context.Background(), h.codebase, "add.c", m.RepairState{})
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 3, report.IterationsTotal)
	assert.Equal(t, 2, report.ResumableState.LemmaIterationsUsed)
	assert.Equal(t, []m.HelperLemma{good}, report.HelperLemmas)
	assert.Empty(t, report.ResumableState.LemmaImports)

	lemmaPath, err := h.layout.LemmaPath("add.c")
	require.NoError(t, err)

	lemmaFile, err := os.ReadFile(string(lemmaPath))
	require.NoError(t, err)
	assert.NotContains(t, string(lemmaFile), "add_bogus")
	assert.NotContains(t, string(lemmaFile), "Bogus.Module")
	assert.Contains(t, string(lemmaFile), "Lemma add_comm: forall a b, a + b = b + a.")

	assert.Equal(t, []m.FlowState{
		m.StateInit,
		m.StateGeneratingSpec,
		m.StateVerifying,
		m.StateEscalatingToLemmas,
		m.StateGeneratingLemma,
		m.StateCheckingLemma,
		m.StateGeneratingLemma,
		m.StateCheckingLemma,
		m.StateVerifyingWithLemma,
		m.StateSuccess,
	}, h.states())
}

func TestOrchestrator_LemmaCompileFailuresSpendBudget(t *testing.T) {
	h := newFlowHarness(t)
	h.checker = adaptermocks.NewMockLemmaChecker(t)

	cfg := testConfig()
	cfg.SpecMaxIterations = 1
	cfg.LemmaMaxIterations = 2
	cfg.LemmaEnabled = true

	h.specs.EXPECT().GenerateSpec(mock.Anything, mock.Anything).Return(specOf("[[spec::add]]"), nil).Once()
	h.lemmas.EXPECT().GenerateLemma(mock.Anything, mock.Anything).
		Return(adapter.LemmaResult{Lemmas: []m.HelperLemma{{Name: "l", Statement: "False"}}}, nil).Times(2)
	h.checker.EXPECT().Check(mock.Anything, mock.Anything, adapter.LemmaFileName).
		Return(adapter.VerifyResult{ExitCode: 1, Stderr: "Error: syntax error\n"}, nil).Times(2)
	h.expectVerify(unproved)

	report, err := h.orchestrator(t, cfg).Repair(context.Background(), h.codebase, "add.c", m.RepairState{})
	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, m.StateExhausted, report.FinalState)
	assert.Equal(t, 3, report.IterationsTotal)
	assert.Equal(t, 1, report.ResumableState.SpecIterationsUsed())
	assert.Empty(t, report.HelperLemmas)
	assert.Equal(t, "helper lemmas do not compile", report.Diagnostics.Summary)
}

func TestOrchestrator_LemmaBudgetExhausted(t *testing.T) {
	h := newFlowHarness(t)
	cfg := testConfig()
	cfg.SpecMaxIterations = 1
	cfg.LemmaMaxIterations = 2
	cfg.LemmaEnabled = true

	h.specs.EXPECT().GenerateSpec(mock.Anything, mock.Anything).Return(specOf("[[spec::add]]"), nil).Once()
	h.lemmas.EXPECT().GenerateLemma(mock.Anything, mock.Anything).
		Return(adapter.LemmaResult{Lemmas: []m.HelperLemma{{Name: "l", Statement: "True"}}}, nil).Times(2)
	h.expectVerify(unproved, unproved, unproved)

	report, err := h.orchestrator(t, cfg).Repair(context.Background(), h.codebase, "add.c", m.RepairState{})
	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, 3, report.IterationsTotal)
	assert.Equal(t, m.StateExhausted, report.FinalState)
	assert.Len(t, report.HelperLemmas, 1)
	require.NotNil(t, report.Suggestions)
	assert.Contains(t, *report.Suggestions, "lemmas")
}

func TestOrchestrator_EscalatesEarlyOnProofFailures(t *testing.T) {
	h := newFlowHarness(t)
	cfg := testConfig()
	cfg.LemmaEnabled = true
	cfg.EscalateOnProofFailure = true

	h.specs.EXPECT().GenerateSpec(mock.Anything, mock.Anything).Return(specOf("[[spec::add]]"), nil).Once()
	h.lemmas.EXPECT().GenerateLemma(mock.Anything, mock.Anything).
		Return(adapter.LemmaResult{Lemmas: []m.HelperLemma{{Name: "l", Statement: "True"}}}, nil).Once()
	h.expectVerify(unproved, verified)

	report, err := h.orchestrator(t, cfg).Repair(context.Background(), h.codebase, "add.c", m.RepairState{})
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 2, report.IterationsTotal)
	assert.Equal(t, 1, report.ResumableState.LemmaIterationsUsed)
}

func TestOrchestrator_SyntaxErrorsKeepRegenerating(t *testing.T) {
	h := newFlowHarness(t)
	cfg := testConfig()
	cfg.SpecMaxIterations = 2
	cfg.LemmaMaxIterations = 1
	cfg.LemmaEnabled = true
	cfg.EscalateOnProofFailure = true

	h.specs.EXPECT().GenerateSpec(mock.Anything, withPriorError("")).Return(specOf("[[spec::add]]"), nil).Once()
	h.specs.EXPECT().GenerateSpec(mock.Anything, withPriorError("invalid annotation")).Return(specOf("[[spec::add]]"), nil).Once()
	h.lemmas.EXPECT().GenerateLemma(mock.Anything, mock.Anything).Return(adapter.LemmaResult{}, nil).Once()
	h.expectVerify(invalid, invalid, verified)

	report, err := h.orchestrator(t, cfg).Repair(context.Background(), h.codebase, "add.c", m.RepairState{})
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 3, report.IterationsTotal)
	assert.Empty(t, report.HelperLemmas)
}

func TestOrchestrator_ResumeHonorsSpentBudget(t *testing.T) {
	h := newFlowHarness(t)
	cfg := testConfig()
	cfg.SpecMaxIterations = 2

	resume := m.RepairState{
		CurrentAnnotations: m.RequestsFromAnnotations([]string{"[[spec::add]]"}),
		LastError:          proofFailureOutput,
		IterationsUsed:     2,
	}

	report, err := h.orchestrator(t, cfg).Repair(context.Background(), h.codebase, "add.c", resume)
	require.NoError(t, err)

	assert.False(t, report.Success)
	assert.Equal(t, 2, report.IterationsTotal, "spent iterations are neither reset nor exceeded")
	assert.Equal(t, "[[spec::add]]\n"+addSource, report.FinalText)
	assert.NotNil(t, report.Suggestions)
}

func TestOrchestrator_ResumeContinuesFromLastError(t *testing.T) {
	h := newFlowHarness(t)

	resume := m.RepairState{
		CurrentAnnotations: m.RequestsFromAnnotations([]string{"[[spec::add]]"}),
		LastError:          proofFailureOutput,
		IterationsUsed:     1,
		SourceHash:         adapter.Digest(addSource),
	}

	h.specs.EXPECT().GenerateSpec(mock.Anything, withPriorError("side condition")).Return(specOf("[[spec::add_v2]]"), nil).Once()
	h.expectVerify(verified)

	report, err := h.orchestrator(t, testConfig()).Repair(context.Background(), h.codebase, "add.c", resume)
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 2, report.IterationsTotal)
	assert.GreaterOrEqual(t, report.ResumableState.IterationsUsed, resume.IterationsUsed)
}

func TestOrchestrator_ResumeIgnoredWhenSourceChanged(t *testing.T) {
	h := newFlowHarness(t)

	resume := m.RepairState{
		CurrentAnnotations: m.RequestsFromAnnotations([]string{"[[spec::stale]]"}),
		IterationsUsed:     2,
		SourceHash:         adapter.Digest("int old(void);\n"),
	}

	h.specs.EXPECT().GenerateSpec(mock.Anything, withPriorError("")).Return(specOf("[[spec::add]]"), nil).Once()
	h.expectVerify(verified)

	report, err := h.orchestrator(t, testConfig()).Repair(context.Background(), h.codebase, "add.c", resume)
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 1, report.IterationsTotal)
	assert.NotContains(t, report.FinalText, "stale")
}

func TestOrchestrator_GeneratorErrorIsDistinct(t *testing.T) {
	h := newFlowHarness(t)

	h.specs.EXPECT().GenerateSpec(mock.Anything, mock.Anything).Return(adapter.SpecResult{}, errors.New("quota exceeded")).Once()

	report, err := h.orchestrator(t, testConfig()).Repair(context.Background(), h.codebase, "add.c", m.RepairState{})
	require.Error(t, err)

	var genErr *domain.GeneratorError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, domain.StageSpec, genErr.Stage)

	assert.False(t, report.Success)
	assert.Equal(t, 0, report.IterationsTotal, "generator failures never consume an iteration")
	assert.Equal(t, addSource, report.FinalText)
	require.NotNil(t, report.Suggestions)
	require.NotNil(t, report.ErrorMessage)
	assert.Contains(t, *report.ErrorMessage, "quota exceeded")
}

func TestOrchestrator_ConfigurationErrors(t *testing.T) {
	h := newFlowHarness(t)
	orch := h.orchestrator(t, testConfig())

	_, err := orch.Repair(context.Background(), h.codebase, "missing.c", m.RepairState{})
	assert.True(t, errors.Is(err, domain.ErrFileNotInCodebase))

	_, err = orch.Repair(context.Background(), h.codebase, "../add.c", m.RepairState{})
	assert.True(t, errors.Is(err, domain.ErrInvalidPath))

	_, err = orch.Repair(context.Background(), nil, "add.c", m.RepairState{})
	assert.True(t, errors.Is(err, domain.ErrFileNotInCodebase))
}

func TestOrchestrator_UnplacedAnnotationsGoToTop(t *testing.T) {
	h := newFlowHarness(t)

	h.specs.EXPECT().GenerateSpec(mock.Anything, mock.Anything).
		Return(specOf("[[spec::add]]", "[[rc::global_invariant]]", "requires nothing"), nil).Once()
	h.expectVerify(verified)

	report, err := h.orchestrator(t, testConfig()).Repair(context.Background(), h.codebase, "add.c", m.RepairState{})
	require.NoError(t, err)

	assert.Equal(t, "[[rc::global_invariant]]\n// requires nothing\n[[spec::add]]\n"+addSource, report.FinalText)
}

func TestOrchestrator_VerifyTimeout(t *testing.T) {
	h := newFlowHarness(t)
	cfg := testConfig()
	cfg.VerifyTimeout = 20 * time.Millisecond

	h.specs.EXPECT().GenerateSpec(mock.Anything, mock.Anything).Return(specOf("[[spec::add]]"), nil).Once()
	h.verifier.EXPECT().Verify(mock.Anything, mock.Anything, "add.c").
		RunAndReturn(func(ctx context.Context, _, _ string) (adapter.VerifyResult, error) {
			<-ctx.Done()
			return adapter.VerifyResult{ExitCode: -1}, ctx.Err()
		}).Once()

	report, err := h.orchestrator(t, cfg).Repair(context.Background(), h.codebase, "add.c", m.RepairState{})
	require.Error(t, err)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, report.Success)
	assert.Equal(t, 0, report.IterationsTotal)
	assert.Contains(t, report.FinalText, "[[spec::add]]")
}
