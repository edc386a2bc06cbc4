// Package cmd provides the root command and CLI setup for rcpilot.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"rcpilot.dev/pkg/rcpilot/internal/adapter"
	"rcpilot.dev/pkg/rcpilot/internal/domain"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

const (
	verboseFlagName   = "verbose"
	logFileFlagName   = "log-file"
	sourcesFlagName   = "sources"
	artifactsFlagName = "artifacts"
	stateFlagName     = "state"
)

var fsAdapter adapter.SourceFSAdapter
var cFileAdapter adapter.CFileAdapter

// coordinatorFactory builds the repair pipeline of one project. Tests swap it
// for a fake.
var coordinatorFactory = buildCoordinator

// reportStoreFactory opens the state store of a layout.
var reportStoreFactory = func(layout adapter.Layout) adapter.ReportStore {
	return adapter.NewLocalReportStore(layout.StateRoot(), fsAdapter)
}

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	fsAdapter = adapter.NewLocalSourceFSAdapter()

	parser, err := adapter.NewLocalCFileAdapter(adapter.DefaultPointCacheSize)
	cobra.CheckErr(err)

	cFileAdapter = parser
}

const rootLongDescription = `rcpilot drives RefinedC verification of C projects by repairing their
annotations. It asks a model for function specifications, inserts them at
the right places, runs the verifier, feeds the diagnostics back and, when the
specifications are right but proofs still fail, synthesizes helper lemmas.

Projects live under <sources>/<project>; repaired copies are written to
<artifacts>/<project> and never overwrite the sources.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "rcpilot",
		Short:        "Annotation repair for RefinedC-verified C code",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.BoolP(verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(flags.Lookup(verboseFlagName), logVerboseKey)

	flags.String(logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(flags.Lookup(logFileFlagName), logFilenameKey)

	flags.String(sourcesFlagName, viper.GetString(sourcesDirKey), "directory holding one sub-directory per project")
	bindFlagToConfig(flags.Lookup(sourcesFlagName), sourcesDirKey)

	flags.String(artifactsFlagName, viper.GetString(artifactsDirKey), "directory receiving repaired copies and helper lemmas")
	bindFlagToConfig(flags.Lookup(artifactsFlagName), artifactsDirKey)

	flags.String(stateFlagName, viper.GetString(stateDirKey), "directory holding reports and checkpoints")
	bindFlagToConfig(flags.Lookup(stateFlagName), stateDirKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// buildCoordinator wires the adapters and the domain for layout's project.
// Flow events go to observer.
func buildCoordinator(ctx context.Context, layout adapter.Layout, observer domain.Observer) (domain.Coordinator, error) {
	cfg := repairConfigFromViper()

	generator, err := adapter.NewGeminiGenerator(ctx, viper.GetString(specModelKey), viper.GetString(lemmaModelKey))
	if err != nil {
		return nil, err
	}

	// The orchestrator applies repair.verify_timeout around each run.
	verifier := adapter.NewLocalVerifierAdapter(viper.GetString(verifierKey), viper.GetStringSlice(verifierArgsKey), 0)
	store := reportStoreFactory(layout)
	inserter := newInserter()

	deps := domain.OrchestratorDeps{
		FS:          fsAdapter,
		Parser:      cFileAdapter,
		Inserter:    inserter,
		Verifier:    verifier,
		Specs:       generator,
		Lemmas:      generator,
		LemmaStore:  adapter.NewLocalLemmaStore(fsAdapter),
		Checkpoints: store,
		Observer:    observer,
	}

	if checker := newLemmaChecker(); checker != nil {
		deps.LemmaChecker = checker
	}

	orchestrator := domain.NewOrchestrator(deps, layout, cfg)

	return domain.NewCoordinator(fsAdapter, store, orchestrator, inserter, layout), nil
}

// newLemmaChecker returns nil when tools.coqc is set to an empty string,
// which skips the compile step before lemma verification.
func newLemmaChecker() *adapter.LocalCoqcAdapter {
	command := viper.GetString(coqcKey)
	if command == "" {
		return nil
	}

	return adapter.NewLocalCoqcAdapter(command, viper.GetStringSlice(coqcArgsKey), 0)
}

func newInserter() domain.Inserter {
	return domain.NewInserter(cFileAdapter, domain.WithGroupContinuation(viper.GetBool(groupContinuationKey)))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
