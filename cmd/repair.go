package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rcpilot.dev/pkg/rcpilot/internal/controller"
	"rcpilot.dev/pkg/rcpilot/internal/domain"
)

const (
	runParallelFlagName   = "parallel"
	resumeFlagName        = "resume"
	interactiveFlagName   = "interactive"
	specIterationsFlag    = "spec-iterations"
	lemmaIterationsFlag   = "lemma-iterations"
	lemmasFlagName        = "lemmas"
	verifierFlagName      = "verifier"
	repairLongDescription = `Repair the annotations of a project's C files until RefinedC accepts them
or the iteration budgets run out.

With no files, every .c file of the project is repaired. Files are given
relative to the project directory, e.g.

  rcpilot repair queue src/queue.c src/alloc.c

Flows of different files run concurrently and never affect each other. Each
settled flow stores a report under the state directory; --resume continues
from the last checkpoint or report.`
)

// repairCmd represents the repair command.
var repairCmd = newRepairCmd()

func newRepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair <project> [files...]",
		Short: "Repair annotations until the verifier accepts them",
		Long:  repairLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			project := args[0]
			layout := layoutFromViper(project)
			files := parsePaths(args[1:])
			parallel := viper.GetInt(runParallelConfigKey)

			resume, err := cmd.Flags().GetBool(resumeFlagName)
			if err != nil {
				return err
			}

			interactive, err := cmd.Flags().GetBool(interactiveFlagName)
			if err != nil {
				return err
			}

			ui := controller.NewUI(cmd, interactive)

			coordinator, err := coordinatorFactory(ctx, layout, ui)
			if err != nil {
				return fmt.Errorf("failed to set up repair: %w", err)
			}

			if err := ui.Start(ctx, controller.WithTitle("rcpilot repair "+project), controller.WithFiles(files)); err != nil {
				return err
			}
			defer ui.Close(ctx)

			ui.DisplayRunInfo(ctx, project, len(files), parallel)

			outcomes, err := coordinator.Repair(ctx, domain.RepairArgs{
				Paths:    files,
				Parallel: parallel,
				Resume:   resume,
			})
			if err != nil {
				return fmt.Errorf("repair of %s failed: %w", project, err)
			}

			ui.DisplayOutcomes(ctx, outcomes)
			ui.Wait(ctx)

			return unverified(outcomes)
		},
	}

	configureRepairFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(repairCmd)
}

func configureRepairFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.IntP(runParallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of files repaired concurrently (0 for unbounded)")
	bindFlagToConfig(flags.Lookup(runParallelFlagName), runParallelConfigKey)

	flags.Int(specIterationsFlag, viper.GetInt(specMaxIterationsKey), "verifier runs allowed in the specification phase")
	bindFlagToConfig(flags.Lookup(specIterationsFlag), specMaxIterationsKey)

	flags.Int(lemmaIterationsFlag, viper.GetInt(lemmaMaxIterationsKey), "verifier runs allowed in the helper lemma phase")
	bindFlagToConfig(flags.Lookup(lemmaIterationsFlag), lemmaMaxIterationsKey)

	flags.Bool(lemmasFlagName, viper.GetBool(lemmaEnabledKey), "escalate to helper lemma synthesis")
	bindFlagToConfig(flags.Lookup(lemmasFlagName), lemmaEnabledKey)

	flags.String(verifierFlagName, viper.GetString(verifierKey), "verifier executable")
	bindFlagToConfig(flags.Lookup(verifierFlagName), verifierKey)

	flags.Bool(resumeFlagName, false, "continue from stored checkpoints and reports")
	flags.BoolP(interactiveFlagName, "i", false, "show live progress when writing to a terminal")
}

// unverified turns failed outcomes into the command's error so the process
// exits non-zero.
func unverified(outcomes []domain.FileOutcome) error {
	var failed []string

	for _, o := range outcomes {
		if o.Err != nil || !o.Report.Success {
			failed = append(failed, string(o.Path))
		}
	}

	if len(failed) == 0 {
		return nil
	}

	return fmt.Errorf("%d of %d file(s) not verified: %s", len(failed), len(outcomes), strings.Join(failed, ", "))
}
