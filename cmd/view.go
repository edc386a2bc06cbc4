package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"rcpilot.dev/pkg/rcpilot/internal/controller"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

const diffFlagName = "diff"

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <project> [files...]",
		Short: "View stored repair reports",
		Long: `View the repair reports stored for a project. With --diff, also show how each
repaired file differs from its source.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			layout := layoutFromViper(args[0])
			store := reportStoreFactory(layout)

			reports, err := store.LoadReports(ctx)
			if err != nil {
				return err
			}

			reports = filterReports(reports, parsePaths(args[1:]))

			if len(reports) == 0 {
				cmd.Printf("no reports stored for %s\n", args[0])
				return nil
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprint(out, controller.RenderReports(reports)); err != nil {
				return err
			}

			withDiff, _ := cmd.Flags().GetBool(diffFlagName)
			if !withDiff {
				return nil
			}

			for _, r := range reports {
				if r.FinalText == "" {
					continue
				}

				source, err := layout.SourcePath(r.Path)
				if err != nil {
					return err
				}

				original, err := fsAdapter.ReadFile(ctx, source)
				if err != nil {
					slog.Warn("source of report not readable", "path", r.Path, "error", err)
					continue
				}

				diff, err := controller.RenderDiff(r.Path, string(original), r.FinalText)
				if err != nil {
					return err
				}

				if _, err := fmt.Fprintf(out, "\n%s", diff); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolP(diffFlagName, "d", false, "show unified diffs of repaired files")

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func filterReports(reports []m.RepairReport, paths []m.Path) []m.RepairReport {
	if len(paths) == 0 {
		return reports
	}

	wanted := make(map[m.Path]struct{}, len(paths))
	for _, p := range paths {
		wanted[p] = struct{}{}
	}

	filtered := make([]m.RepairReport, 0, len(paths))

	for _, r := range reports {
		if _, ok := wanted[r.Path]; ok {
			filtered = append(filtered, r)
		}
	}

	return filtered
}
