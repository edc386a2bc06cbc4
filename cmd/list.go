package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rcpilot.dev/pkg/rcpilot/internal/controller"
	"rcpilot.dev/pkg/rcpilot/internal/domain"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <project>",
		Short: "List a project's C files and their annotation points",
		Long: `List the .c and .h files of a project with the number of function, loop and
block annotation points found in each, and the Coq root of its lemmas.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cb, err := domain.LoadCodebase(ctx, fsAdapter, layoutFromViper(args[0]))
			if err != nil {
				return err
			}

			rows := make([]controller.InventoryRow, 0, len(cb.Files))

			for _, p := range cb.Paths(false) {
				file, err := cb.Lookup(p)
				if err != nil {
					return err
				}

				points, err := cFileAdapter.Points(ctx, file.OriginalText)
				if err != nil {
					return fmt.Errorf("failed to parse %s: %w", p, err)
				}

				rows = append(rows, controller.NewInventoryRow(p, points))
			}

			cmd.Printf("project %s (coq root %s)\n", cb.Project, cb.CoqRoot)
			_, err = fmt.Fprint(cmd.OutOrStdout(), controller.RenderInventory(rows))

			return err
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
