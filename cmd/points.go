package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rcpilot.dev/pkg/rcpilot/internal/controller"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

// pointsCmd represents the points command.
var pointsCmd = newPointsCmd()

func newPointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "points <file.c>",
		Short: "List the annotation points of a C file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			content, err := fsAdapter.ReadFile(ctx, m.Path(args[0]))
			if err != nil {
				return err
			}

			points, err := cFileAdapter.Points(ctx, string(content))
			if err != nil {
				return err
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), controller.RenderPoints(points))

			return err
		},
	}
}

func init() {
	rootCmd.AddCommand(pointsCmd)
}
