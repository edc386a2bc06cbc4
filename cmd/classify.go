package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"rcpilot.dev/pkg/rcpilot/internal/controller"
	"rcpilot.dev/pkg/rcpilot/internal/domain"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

const yamlFlagName = "yaml"

// classifyCmd represents the classify command.
var classifyCmd = newClassifyCmd()

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [output-file|-]",
		Short: "Classify verifier output into diagnostics",
		Long: `Read the combined output of a verifier run from a file, or from stdin when
no file or "-" is given, and show the diagnostics rcpilot extracts from it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readClassifyInput(cmd, args)
			if err != nil {
				return err
			}

			set := domain.Classify(string(raw))

			asYAML, _ := cmd.Flags().GetBool(yamlFlagName)
			if asYAML {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)

				if err := enc.Encode(set); err != nil {
					return err
				}

				return enc.Close()
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), controller.RenderDiagnostics(set))

			return err
		},
	}

	cmd.Flags().Bool(yamlFlagName, false, "print the diagnostic set as YAML")

	return cmd
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func readClassifyInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}

	return fsAdapter.ReadFile(cmd.Context(), m.Path(args[0]))
}
