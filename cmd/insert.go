package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"rcpilot.dev/pkg/rcpilot/internal/domain"
	m "rcpilot.dev/pkg/rcpilot/internal/model"
)

const (
	annotationFlagName = "annotation"
	fromFlagName       = "from"
	atFlagName         = "at"
	afterFlagName      = "after"
	writeFlagName      = "write"
	fallbackFlagName   = "fallback"
)

// insertCmd represents the insert command.
var insertCmd = newInsertCmd()

func newInsertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert <file.c>",
		Short: "Insert annotations into a C file",
		Long: `Insert annotations above the annotation points of a C file and print the
result. Annotations come from repeated --annotation flags or a YAML list of
{text, hint: {location, position}} entries given with --from.

Without --at, an annotation goes above the function whose name it mentions.
Annotations that match no point are put at the top of the file unless
--fallback=false, in which case they are only reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := m.Path(args[0])

			requests, err := insertRequests(cmd)
			if err != nil {
				return err
			}

			content, err := fsAdapter.ReadFile(ctx, path)
			if err != nil {
				return err
			}

			result, err := newInserter().Insert(ctx, string(content), requests)
			if err != nil {
				return err
			}

			text := result.Text

			fallback, _ := cmd.Flags().GetBool(fallbackFlagName)
			if fallback && len(result.Unplaced) > 0 {
				text, _ = domain.PrependAnnotations(text, m.AnnotationTexts(result.Unplaced))
			}

			for _, r := range result.Unplaced {
				cmd.PrintErrf("unplaced: %s\n", r.Text)
			}

			write, _ := cmd.Flags().GetBool(writeFlagName)
			if !write {
				_, err = fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}

			info, err := fsAdapter.FileInfo(ctx, path)
			if err != nil {
				return err
			}

			if err := fsAdapter.WriteFile(ctx, path, []byte(text), info.Mode().Perm()); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			cmd.Printf("%s: %d placed, %d unplaced\n", path, len(result.Placed), len(result.Unplaced))

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringArrayP(annotationFlagName, "a", nil, "annotation to insert (can be repeated)")
	flags.String(fromFlagName, "", "YAML file with annotation requests")
	flags.String(atFlagName, "", "function name or 1-based line for every --annotation")
	flags.Bool(afterFlagName, false, "insert below the --at line instead of above it")
	flags.BoolP(writeFlagName, "w", false, "write the result back to the file")
	flags.Bool(fallbackFlagName, true, "put unplaced annotations at the top of the file")

	return cmd
}

func init() {
	rootCmd.AddCommand(insertCmd)
}

// insertRequests collects the requests of the --from file followed by the
// --annotation flags.
func insertRequests(cmd *cobra.Command) ([]m.AnnotationRequest, error) {
	var requests []m.AnnotationRequest

	from, _ := cmd.Flags().GetString(fromFlagName)
	if from != "" {
		content, err := fsAdapter.ReadFile(cmd.Context(), m.Path(from))
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal(content, &requests); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", from, err)
		}
	}

	annotations, _ := cmd.Flags().GetStringArray(annotationFlagName)
	at, _ := cmd.Flags().GetString(atFlagName)
	after, _ := cmd.Flags().GetBool(afterFlagName)

	var hint *m.InsertionHint
	if at != "" {
		hint = &m.InsertionHint{Location: at, Position: m.PositionBefore}
		if after {
			hint.Position = m.PositionAfter
		}
	}

	flagged := m.RequestsFromAnnotations(annotations)
	for i := range flagged {
		flagged[i].Hint = hint
	}

	requests = append(requests, flagged...)

	if len(requests) == 0 {
		return nil, fmt.Errorf("no annotations given: use --%s or --%s", annotationFlagName, fromFlagName)
	}

	return requests, nil
}
