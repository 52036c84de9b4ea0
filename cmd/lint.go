package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inkscale/marksheet/internal/catalog"
)

func newLintCmd() *cobra.Command {
	var tolerance float64

	cmd := &cobra.Command{
		Use:   "lint <catalog>",
		Short: "Check a region catalog for geometry problems",
		Long: `Validate a catalog file and report layout oddities that pass the hard
invariants but usually mean a sloppy catalog: overlapping boxes, rows
that drift out of line, or size outliers.

A catalog that fails validation outright is reported as an error; lint
warnings are advisory and exit zero.`,
		Example: `  marksheet lint exam.json
  marksheet lint exam.json --tolerance 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(args[0])
			if err != nil {
				return err
			}

			warnings := c.Lint(tolerance)
			if len(warnings) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: clean (%d regions, %d questions keyed)\n",
					args[0], len(c.Regions), len(c.CorrectAnswers))
				return nil
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d warnings\n", len(warnings))
			return nil
		},
	}

	cmd.Flags().Float64Var(&tolerance, "tolerance", catalog.DefaultLintTolerance,
		"Center-alignment tolerance in percent of sheet size")

	return cmd
}
