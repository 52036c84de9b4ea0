package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inkscale/marksheet/internal/annotate"
	"github.com/inkscale/marksheet/internal/grade"
	"github.com/inkscale/marksheet/internal/sheet"
)

func newAnnotateCmd() *cobra.Command {
	var catalogPath string
	var studentID string
	var output string

	cmd := &cobra.Command{
		Use:   "annotate <sheet>",
		Short: "Grade a sheet and save a marked-up copy",
		Long: `Grade one answer sheet and write a copy with every option box
outlined: green for correct answers, red for wrong ones, orange where
several boxes were filled in, gray for unmarked boxes.

The overlay is the quickest way to spot a mis-calibrated catalog, since
a box that outlines empty paper is drawn exactly where the catalog says
the option is.`,
		Example: `  marksheet annotate scan.jpg --catalog exam.json
  marksheet annotate scan.jpg --catalog exam.json --output review/scan.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheetPath := args[0]

			c, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			img, err := sheet.NewCache().Load(sheetPath)
			if err != nil {
				return err
			}

			id := studentID
			if id == "" {
				base := filepath.Base(sheetPath)
				id = strings.TrimSuffix(base, filepath.Ext(base))
			}

			report := grade.GradeSheet(img, c, cfg.Thresholds, id)
			overlay := annotate.Overlay(img, c, report, cfg.Thresholds, annotate.DefaultStyle())

			if output == "" {
				output = annotate.DefaultOutputPath(sheetPath)
			}
			if err := annotate.Save(overlay, output); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s scored %d/%d, overlay saved to %s\n",
				report.StudentID, report.Score, report.Total, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to the region catalog JSON (required)")
	cmd.Flags().StringVar(&studentID, "student", "", "Student identifier for the report (default: sheet file name)")
	cmd.Flags().StringVar(&output, "output", "", "Overlay output path (default: <sheet>-graded.png)")

	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}
