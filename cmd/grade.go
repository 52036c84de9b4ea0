package cmd

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inkscale/marksheet/internal/export"
	"github.com/inkscale/marksheet/internal/grade"
	"github.com/inkscale/marksheet/internal/ocr"
	"github.com/inkscale/marksheet/internal/sheet"
)

func newGradeCmd() *cobra.Command {
	var catalogPath string
	var studentID string
	var output string
	var readID bool

	cmd := &cobra.Command{
		Use:   "grade <sheet>",
		Short: "Grade one answer sheet and print the report as JSON",
		Long: `Grade a single photographed answer sheet against a region catalog.

The report lists one detail row per keyed question with the resolved
answer, the correct answer and an ambiguity warning where several options
were filled in.`,
		Example: `  # Grade a sheet against a catalog
  marksheet grade scan.jpg --catalog exam.json

  # Name the student and save the report
  marksheet grade scan.jpg --catalog exam.json --student 2024-117 --output report.json

  # Read the student number from the sheet's identifier strip
  marksheet grade scan.jpg --catalog exam.json --read-id`,
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
			if id == "" && readID {
				if identity, err := ocr.ReadStudentID(img, ocr.DefaultStrip()); err == nil {
					id = identity.StudentID
				}
			}
			if id == "" {
				base := filepath.Base(sheetPath)
				id = strings.TrimSuffix(base, filepath.Ext(base))
			}

			report := grade.GradeSheet(img, c, cfg.Thresholds, id)

			if output != "" {
				return export.SaveReportJSON(output, report)
			}
			return export.WriteReportJSON(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to the region catalog JSON (required)")
	cmd.Flags().StringVar(&studentID, "student", "", "Student identifier for the report (default: sheet file name)")
	cmd.Flags().StringVar(&output, "output", "", "Write the report to this file instead of stdout")
	cmd.Flags().BoolVar(&readID, "read-id", false, "Read the student identifier from the sheet via OCR")

	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}
