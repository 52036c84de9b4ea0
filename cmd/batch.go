package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkscale/marksheet/internal/export"
	"github.com/inkscale/marksheet/internal/grade"
	"github.com/inkscale/marksheet/internal/sheet"
	"github.com/inkscale/marksheet/internal/store"
)

func newBatchCmd() *cobra.Command {
	var catalogPath string
	var workers int
	var csvPath string
	var summaryPath string
	var jsonDir string
	var useStore bool
	var batchID string

	cmd := &cobra.Command{
		Use:   "batch <sheet>...",
		Short: "Grade many answer sheets against one catalog",
		Long: `Grade a set of photographed answer sheets concurrently.

Each sheet is graded independently; one unreadable photo does not stop
the rest. Results keep the order the sheets were given in. Student
identifiers are taken from the sheet file names.`,
		Example: `  # Grade a directory of scans, CSV to stdout
  marksheet batch scans/*.jpg --catalog exam.json

  # Write the CSV and a YAML run summary
  marksheet batch scans/*.jpg --catalog exam.json --csv grades.csv --summary run.yaml

  # Keep a JSON report per student and persist the run
  marksheet batch scans/*.jpg --catalog exam.json --json-dir reports/ --store`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}

			sheets := make([]grade.Sheet, len(args))
			for i, path := range args {
				base := filepath.Base(path)
				sheets[i] = grade.Sheet{
					StudentID: strings.TrimSuffix(base, filepath.Ext(base)),
					Path:      path,
				}
			}

			if workers <= 0 {
				workers = cfg.Workers
			}

			results := grade.GradeBatch(ctx, sheet.NewCache(), sheets, c, cfg.Thresholds, workers)

			if csvPath != "" {
				if err := export.SaveBatchCSV(csvPath, results); err != nil {
					return err
				}
			}
			if summaryPath != "" {
				run := export.NewRunInfo(catalogPath, cfg.Thresholds, workers)
				if err := export.SaveBatchYAML(summaryPath, run, results); err != nil {
					return err
				}
			}
			if jsonDir != "" {
				if err := saveReports(jsonDir, results); err != nil {
					return err
				}
			}
			if useStore {
				if err := persistBatch(ctx, cmd, batchID, results); err != nil {
					return err
				}
			}

			if csvPath == "" {
				return export.WriteBatchCSV(cmd.OutOrStdout(), results)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to the region catalog JSON (required)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent sheets (default: config workers)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the score table to this CSV file")
	cmd.Flags().StringVar(&summaryPath, "summary", "", "Write a YAML run summary to this file")
	cmd.Flags().StringVar(&jsonDir, "json-dir", "", "Write one JSON report per sheet into this directory")
	cmd.Flags().BoolVar(&useStore, "store", false, "Persist reports to the configured database")
	cmd.Flags().StringVar(&batchID, "batch-id", "", "Batch identifier for the store (default: timestamp)")

	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}

// saveReports writes one report file per successfully graded sheet,
// named after the student identifier.
func saveReports(dir string, results []grade.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	for _, r := range results {
		if r.Report == nil {
			continue
		}
		path := filepath.Join(dir, r.Report.StudentID+".json")
		if err := export.SaveReportJSON(path, r.Report); err != nil {
			return err
		}
	}
	return nil
}

func persistBatch(ctx context.Context, cmd *cobra.Command, batchID string, results []grade.Result) error {
	if cfg.Database.URL == "" {
		return fmt.Errorf("no database configured: set database.url or MARKSHEET_DATABASE_URL")
	}
	if batchID == "" {
		batchID = time.Now().Format("2006-01-02_15-04-05")
	}

	st, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer st.Close()

	saved, err := st.SaveBatch(ctx, batchID, results)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "stored %d reports under batch %q\n", saved, batchID)
	return nil
}
