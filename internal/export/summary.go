package export

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/inkscale/marksheet/internal/grade"
	"github.com/inkscale/marksheet/internal/mark"
)

// RunInfo records how a batch was graded.
type RunInfo struct {
	CatalogPath string      `yaml:"catalog"`
	Thresholds  mark.Policy `yaml:"thresholds"`
	Workers     int         `yaml:"workers"`
	Timestamp   string      `yaml:"timestamp"`
}

// SheetSummary is one batch row in the YAML summary.
type SheetSummary struct {
	StudentID string `yaml:"studentid"`
	Path      string `yaml:"path"`
	Score     int    `yaml:"score"`
	Total     int    `yaml:"total"`
	Warnings  int    `yaml:"warnings"`
	Error     string `yaml:"error,omitempty"`
}

// BatchSummary aggregates a batch.
type BatchSummary struct {
	Sheets    int     `yaml:"sheets"`
	Graded    int     `yaml:"graded"`
	Failed    int     `yaml:"failed"`
	MeanScore float64 `yaml:"meanscore"`
	MinScore  int     `yaml:"minscore"`
	MaxScore  int     `yaml:"maxscore"`
	Ambiguous int     `yaml:"ambiguous"`
}

// BatchSpec is the complete YAML summary document.
type BatchSpec struct {
	Run     RunInfo        `yaml:"run"`
	Summary BatchSummary   `yaml:"summary"`
	Sheets  []SheetSummary `yaml:"sheets"`
}

// Summarize computes batch aggregates. Failed sheets count toward Sheets
// and Failed but not toward score statistics.
func Summarize(results []grade.Result) BatchSummary {
	s := BatchSummary{Sheets: len(results)}

	sum := 0
	for _, res := range results {
		if res.Err != nil {
			s.Failed++
			continue
		}
		r := res.Report
		if s.Graded == 0 || r.Score < s.MinScore {
			s.MinScore = r.Score
		}
		if s.Graded == 0 || r.Score > s.MaxScore {
			s.MaxScore = r.Score
		}
		s.Graded++
		sum += r.Score
		for _, d := range r.Details {
			if d.IsWarning {
				s.Ambiguous++
			}
		}
	}

	if s.Graded > 0 {
		s.MeanScore = float64(sum) / float64(s.Graded)
	}
	return s
}

// sheetSummaries flattens batch results into YAML rows.
func sheetSummaries(results []grade.Result) []SheetSummary {
	rows := make([]SheetSummary, 0, len(results))
	for _, res := range results {
		row := SheetSummary{
			StudentID: res.Sheet.StudentID,
			Path:      res.Sheet.Path,
		}
		if res.Err != nil {
			row.Error = res.Err.Error()
		} else {
			row.Score = res.Report.Score
			row.Total = res.Report.Total
			for _, d := range res.Report.Details {
				if d.IsWarning {
					row.Warnings++
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// NewRunInfo stamps the grading parameters of a run.
func NewRunInfo(catalogPath string, p mark.Policy, workers int) RunInfo {
	return RunInfo{
		CatalogPath: catalogPath,
		Thresholds:  p,
		Workers:     workers,
		Timestamp:   time.Now().Format("2006-01-02_15-04-05"),
	}
}

// SaveBatchYAML writes the YAML run summary to path.
func SaveBatchYAML(path string, run RunInfo, results []grade.Result) error {
	spec := BatchSpec{
		Run:     run,
		Summary: Summarize(results),
		Sheets:  sheetSummaries(results),
	}

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
