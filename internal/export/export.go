package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/inkscale/marksheet/internal/grade"
)

// WriteReportJSON writes one report in the wire shape, indented.
func WriteReportJSON(w io.Writer, r *grade.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// SaveReportJSON writes one report to path.
func SaveReportJSON(path string, r *grade.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	if err := WriteReportJSON(f, r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// csvHeader is the flat per-question export schema.
var csvHeader = []string{
	"studentId", "sheet", "question",
	"studentAnswer", "correctAnswer", "isCorrect", "isWarning", "error",
}

// WriteBatchCSV writes one row per graded question across the batch.
//
// A sheet that failed to grade emits a single row carrying its error so
// the CSV still accounts for every submitted sheet. Empty student
// answers stay empty strings, keeping the table well-typed.
func WriteBatchCSV(w io.Writer, results []grade.Result) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, res := range results {
		if res.Err != nil {
			row := []string{res.Sheet.StudentID, res.Sheet.Path, "", "", "", "", "", res.Err.Error()}
			if err := writer.Write(row); err != nil {
				return err
			}
			continue
		}
		for _, d := range res.Report.Details {
			row := []string{
				res.Sheet.StudentID,
				res.Sheet.Path,
				strconv.Itoa(d.Question),
				string(d.StudentAnswer),
				string(d.CorrectAnswer),
				strconv.FormatBool(d.IsCorrect),
				strconv.FormatBool(d.IsWarning),
				"",
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// SaveBatchCSV writes the batch CSV to path.
func SaveBatchCSV(path string, results []grade.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()
	if err := WriteBatchCSV(f, results); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
