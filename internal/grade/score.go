package grade

import (
	"image"
	"time"

	"github.com/inkscale/marksheet/internal/catalog"
	"github.com/inkscale/marksheet/internal/mark"
)

// Detail is the per-question record of a report.
//
// StudentAnswer is an empty string for unmarked or ambiguous questions,
// never null, so tabular exports stay well-typed.
type Detail struct {
	Question      int           `json:"question"`
	StudentAnswer catalog.Label `json:"studentAnswer"`
	CorrectAnswer catalog.Label `json:"correctAnswer"`
	IsCorrect     bool          `json:"isCorrect"`
	IsWarning     bool          `json:"isWarning"`
}

// Report is the final scored output for one sheet.
//
// A report is assembled once, after every question is resolved, and not
// modified afterwards.
type Report struct {
	StudentID string    `json:"studentId"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	Details   []Detail  `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

// Score folds verdicts with the correct-answer key into a report.
//
// Verdicts whose question has no key entry are dropped: they appear in
// neither Total nor Details. Detail order follows verdict order, which
// Resolve already guarantees is ascending by question. An ambiguous
// verdict becomes a warning on its detail record.
func Score(studentID string, verdicts []Verdict, answers map[int]catalog.Label) *Report {
	details := make([]Detail, 0, len(verdicts))
	score := 0

	for _, v := range verdicts {
		key, ok := answers[v.Question]
		if !ok {
			continue
		}
		d := Detail{
			Question:      v.Question,
			StudentAnswer: v.Answer,
			CorrectAnswer: key,
			IsCorrect:     v.Answer == key,
			IsWarning:     v.Ambiguous,
		}
		if d.IsCorrect {
			score++
		}
		details = append(details, d)
	}

	return &Report{
		StudentID: studentID,
		Score:     score,
		Total:     len(details),
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// GradeSheet resolves and scores one raster in a single call.
func GradeSheet(img image.Image, c *catalog.Catalog, p mark.Policy, studentID string) *Report {
	return Score(studentID, Resolve(img, c, p), c.CorrectAnswers)
}
