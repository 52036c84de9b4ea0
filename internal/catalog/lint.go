package catalog

import (
	"fmt"
	"math"
	"sort"
)

// DefaultLintTolerance is the alignment tolerance for Lint, in percent of
// image dimension. Option centers of one question whose spread exceeds this
// on both axes are flagged as misaligned.
const DefaultLintTolerance = 2.0

// Lint inspects a valid catalog for layouts that usually indicate a bad
// layout-service response, and returns human-readable warnings.
//
// Warnings are advisory: a catalog that lints dirty still grades, it just
// deserves a second look before a large batch. Checks:
//
//   - the options of one question should share a row or a column; centers
//     are compared by standard deviation against tolerance (percent)
//   - a question with fewer than two options cannot distinguish answers
//   - a question missing a correct-answer entry will be excluded from
//     scoring entirely
func (c *Catalog) Lint(tolerance float64) []string {
	if tolerance <= 0 {
		tolerance = DefaultLintTolerance
	}

	var warnings []string
	groups := c.ByQuestion()

	qs := make([]int, 0, len(groups))
	for q := range groups {
		qs = append(qs, q)
	}
	sort.Ints(qs)

	for _, q := range qs {
		regions := groups[q]

		if len(regions) < 2 {
			warnings = append(warnings, fmt.Sprintf("question %d has only %d option region(s)", q, len(regions)))
		}

		if len(regions) >= 2 {
			devX, devY := centerSpread(regions)
			if devX > tolerance && devY > tolerance {
				warnings = append(warnings, fmt.Sprintf(
					"question %d options are neither row- nor column-aligned (spread %.1f%% x, %.1f%% y)",
					q, devX, devY))
			}
		}

		if _, ok := c.CorrectAnswers[q]; !ok {
			warnings = append(warnings, fmt.Sprintf("question %d has no correct-answer entry and will not be scored", q))
		}
	}

	return warnings
}

// centerSpread returns the standard deviation of the region centers along
// each axis, in percent coordinates.
func centerSpread(regions []Region) (devX, devY float64) {
	var sumX, sumY float64
	for _, r := range regions {
		cx, cy := r.Center()
		sumX += cx
		sumY += cy
	}
	n := float64(len(regions))
	avgX := sumX / n
	avgY := sumY / n

	var varX, varY float64
	for _, r := range regions {
		cx, cy := r.Center()
		dx := cx - avgX
		dy := cy - avgY
		varX += dx * dx
		varY += dy * dy
	}
	return math.Sqrt(varX / n), math.Sqrt(varY / n)
}
