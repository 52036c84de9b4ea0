// Package annotate renders review overlays for graded sheets.
//
// An overlay is the graded raster with every option region outlined in
// the color of its outcome, so an operator can eyeball why a sheet scored
// the way it did: green for the chosen correct answer, red for a wrong
// choice, orange for the competing marks of an ambiguous question, a thin
// green outline for a missed correct answer, gray for everything else.
// Marked regions additionally carry their measured density so threshold
// tuning has numbers to look at.
//
// The ink mask is the second debug view: a black-and-white rendition of
// what the evaluator classifies as ink at the current brightness cutoff.
package annotate
