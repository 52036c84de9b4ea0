// Package export renders grading output for downstream consumers.
//
// Three shapes cover the usual hand-offs: per-sheet JSON reports in the
// external wire format, a flat CSV with one row per graded question for
// spreadsheet work, and a YAML run summary that records the thresholds a
// batch was graded with alongside its aggregate numbers, so a re-grade
// months later can reproduce the run.
package export
