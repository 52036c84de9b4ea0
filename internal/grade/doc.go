// Package grade turns per-region ink densities into answers and scores.
//
// The package owns the engine's decision logic: the resolver collapses the
// option densities of each question into a single verdict, and the scorer
// folds verdicts with the correct-answer key into an immutable report.
// Pixel measurement lives in package mark; raster decoding in package
// sheet. Nothing here touches the filesystem except the batch runner,
// which delegates loading to its caller-supplied Loader.
//
// # Resolution Policy
//
// Each question is a three-state decision reached in one pass over its
// option regions:
//
//   - no option above the mark threshold: answer empty, not ambiguous
//   - exactly one option above: that option's label
//   - two or more above: answer empty, ambiguous (the engine never
//     guesses between competing marks)
//
// Verdicts are emitted in ascending question order regardless of catalog
// order, so downstream reports are deterministic.
//
// # Scoring
//
// Only questions present in the correct-answer key produce detail records;
// a keyless question contributes to neither score nor total. Ambiguous
// verdicts surface as warnings on their detail record, never as errors.
// A report is created whole and never mutated afterwards.
//
// # Batches
//
// GradeBatch grades many sheets against one shared catalog. Sheets are
// independent: a sheet whose raster cannot be decoded carries its own
// error in the result slice and the rest of the batch proceeds. Results
// keep submission order no matter how many workers run.
package grade
