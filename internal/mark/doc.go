// Package mark measures ink coverage inside answer-option regions.
//
// The evaluator answers a single question for one region on one raster:
// what fraction of the region's pixels look like pen ink? The fraction is
// the only signal the grading engine consumes; everything downstream
// (answer resolution, scoring) is threshold logic over these densities.
//
// # Sampling Window
//
// A region's percentage geometry is first converted into absolute pixel
// coordinates against the raster's real dimensions. The evaluator then
// samples an inset sub-window rather than the full rectangle: each side is
// shrunk by Policy.InsetFrac so the printed border of the option box does
// not count as ink. The window is clamped to the raster bounds; a window
// that clamps to nothing yields density 0.
//
// # Pixel Classification
//
// Brightness is the unweighted mean of the 8-bit red, green and blue
// channels. Alpha is ignored. A pixel is "dark" when its brightness falls
// below Policy.DarkBrightness. Density is darkPixels / sampledPixels and
// is always within [0,1], never NaN, even for degenerate regions.
//
// # Failure Handling
//
// Pixel access never aborts a sheet. A region lying outside the raster, a
// nil raster, or a zero-area window all degrade to density 0, which the
// resolver reads as "no mark". Hard errors are reserved for catalog
// loading, where they belong.
//
// # Thread Safety
//
// Evaluation is a pure function of the raster and the region. A Policy
// value is immutable after construction and may be shared across
// concurrently graded sheets.
package mark
