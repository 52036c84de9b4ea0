// Package sheet loads and caches answer-sheet rasters.
//
// Phone photos arrive as JPEG or PNG, frequently with an EXIF orientation
// tag instead of physically rotated pixels. The loader applies the tag at
// decode time so region geometry and the raster always agree; a catalog
// calibrated on an upright sheet would otherwise grade a sideways raster.
//
// # Caching
//
// Grading touches a raster once per region, and a batch may grade the
// same reference sheet repeatedly. Cache keeps decoded rasters keyed by
// path so repeated loads cost one disk read. Entries stay resident until
// Evict or Clear; long batches should Clear between runs to bound memory.
//
// Cache is safe for concurrent use and satisfies the grading batch's
// Loader interface.
package sheet
