// Package layout acquires region catalogs from a template sheet photo.
//
// The grading engine never discovers regions itself; it only scores the
// rectangles it is given. This package is the collaborator that produces
// those rectangles, through two interchangeable services:
//
//   - Gemini sends the photo to a vision model with the catalog JSON
//     schema as the system instruction and parses the reply strictly.
//     It handles messy layouts, multiple columns and odd print designs.
//   - Local finds the printed option boxes itself with contour analysis.
//     It needs no credentials and no network, but expects a plain
//     single-column grid of visually separated boxes.
//
// Either way, output that fails shape or invariant checks is rejected at
// this boundary so loosely-derived geometry never reaches the engine.
//
// Discovery runs once per sheet layout, typically against the blank
// reference sheet, and the resulting catalog is then reused for every
// student sheet in a batch. For the answer-key sheet, both services also
// report which option is marked per question, which becomes the
// catalog's correct-answer map.
package layout
