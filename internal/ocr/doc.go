// Package ocr reads the printed student identifier from an answer sheet.
//
// Sheets carry the student number in a strip near the top edge. The strip
// location is expressed in percent coordinates, so one Strip value works
// across scan resolutions.
//
// # Build Requirements
//
// Recognition is backed by Tesseract through gosseract/v2 and needs a cgo
// build on Linux with the Tesseract libraries installed:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev tesseract-ocr-eng
//
// Builds without cgo (or on other platforms) still compile, but
// ReadStudentID returns ErrUnavailable. Callers can probe support with
// EngineInfo before attempting recognition.
//
// # Recognition
//
// The strip is cropped from the sheet and written to a temporary PNG,
// since Tesseract wants a file path. Recognition runs in single-line page
// mode with a character whitelist restricted to the identifier alphabet.
// Raw output is reduced to the longest plausible token, so prompt text
// printed on the sheet ("ID:") does not leak into the result.
package ocr
