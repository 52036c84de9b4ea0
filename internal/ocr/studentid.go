package ocr

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"

	"github.com/disintegration/imaging"
)

// idAllowlist is the character set a student identifier may use. Recognition
// discards everything outside it.
const idAllowlist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-"

// ErrUnavailable is returned when the binary was built without OCR support.
var ErrUnavailable = errors.New("student-ID recognition requires a cgo build on linux with tesseract installed")

// Strip locates the printed identifier on a sheet. Coordinates are percent
// of the image dimensions, the same convention catalog regions use.
type Strip struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// DefaultStrip covers the top band of the sheet where the identifier is
// usually printed.
func DefaultStrip() Strip {
	return Strip{X: 5, Y: 1, W: 90, H: 10}
}

func (s Strip) window(bounds image.Rectangle) image.Rectangle {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	win := image.Rect(
		int(float64(bounds.Min.X)+s.X/100*w),
		int(float64(bounds.Min.Y)+s.Y/100*h),
		int(float64(bounds.Min.X)+(s.X+s.W)/100*w),
		int(float64(bounds.Min.Y)+(s.Y+s.H)/100*h),
	)
	return win.Intersect(bounds)
}

// Identity is a recognized student identifier.
type Identity struct {
	StudentID  string  `json:"studentId"`
	Confidence float64 `json:"confidence"`
}

// ReadStudentID crops the identifier strip from img and recognizes its text.
//
// The returned confidence is the mean word confidence reported by Tesseract,
// scaled to 0-1. Recognition output is reduced to the longest token made of
// allowed characters; if nothing usable remains, an error is returned.
func ReadStudentID(img image.Image, strip Strip) (*Identity, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to read")
	}

	win := strip.window(img.Bounds())
	if win.Empty() {
		return nil, fmt.Errorf("identifier strip lies outside the image")
	}
	cropped := imaging.Crop(img, win)

	// Tesseract wants a file path, so hand the strip over as a temp PNG.
	tmpFile, err := os.CreateTemp("", "marksheet-id-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmpFile, cropped); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to encode temp image: %w", err)
	}
	tmpFile.Close()

	text, confidence, err := recognize(tmpPath)
	if err != nil {
		return nil, err
	}

	id := sanitizeID(text)
	if id == "" {
		return nil, fmt.Errorf("no identifier found in strip")
	}

	return &Identity{StudentID: id, Confidence: confidence}, nil
}

// ReadStudentIDFromFile loads a sheet from disk and reads its identifier strip.
func ReadStudentIDFromFile(path string, strip Strip) (*Identity, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return ReadStudentID(img, strip)
}

// sanitizeID reduces raw OCR output to the most plausible identifier: the
// longest whitespace-separated token after dropping disallowed characters.
func sanitizeID(raw string) string {
	best := ""
	for _, token := range strings.Fields(strings.ToUpper(raw)) {
		var b strings.Builder
		for _, r := range token {
			if strings.ContainsRune(idAllowlist, r) {
				b.WriteRune(r)
			}
		}
		candidate := strings.Trim(b.String(), "-")
		if len(candidate) > len(best) {
			best = candidate
		}
	}
	return best
}

// Info describes OCR availability in this build.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Backend   string `json:"backend"`
	Error     string `json:"error,omitempty"`
}

// EngineInfo reports whether recognition is supported by this binary and,
// when it is, the linked Tesseract version.
func EngineInfo() Info {
	return engineInfo()
}
