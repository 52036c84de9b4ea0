package annotate

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/inkscale/marksheet/internal/catalog"
	"github.com/inkscale/marksheet/internal/grade"
	"github.com/inkscale/marksheet/internal/mark"
)

// Style holds the outline colors per region outcome.
type Style struct {
	Correct   color.RGBA
	Wrong     color.RGBA
	Ambiguous color.RGBA
	Unmarked  color.RGBA
	Unkeyed   color.RGBA

	// Thickness is the outline width for marked regions, in pixels.
	// Unmarked regions always draw a 1px outline.
	Thickness int
}

// DefaultStyle returns the review palette.
func DefaultStyle() Style {
	return Style{
		Correct:   hexColor("#2E7D32"),
		Wrong:     hexColor("#C62828"),
		Ambiguous: hexColor("#EF6C00"),
		Unmarked:  hexColor("#9E9E9E"),
		Unkeyed:   hexColor("#1565C0"),
		Thickness: 3,
	}
}

// hexColor parses "#RRGGBB" into an opaque RGBA, falling back to red for
// malformed input.
func hexColor(s string) color.RGBA {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{255, 0, 0, 255}
	}
	r, g, b := c.RGB255()
	return color.RGBA{r, g, b, 255}
}

// Overlay renders the graded raster with outcome-colored region outlines.
//
// Densities are re-measured with the same policy used for grading, so the
// overlay always agrees with the report it accompanies. The input raster
// is not modified.
func Overlay(img image.Image, c *catalog.Catalog, report *grade.Report, p mark.Policy, style Style) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)

	details := make(map[int]grade.Detail, len(report.Details))
	for _, d := range report.Details {
		details[d.Question] = d
	}

	for _, r := range c.Regions {
		density := p.Density(img, r)
		marked := p.Marked(density)

		rect := RegionRect(bounds, r)
		outline, thickness := regionStyle(r, marked, details, style)
		drawOutline(dst, rect, outline, thickness)

		label := string(r.Option)
		if marked {
			label = fmt.Sprintf("%s %.2f", r.Option, density)
		}
		drawLabel(dst, rect, label, outline)
	}

	return dst
}

// regionStyle decides outline color and thickness for one region.
func regionStyle(r catalog.Region, marked bool, details map[int]grade.Detail, style Style) (color.RGBA, int) {
	detail, keyed := details[r.Question]

	switch {
	case !keyed:
		if marked {
			return style.Unkeyed, style.Thickness
		}
		return style.Unkeyed, 1
	case marked && detail.IsWarning:
		return style.Ambiguous, style.Thickness
	case marked && r.Option == detail.CorrectAnswer:
		return style.Correct, style.Thickness
	case marked:
		return style.Wrong, style.Thickness
	case r.Option == detail.CorrectAnswer:
		// Missed correct answer: thin green so the reviewer sees what
		// should have been chosen.
		return style.Correct, 1
	}
	return style.Unmarked, 1
}

// RegionRect converts percentage geometry to the full pixel rectangle,
// clamped to bounds.
func RegionRect(bounds image.Rectangle, r catalog.Region) image.Rectangle {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())
	rect := image.Rect(
		bounds.Min.X+int(r.X/100*w),
		bounds.Min.Y+int(r.Y/100*h),
		bounds.Min.X+int((r.X+r.W)/100*w),
		bounds.Min.Y+int((r.Y+r.H)/100*h),
	)
	return rect.Intersect(bounds)
}

// drawOutline draws a rectangle outline as four filled strips.
func drawOutline(dst *image.RGBA, rect image.Rectangle, c color.RGBA, thickness int) {
	if rect.Empty() || thickness < 1 {
		return
	}
	src := image.NewUniform(c)
	bounds := dst.Bounds()

	strips := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+thickness), // top
		image.Rect(rect.Min.X, rect.Max.Y-thickness, rect.Max.X, rect.Max.Y), // bottom
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thickness, rect.Max.Y), // left
		image.Rect(rect.Max.X-thickness, rect.Min.Y, rect.Max.X, rect.Max.Y), // right
	}
	for _, s := range strips {
		draw.Draw(dst, s.Intersect(bounds), src, image.Point{}, draw.Src)
	}
}

// drawLabel draws text just above the region, or inside its top edge when
// there is no room above.
func drawLabel(dst *image.RGBA, rect image.Rectangle, text string, c color.RGBA) {
	face := basicfont.Face7x13
	x := rect.Min.X
	y := rect.Min.Y - 3
	if y-face.Ascent < dst.Bounds().Min.Y {
		y = rect.Min.Y + face.Ascent + 2
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// InkMask binarizes the raster at the policy's brightness cutoff: ink
// renders black, paper white.
//
// The mask uses luminance thresholding, a close stand-in for the
// evaluator's mean-RGB rule, and is meant for threshold tuning by eye
// rather than exact playback of the grading pass.
func InkMask(img image.Image, p mark.Policy) *image.Gray {
	return segment.Threshold(img, uint8(p.DarkBrightness))
}

// Save writes an overlay or mask to path, with format chosen by
// extension.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save annotated sheet: %w", err)
	}
	return nil
}

// DefaultOutputPath derives the annotated-sheet path from the input path:
// "scan.jpg" becomes "scan-graded.png". Overlays always save as PNG so
// outline colors survive without JPEG bleed.
func DefaultOutputPath(in string) string {
	ext := filepath.Ext(in)
	return strings.TrimSuffix(in, ext) + "-graded.png"
}

// Snapshot is a rendered view of part of a sheet, PNG-encoded for
// transport to clients that cannot read files.
type Snapshot struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// NewSnapshot PNG-encodes img into a Snapshot.
func NewSnapshot(img image.Image) (*Snapshot, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}

	b := img.Bounds()
	return &Snapshot{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
