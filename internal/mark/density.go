package mark

import (
	"fmt"
	"image"

	"github.com/inkscale/marksheet/internal/catalog"
)

// Default policy values. Tuned against phone-camera sheet photos; override
// through Policy when a deployment needs different cutoffs.
const (
	// DefaultInsetFrac shrinks each side of a region before sampling, so
	// the central 70% of width and height is measured.
	DefaultInsetFrac = 0.15

	// DefaultDarkBrightness is the mean-RGB cutoff below which a pixel
	// counts as ink, on the 0-255 scale.
	DefaultDarkBrightness = 165

	// DefaultMarkThreshold is the minimum density for a region to count
	// as marked.
	DefaultMarkThreshold = 0.08
)

// Policy holds the tunable thresholds of mark evaluation.
//
// The zero value is not usable; construct with DefaultPolicy and adjust.
type Policy struct {
	// InsetFrac is the fraction (0 to <0.5) trimmed from each side of a
	// region before sampling.
	InsetFrac float64 `mapstructure:"inset_frac" json:"insetFrac"`

	// DarkBrightness is the mean-RGB brightness (0-255) below which a
	// pixel is classified dark.
	DarkBrightness float64 `mapstructure:"dark_brightness" json:"darkBrightness"`

	// MarkThreshold is the density above which a region bears a mark.
	MarkThreshold float64 `mapstructure:"mark_threshold" json:"markThreshold"`
}

// DefaultPolicy returns the tuned production thresholds.
func DefaultPolicy() Policy {
	return Policy{
		InsetFrac:      DefaultInsetFrac,
		DarkBrightness: DefaultDarkBrightness,
		MarkThreshold:  DefaultMarkThreshold,
	}
}

// Validate rejects threshold combinations that cannot classify anything.
func (p Policy) Validate() error {
	if p.InsetFrac < 0 || p.InsetFrac >= 0.5 {
		return fmt.Errorf("inset fraction %g outside [0, 0.5)", p.InsetFrac)
	}
	if p.DarkBrightness <= 0 || p.DarkBrightness >= 255 {
		return fmt.Errorf("dark brightness %g outside (0, 255)", p.DarkBrightness)
	}
	if p.MarkThreshold <= 0 || p.MarkThreshold >= 1 {
		return fmt.Errorf("mark threshold %g outside (0, 1)", p.MarkThreshold)
	}
	return nil
}

// Signal pairs one region with its measured ink coverage.
type Signal struct {
	RegionID string  `json:"regionId"`
	Density  float64 `json:"density"`
	Marked   bool    `json:"marked"`
}

// Density measures the ink-coverage ratio of one region on the raster.
//
// The return value is always in [0,1]. Any condition that prevents
// sampling (nil image, region outside the raster, zero-area window)
// yields 0: an unreadable region is "no mark", never a sheet failure.
func (p Policy) Density(img image.Image, r catalog.Region) float64 {
	if img == nil {
		return 0
	}

	win := p.window(img.Bounds(), r)
	if win.Empty() {
		return 0
	}

	dark := 0
	for y := win.Min.Y; y < win.Max.Y; y++ {
		for x := win.Min.X; x < win.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			// Convert from 16-bit to 8-bit
			brightness := float64(uint8(cr>>8)) + float64(uint8(cg>>8)) + float64(uint8(cb>>8))
			if brightness/3 < p.DarkBrightness {
				dark++
			}
		}
	}

	return float64(dark) / float64(win.Dx()*win.Dy())
}

// Marked reports whether a density crosses the mark-presence threshold.
func (p Policy) Marked(density float64) bool {
	return density > p.MarkThreshold
}

// Measure evaluates every region and returns one signal per region, in
// input order.
func (p Policy) Measure(img image.Image, regions []catalog.Region) []Signal {
	signals := make([]Signal, 0, len(regions))
	for _, r := range regions {
		d := p.Density(img, r)
		signals = append(signals, Signal{
			RegionID: r.ID,
			Density:  d,
			Marked:   p.Marked(d),
		})
	}
	return signals
}

// window converts the region's percentage geometry into an inset pixel
// rectangle clamped to bounds.
func (p Policy) window(bounds image.Rectangle, r catalog.Region) image.Rectangle {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	px := float64(bounds.Min.X) + r.X/100*w
	py := float64(bounds.Min.Y) + r.Y/100*h
	pw := r.W / 100 * w
	ph := r.H / 100 * h

	// Inset each side so printed option borders stay outside the window.
	insetX := pw * p.InsetFrac
	insetY := ph * p.InsetFrac

	win := image.Rect(
		int(px+insetX),
		int(py+insetY),
		int(px+pw-insetX),
		int(py+ph-insetY),
	)
	return win.Intersect(bounds)
}
