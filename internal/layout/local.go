package layout

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	"github.com/inkscale/marksheet/internal/catalog"
	"github.com/inkscale/marksheet/internal/mark"
)

// localEdgeLevel binarizes Sobel magnitude. Printed boxes on paper are
// near-black on near-white, so the cutoff sits well above scan noise.
const localEdgeLevel = 128

// localMinScore is the minimum border-concentration score for a
// component to count as a box outline.
const localMinScore = 0.8

// Candidate boxes outside this share of the sheet area are noise specks
// or the page frame, not option boxes.
const (
	localMinAreaFrac = 0.0001
	localMaxAreaFrac = 0.05
)

// Local discovers layouts by finding the printed option boxes directly
// on the raster. It needs no credentials and no network, at the price of
// a simpler eye than the vision model: option boxes must be visually
// separated (no shared grid lines) and laid out one question per row,
// top to bottom, options left to right.
type Local struct {
	policy mark.Policy
}

// NewLocal builds the offline layout service. The policy is used to read
// the answer key off a filled reference sheet.
func NewLocal(p mark.Policy) *Local {
	return &Local{policy: p}
}

// Discover finds the option boxes on the template photo and assembles a
// validated catalog from them.
//
// Question and option counts are required: they are what separates the
// real option grid from stray rectangles (logos, frames) the contour
// pass also picks up. Rows with the wrong box count are dropped as
// noise; if the surviving rows do not match req.Questions exactly, the
// discovery fails rather than guessing.
func (l *Local) Discover(ctx context.Context, req Request) (*catalog.Catalog, error) {
	if req.Questions < 1 {
		return nil, fmt.Errorf("local discovery needs the expected question count")
	}
	if req.Options < 2 {
		return nil, fmt.Errorf("local discovery needs at least 2 options per question, got %d", req.Options)
	}
	if req.Options > len(catalog.Alphabet) {
		return nil, fmt.Errorf("at most %d options per question, got %d", len(catalog.Alphabet), req.Options)
	}

	img, err := imaging.Open(req.ImagePath, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open template sheet: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	boxes := findBoxes(img)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := clusterRows(boxes, req.Options)
	if len(rows) != req.Questions {
		return nil, fmt.Errorf("found %d usable box rows, expected %d questions; "+
			"boxes may be touching or too low-contrast for local detection", len(rows), req.Questions)
	}

	c := &catalog.Catalog{Regions: regionsFromRows(rows, img.Bounds())}

	if req.KeySheet {
		answers, err := l.readKey(img, c)
		if err != nil {
			return nil, err
		}
		c.CorrectAnswers = answers
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("detected layout rejected: %w", err)
	}
	return c, nil
}

// candidate is one rectangle-like contour, in pixel space.
type candidate struct {
	rect  image.Rectangle
	score float64
}

// findBoxes locates option-box shaped outlines on the raster.
//
// The pipeline is classic contour analysis: Sobel edge magnitude,
// binarize, flood-fill connected edge pixels into components, then keep
// components whose pixels concentrate on their bounding-box border.
// Drawn outlines and round bubbles keep nearly every edge pixel near
// that border regardless of stroke width; printed text and artwork
// spread theirs through the interior and score low. A final uniformity
// pass keeps only the dominant box size, which removes question-number
// digits, header rules and other stray print the earlier filters let
// through.
func findBoxes(img image.Image) []candidate {
	mask := segment.Threshold(effect.Sobel(effect.Grayscale(img)), localEdgeLevel)
	bounds := mask.Bounds()
	total := bounds.Dx() * bounds.Dy()

	var out []candidate
	for _, px := range traceComponents(mask) {
		rect := boundingRect(px)
		area := rect.Dx() * rect.Dy()
		if area < int(localMinAreaFrac*float64(total)) || area > int(localMaxAreaFrac*float64(total)) {
			continue
		}
		if score := borderScore(px, rect); score >= localMinScore {
			out = append(out, candidate{rect: rect, score: score})
		}
	}
	return filterUniform(dedupe(out))
}

// traceComponents groups edge pixels of the binary mask into 8-connected
// components. Components under 10 pixels are noise and dropped.
func traceComponents(mask *image.Gray) [][]image.Point {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	visited := make([]bool, w*h)

	isEdge := func(x, y int) bool {
		return mask.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y > 0
	}

	var components [][]image.Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if visited[y*w+x] || !isEdge(x, y) {
				continue
			}

			var px []image.Point
			stack := []image.Point{{X: x, Y: y}}
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
					continue
				}
				if visited[p.Y*w+p.X] || !isEdge(p.X, p.Y) {
					continue
				}
				visited[p.Y*w+p.X] = true
				px = append(px, p)

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
					}
				}
			}

			if len(px) >= 10 {
				components = append(components, px)
			}
		}
	}
	return components
}

func boundingRect(px []image.Point) image.Rectangle {
	r := image.Rectangle{Min: px[0], Max: px[0].Add(image.Point{X: 1, Y: 1})}
	for _, p := range px[1:] {
		if p.X < r.Min.X {
			r.Min.X = p.X
		}
		if p.Y < r.Min.Y {
			r.Min.Y = p.Y
		}
		if p.X >= r.Max.X {
			r.Max.X = p.X + 1
		}
		if p.Y >= r.Max.Y {
			r.Max.Y = p.Y + 1
		}
	}
	return r
}

// borderScore is the fraction of component pixels lying within a small
// band of the bounding rectangle's border. The band scales with box size
// so thick strokes and their double Sobel edges still count as border.
func borderScore(px []image.Point, rect image.Rectangle) float64 {
	band := min(rect.Dx(), rect.Dy()) / 5
	if band < 3 {
		band = 3
	}

	near := 0
	for _, p := range px {
		if p.X-rect.Min.X < band || rect.Max.X-1-p.X < band ||
			p.Y-rect.Min.Y < band || rect.Max.Y-1-p.Y < band {
			near++
		}
	}
	return float64(near) / float64(len(px))
}

// dedupe collapses nested detections of one box. The largest candidate
// wins; anything whose center falls inside an already-kept rectangle is
// an inner ring of the same outline.
func dedupe(cands []candidate) []candidate {
	sort.Slice(cands, func(i, j int) bool {
		ai := cands[i].rect.Dx() * cands[i].rect.Dy()
		aj := cands[j].rect.Dx() * cands[j].rect.Dy()
		return ai > aj
	})

	var kept []candidate
	for _, c := range cands {
		center := c.rect.Min.Add(c.rect.Max).Div(2)
		nested := false
		for _, k := range kept {
			if center.In(k.rect) {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, c)
		}
	}
	return kept
}

// filterUniform keeps the candidates near the dominant box size.
// Option boxes on one sheet are printed uniform, so anything far from
// the median width or height is not an option box.
func filterUniform(cands []candidate) []candidate {
	if len(cands) < 2 {
		return cands
	}

	widths := make([]int, len(cands))
	heights := make([]int, len(cands))
	for i, c := range cands {
		widths[i] = c.rect.Dx()
		heights[i] = c.rect.Dy()
	}
	sort.Ints(widths)
	sort.Ints(heights)
	medW := float64(widths[len(widths)/2])
	medH := float64(heights[len(heights)/2])

	var kept []candidate
	for _, c := range cands {
		w := float64(c.rect.Dx())
		h := float64(c.rect.Dy())
		if w >= 0.6*medW && w <= 1.4*medW && h >= 0.6*medH && h <= 1.4*medH {
			kept = append(kept, c)
		}
	}
	return kept
}

// clusterRows sorts candidates into top-to-bottom rows of equal height
// and keeps only rows holding exactly wantPerRow boxes. Stray
// rectangles land in rows of the wrong size and fall away here.
func clusterRows(cands []candidate, wantPerRow int) [][]candidate {
	if len(cands) == 0 {
		return nil
	}

	sorted := make([]candidate, len(cands))
	copy(sorted, cands)
	sort.Slice(sorted, func(i, j int) bool {
		return centerY(sorted[i]) < centerY(sorted[j])
	})

	// A new row starts when the vertical gap exceeds half the median
	// box height.
	heights := make([]int, len(sorted))
	for i, c := range sorted {
		heights[i] = c.rect.Dy()
	}
	sort.Ints(heights)
	rowTol := float64(heights[len(heights)/2]) / 2

	var rows [][]candidate
	current := []candidate{sorted[0]}
	for _, c := range sorted[1:] {
		if centerY(c)-centerY(current[len(current)-1]) > rowTol {
			rows = append(rows, current)
			current = nil
		}
		current = append(current, c)
	}
	rows = append(rows, current)

	var usable [][]candidate
	for _, row := range rows {
		if len(row) != wantPerRow {
			continue
		}
		sort.Slice(row, func(i, j int) bool {
			return row[i].rect.Min.X < row[j].rect.Min.X
		})
		usable = append(usable, row)
	}
	return usable
}

func centerY(c candidate) float64 {
	return float64(c.rect.Min.Y+c.rect.Max.Y) / 2
}

// regionsFromRows converts pixel rows into percent-coordinate regions,
// numbering questions top to bottom and labeling options left to right.
func regionsFromRows(rows [][]candidate, bounds image.Rectangle) []catalog.Region {
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	var regions []catalog.Region
	for qi, row := range rows {
		for oi, c := range row {
			label := catalog.Alphabet[oi]
			regions = append(regions, catalog.Region{
				ID:       fmt.Sprintf("q%d-%s", qi+1, label),
				Question: qi + 1,
				Option:   label,
				X:        round2(float64(c.rect.Min.X-bounds.Min.X) * 100 / w),
				Y:        round2(float64(c.rect.Min.Y-bounds.Min.Y) * 100 / h),
				W:        round2(float64(c.rect.Dx()) * 100 / w),
				H:        round2(float64(c.rect.Dy()) * 100 / h),
			})
		}
	}
	return regions
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// readKey infers the correct-answer map by measuring ink inside each
// detected box, exactly the way grading will read student sheets. The
// reference sheet must mark exactly one option per question.
func (l *Local) readKey(img image.Image, c *catalog.Catalog) (map[int]catalog.Label, error) {
	answers := make(map[int]catalog.Label)
	for q, regions := range c.ByQuestion() {
		var marked []catalog.Label
		for _, r := range regions {
			if l.policy.Marked(l.policy.Density(img, r)) {
				marked = append(marked, r.Option)
			}
		}
		switch len(marked) {
		case 1:
			answers[q] = marked[0]
		case 0:
			return nil, fmt.Errorf("key sheet leaves question %d unmarked", q)
		default:
			return nil, fmt.Errorf("key sheet marks %d options on question %d", len(marked), q)
		}
	}
	return answers, nil
}
