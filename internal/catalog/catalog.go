package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Label is a single answer-option letter from the closed alphabet.
type Label string

// Alphabet is the closed set of option labels a region may carry.
// Catalogs may use any subset per question, but never a label outside it.
var Alphabet = []Label{"A", "B", "C", "D", "E"}

// ValidLabel reports whether l is a member of the option alphabet.
func ValidLabel(l Label) bool {
	for _, a := range Alphabet {
		if l == a {
			return true
		}
	}
	return false
}

// Region is one candidate answer-option rectangle on the sheet.
//
// Geometry is percentage-of-image: a region with X=10, W=5 spans from 10% to
// 15% of the image width regardless of the raster's pixel dimensions.
type Region struct {
	// ID is an opaque identifier, stable and unique within a catalog.
	ID string `json:"id"`

	// Question is the 1-based question number this option belongs to.
	Question int `json:"questionNumber"`

	// Option is the label of this choice within its question.
	Option Label `json:"optionLabel"`

	// X, Y anchor the rectangle's top-left corner, in percent (0-100)
	// of image width and height respectively.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// W, H are the rectangle's size, in percent of image width/height.
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the region's center point in percent coordinates.
func (r Region) Center() (cx, cy float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Catalog is the ordered collection of option regions for one sheet layout
// plus the correct-answer key.
type Catalog struct {
	// Regions lists every option box, in layout order.
	Regions []Region `json:"boxes"`

	// CorrectAnswers maps a question number to its single correct option
	// label. A question absent from the map has no gradable key and is
	// excluded from scoring.
	CorrectAnswers map[int]Label `json:"correctAnswers"`
}

// Parse decodes and validates a catalog from its JSON wire shape.
//
// The parse is strict in the sense of spec'd invariants: any shape mismatch
// or invariant violation returns a descriptive error and no catalog. This is
// the single boundary where loosely-typed layout-service output becomes the
// typed model the engine trusts.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and parses a catalog JSON file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Save writes the catalog to path as indented JSON.
func (c *Catalog) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

// Validate checks every catalog invariant and returns the first violation.
//
// Checked invariants:
//   - every region has a non-empty, catalog-unique id
//   - question numbers are positive
//   - option labels come from the alphabet, with no duplicates per question
//   - geometry is present and sane: W and H positive, X and Y within 0-100
//   - every correct-answer entry names an existing question, and its label
//     is one of that question's options
func (c *Catalog) Validate() error {
	if len(c.Regions) == 0 {
		return fmt.Errorf("catalog has no regions")
	}

	ids := make(map[string]bool, len(c.Regions))
	options := make(map[int]map[Label]bool)

	for i, r := range c.Regions {
		if r.ID == "" {
			return fmt.Errorf("region %d: missing id", i)
		}
		if ids[r.ID] {
			return fmt.Errorf("region %q: duplicate id", r.ID)
		}
		ids[r.ID] = true

		if r.Question < 1 {
			return fmt.Errorf("region %q: question number %d is not positive", r.ID, r.Question)
		}
		if !ValidLabel(r.Option) {
			return fmt.Errorf("region %q: option label %q outside alphabet %v", r.ID, r.Option, Alphabet)
		}
		if r.W <= 0 || r.H <= 0 {
			return fmt.Errorf("region %q: non-positive size %gx%g%%", r.ID, r.W, r.H)
		}
		if r.X < 0 || r.X > 100 || r.Y < 0 || r.Y > 100 {
			return fmt.Errorf("region %q: anchor (%g%%, %g%%) outside 0-100", r.ID, r.X, r.Y)
		}

		if options[r.Question] == nil {
			options[r.Question] = make(map[Label]bool)
		}
		if options[r.Question][r.Option] {
			return fmt.Errorf("question %d: duplicate option label %q", r.Question, r.Option)
		}
		options[r.Question][r.Option] = true
	}

	for q, label := range c.CorrectAnswers {
		opts, ok := options[q]
		if !ok {
			return fmt.Errorf("correct answer for question %d: no such question in boxes", q)
		}
		if !opts[label] {
			return fmt.Errorf("correct answer for question %d: label %q is not among its options", q, label)
		}
	}

	return nil
}

// Questions returns the distinct question numbers in ascending order.
func (c *Catalog) Questions() []int {
	seen := make(map[int]bool)
	for _, r := range c.Regions {
		seen[r.Question] = true
	}
	qs := make([]int, 0, len(seen))
	for q := range seen {
		qs = append(qs, q)
	}
	sort.Ints(qs)
	return qs
}

// UnkeyedQuestions returns the questions that have option regions but no
// correct-answer entry, ascending. These grade silently to nothing, so
// surfaces warn about them before a run.
func (c *Catalog) UnkeyedQuestions() []int {
	var qs []int
	for _, q := range c.Questions() {
		if _, ok := c.CorrectAnswers[q]; !ok {
			qs = append(qs, q)
		}
	}
	return qs
}

// ByQuestion groups regions by question number. Within each group, regions
// keep their catalog order.
func (c *Catalog) ByQuestion() map[int][]Region {
	groups := make(map[int][]Region)
	for _, r := range c.Regions {
		groups[r.Question] = append(groups[r.Question], r)
	}
	return groups
}

// FindRegion returns the region with the given id, or false when absent.
func (c *Catalog) FindRegion(id string) (Region, bool) {
	for _, r := range c.Regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}
