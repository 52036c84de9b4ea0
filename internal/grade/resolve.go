package grade

import (
	"image"

	"github.com/inkscale/marksheet/internal/catalog"
	"github.com/inkscale/marksheet/internal/mark"
)

// Verdict is the resolved outcome for one question on one sheet.
//
// Answer is the empty label when no single option was chosen, either
// because nothing was marked or because the question is ambiguous.
type Verdict struct {
	Question  int           `json:"question"`
	Answer    catalog.Label `json:"studentAnswer"`
	Ambiguous bool          `json:"isAmbiguous"`
}

// Resolve grades one raster against a catalog and returns one verdict per
// question, in ascending question order.
//
// Every option region is measured exactly once. Options whose density
// crosses the policy threshold count as marked; the per-question verdict
// follows the three-state policy described in the package documentation.
func Resolve(img image.Image, c *catalog.Catalog, p mark.Policy) []Verdict {
	groups := c.ByQuestion()
	verdicts := make([]Verdict, 0, len(groups))

	for _, q := range c.Questions() {
		var (
			marked int
			answer catalog.Label
		)
		for _, r := range groups[q] {
			if p.Marked(p.Density(img, r)) {
				marked++
				answer = r.Option
			}
		}

		v := Verdict{Question: q}
		switch {
		case marked == 1:
			v.Answer = answer
		case marked > 1:
			v.Ambiguous = true
		}
		verdicts = append(verdicts, v)
	}

	return verdicts
}
