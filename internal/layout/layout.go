package layout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/inkscale/marksheet/internal/catalog"
)

// Request describes one layout-discovery call.
type Request struct {
	// ImagePath is the sheet photo to analyze.
	ImagePath string

	// Questions is the expected question count. When positive, a reply
	// with a different count is rejected.
	Questions int

	// Options is the number of options per question, used to steer the
	// model. Zero lets the model decide.
	Options int

	// KeySheet marks this as the filled reference sheet: the reply must
	// include the correct-answer map. For student sheets any answers the
	// model volunteers are discarded.
	KeySheet bool
}

// Service discovers the option regions of a sheet layout.
type Service interface {
	Discover(ctx context.Context, req Request) (*catalog.Catalog, error)
}

// fromWire turns raw model output into a validated catalog.
//
// This is the strict boundary: code fences are tolerated because models
// add them despite instructions, but everything past that must satisfy
// the full set of catalog invariants.
func fromWire(raw string, req Request) (*catalog.Catalog, error) {
	var c catalog.Catalog
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &c); err != nil {
		return nil, fmt.Errorf("layout reply is not valid JSON: %w", err)
	}

	if !req.KeySheet {
		c.CorrectAnswers = nil
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("layout reply rejected: %w", err)
	}

	if req.Questions > 0 {
		if got := len(c.Questions()); got != req.Questions {
			return nil, fmt.Errorf("layout reply has %d questions, expected %d", got, req.Questions)
		}
	}
	if req.KeySheet && len(c.CorrectAnswers) == 0 {
		return nil, fmt.Errorf("key-sheet reply carries no correct answers")
	}

	return &c, nil
}

// stripCodeFences removes a surrounding ```json fence, if present.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
