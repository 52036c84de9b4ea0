package layout

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/inkscale/marksheet/internal/catalog"
)

// DefaultModel is the vision model used when none is configured.
const DefaultModel = "gemini-2.0-flash"

// catalogSchema is the reply format embedded into the system instruction.
const catalogSchema = `{
  "boxes": [
    {
      "id": "string, unique per box, e.g. \"q1-A\"",
      "questionNumber": "integer >= 1",
      "optionLabel": "one uppercase letter A-E",
      "x": "number 0-100, left edge as percent of image width",
      "y": "number 0-100, top edge as percent of image height",
      "w": "number > 0, width as percent of image width",
      "h": "number > 0, height as percent of image height"
    }
  ],
  "correctAnswers": {
    "<questionNumber>": "optionLabel of the marked option on this sheet"
  }
}`

const systemPrompt = `You locate answer-option boxes on a photographed multiple-choice answer sheet.
For every question on the sheet, report one box per printed option bubble or cell.
Coordinates are percentages of the full image, so they hold at any resolution.
Boxes of one question must not overlap and must share a row or a column.
Reply with JSON only, exactly matching this schema, no commentary:`

// Gemini discovers layouts through the Google generative AI API.
type Gemini struct {
	apiKey string
	model  string
}

// NewGemini builds a Gemini-backed layout service. An empty model selects
// DefaultModel.
func NewGemini(apiKey, model string) *Gemini {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Gemini{
		apiKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
	}
}

// Discover sends the sheet photo to the model and returns the validated
// catalog from its reply.
//
// Transient API failures are retried three times with a short backoff.
// A reply that parses but violates catalog invariants is not retried;
// it is a hard error, since a second sample of a confused model is not
// more trustworthy than the first.
func (g *Gemini) Discover(ctx context.Context, req Request) (*catalog.Catalog, error) {
	if g.apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}

	imgBytes, err := os.ReadFile(req.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet image: %w", err)
	}
	mime := http.DetectContentType(imgBytes)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%s is not an image (detected %s)", req.ImagePath, mime)
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, err
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{
			genai.Text(systemPrompt),
			genai.Text("\n" + catalogSchema),
		},
	}

	parts := []genai.Part{
		genai.Text(userPrompt(req)),
		&genai.Blob{MIMEType: mime, Data: imgBytes},
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := m.GenerateContent(ctx, parts...)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt) * 300 * time.Millisecond)
			continue
		}
		txt := firstText(resp)
		if txt == "" {
			return nil, fmt.Errorf("layout model returned an empty reply")
		}
		return fromWire(txt, req)
	}
	return nil, fmt.Errorf("layout discovery failed after retries: %w", lastErr)
}

// userPrompt renders the per-request hints.
func userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The sheet has %d questions", req.Questions)
	if req.Options > 0 {
		fmt.Fprintf(&b, " with %d options each", req.Options)
	}
	b.WriteString(".")
	if req.KeySheet {
		b.WriteString(" This is the filled answer-key sheet: for every question," +
			" set correctAnswers to the option that is marked.")
	} else {
		b.WriteString(" Omit correctAnswers.")
	}
	b.WriteString(" Reply with schema JSON only.")
	return b.String()
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
