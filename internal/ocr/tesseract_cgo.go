//go:build cgo && linux

package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// recognize runs Tesseract over the image at path with the identifier
// whitelist applied. Returns the raw text and the mean word confidence
// scaled to 0-1.
func recognize(imagePath string) (string, float64, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage("eng"); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}

	// Identifier strips hold a single printed line from a known alphabet.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", 0, fmt.Errorf("failed to set page mode: %w", err)
	}
	if err := client.SetWhitelist(idAllowlist); err != nil {
		return "", 0, fmt.Errorf("failed to set whitelist: %w", err)
	}

	if err := client.SetImage(imagePath); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("OCR failed: %w", err)
	}

	// Text alone is still useful when bounding boxes fail.
	confidence := 0.0
	if boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD); err == nil && len(boxes) > 0 {
		for _, box := range boxes {
			confidence += float64(box.Confidence)
		}
		confidence /= float64(len(boxes)) * 100
	}

	return text, confidence, nil
}

func engineInfo() Info {
	client := gosseract.NewClient()
	defer client.Close()

	return Info{
		Available: true,
		Version:   client.Version(),
		Backend:   "gosseract",
	}
}
