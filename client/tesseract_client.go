package client

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"
)

// TesseractClient wraps Tesseract OCR for scanned statement pages.
type TesseractClient struct {
	dataPath string
	logger   zerolog.Logger
}

func NewTesseractClient(dataPath string, logger zerolog.Logger) *TesseractClient {
	return &TesseractClient{dataPath: dataPath, logger: logger}
}

// ExtractTextFromImage runs OCR on a page image on disk.
func (tc *TesseractClient) ExtractTextFromImage(imagePath string) (string, error) {
	c := gosseract.NewClient()
	defer c.Close()

	c.SetTessdataPrefix(tc.dataPath)

	if err := c.SetLanguage("eng"); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := c.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	return text, nil
}

// ExtractTextAndConfidence additionally reports the mean word confidence so
// callers can flag low-quality scans.
func (tc *TesseractClient) ExtractTextAndConfidence(imagePath string) (string, float64, error) {
	c := gosseract.NewClient()
	defer c.Close()

	c.SetTessdataPrefix(tc.dataPath)

	if err := c.SetLanguage("eng"); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}
	if err := c.SetImage(imagePath); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return text, 0, nil
	}

	var totalConf float64
	for _, box := range boxes {
		totalConf += box.Confidence
	}
	avgConf := 0.0
	if len(boxes) > 0 {
		avgConf = totalConf / float64(len(boxes))
	}
	return text, avgConf, nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	tc.logger.Debug().Msg("tesseract client closed")
}
