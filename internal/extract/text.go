package extract

import (
	"fmt"
	"strings"

	"datasoph/internal/models"
)

const (
	// pdfFallbackThreshold is the minimum character count the layout-aware
	// PDF method must yield before the simpler method is tried.
	pdfFallbackThreshold = 50

	// minTokenConfidence is the per-token OCR score below which a recognized
	// word is discarded.
	minTokenConfidence = 30
)

// TextExtractor runs the text-extraction fallback chain. The OCR engine is an
// interface so tests can run without a tesseract installation.
type TextExtractor struct {
	ocr OCREngine
}

// NewTextExtractor returns an extractor backed by tesseract.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{ocr: tesseractEngine{}}
}

// NewTextExtractorWithEngine injects a custom OCR engine.
func NewTextExtractorWithEngine(engine OCREngine) *TextExtractor {
	return &TextExtractor{ocr: engine}
}

// Extract dispatches to the extraction method for the detected file type. The
// chain is deterministic: the same file always yields the same method tag and
// text. A TextResult with empty text and success is a valid outcome; an error
// means the file could not even be attempted (load failure).
func (e *TextExtractor) Extract(path string, ft models.FileType) (*models.TextResult, error) {
	var (
		text   string
		method string
		conf   float64
		err    error
	)
	switch ft {
	case models.FileTypePDF:
		text, method, err = e.extractPDF(path)
		conf = lengthConfidence(text)
	case models.FileTypeImage:
		text, method, conf, err = e.extractImage(path)
	case models.FileTypeDocx:
		text, method, err = extractDocx(path)
		conf = lengthConfidence(text)
	case models.FileTypeText:
		text, method, err = extractPlainText(path)
		conf = lengthConfidence(text)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ft)
	}
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		conf = 0
	}
	res := analyzeContent(text)
	res.Method = method
	res.Confidence = conf
	return res, nil
}

// lengthConfidence is the length-saturating heuristic used by the non-OCR
// methods: min(100, chars/10). It is not a recognizer score.
func lengthConfidence(text string) float64 {
	c := float64(len(strings.TrimSpace(text))) / 10
	if c > 100 {
		return 100
	}
	if c < 0 {
		return 0
	}
	return c
}
