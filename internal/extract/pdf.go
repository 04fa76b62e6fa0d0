package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pageBreak separates per-page text in PDF extraction output.
const pageBreak = "\n\n--- PAGE BREAK ---\n\n"

// extractPDF attempts the layout-aware per-page method first, then falls back
// to the whole-document plain-text reader when the first yields fewer than
// pdfFallbackThreshold characters.
func (e *TextExtractor) extractPDF(path string) (string, string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("%w: open pdf: %v", ErrLoadFailed, err)
	}
	defer f.Close()

	text := extractPDFPages(r)
	method := "pdf_pages"

	if len(strings.TrimSpace(text)) < pdfFallbackThreshold {
		if plain := extractPDFPlain(r); len(strings.TrimSpace(plain)) > len(strings.TrimSpace(text)) {
			text = plain
			method = "pdf_plain"
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", "pdf_no_text", nil
	}
	return text, method, nil
}

func extractPDFPages(r *pdf.Reader) string {
	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(pageText) != "" {
			pages = append(pages, strings.TrimSpace(pageText))
		}
	}
	return strings.Join(pages, pageBreak)
}

func extractPDFPlain(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, reader); err != nil {
		return ""
	}
	return sb.String()
}
