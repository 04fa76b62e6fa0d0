package extract

import (
	"fmt"
	"strings"

	"datasoph/internal/models"
)

var financialKeywords = []string{"invoice", "receipt", "total", "amount", "$", "€", "₺"}

var analyticalKeywords = []string{"chart", "graph", "data", "analysis", "report"}

// analyzeContent classifies extracted text and fills the derived counts and
// summary line of a TextResult. Method and confidence are set by the caller.
func analyzeContent(text string) *models.TextResult {
	res := &models.TextResult{Text: text, CharCount: len(text)}

	if strings.TrimSpace(text) == "" {
		res.ContentType = models.ContentEmpty
		res.Summary = "No text content found"
		return res
	}

	words := strings.Fields(text)
	res.WordCount = len(words)

	res.ContentType = models.ContentDocument
	switch {
	case containsAny(words, financialKeywords):
		res.ContentType = models.ContentFinancial
	case containsAny(words, analyticalKeywords):
		res.ContentType = models.ContentAnalytical
	case len(words) < 20:
		res.ContentType = models.ContentShortText
	}

	label := strings.ReplaceAll(string(res.ContentType), "_", " ")
	summary := fmt.Sprintf("Document contains %d words, %d characters. Content appears to be %s. ",
		res.WordCount, res.CharCount, label)
	if len(words) > 50 {
		preview := text
		if len(preview) > 100 {
			preview = strings.TrimSpace(preview[:100]) + "..."
		}
		summary += fmt.Sprintf("Preview: '%s'", preview)
	} else {
		full := text
		if len(full) > 200 {
			full = full[:200]
		}
		summary += fmt.Sprintf("Full text: '%s'", full)
	}
	res.Summary = summary
	return res
}

func containsAny(words []string, keywords []string) bool {
	for _, w := range words {
		lw := strings.ToLower(w)
		for _, k := range keywords {
			if strings.Contains(lw, k) {
				return true
			}
		}
	}
	return false
}
