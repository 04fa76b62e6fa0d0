package chat

import (
	"encoding/json"
	"fmt"
	"strings"

	"datasoph/internal/models"
	"datasoph/internal/session"
)

// systemPrompt frames the downstream model as a data-science assistant. The
// language rule is the load-bearing part: replies must mirror the user's
// language.
const systemPrompt = `You are DataSoph AI, an expert data scientist with deep knowledge of statistics, machine learning, data analysis and business intelligence.

CRITICAL LANGUAGE RULE:
- Always respond in the same language the user writes in
- Turkish questions get Turkish answers, English questions get English answers

RESPONSE GUIDELINES:
- Be specific and actionable, never generic or robotic
- Ground every answer in the context supplied with the request
- Give code examples where appropriate
- Never say you cannot help; offer alternatives instead`

type language string

const (
	langTurkish language = "tr"
	langEnglish language = "en"
)

var turkishRunes = "ğüşıöçĞÜŞİÖÇ"

// detectLanguage marks a message as Turkish when it contains
// Turkish-specific characters.
func detectLanguage(message string) language {
	if strings.ContainsAny(message, turkishRunes) {
		return langTurkish
	}
	return langEnglish
}

// fallbacks are the localized degraded responses, keyed by language. They are
// data, not branching code, so adding a language means adding a row.
var fallbacks = map[language]struct {
	short         string
	unavailable   string
	notConfigured string
}{
	langEnglish: {
		short: "Hello! I'm DataSoph AI, your data science expert. How can I help you today? " +
			"Whether you want to analyze data, learn Python, or have any technical question, feel free to ask!",
		unavailable: "Hello! I'm DataSoph AI. I'm experiencing a connection issue right now, but I'm still here to help. " +
			"Please try your question again in a moment - if you uploaded a file, its analysis is kept and ready.",
		notConfigured: "AI service not available - API key not configured",
	},
	langTurkish: {
		short: "Merhaba! Ben DataSoph AI, veri bilimi uzmanınızım. Size nasıl yardımcı olabilirim? " +
			"Veri analizi, Python veya herhangi bir teknik konuda sorularınızı çekinmeden sorun!",
		unavailable: "Merhaba! Ben DataSoph AI. Şu anda bağlantıda küçük bir sorun var ama yardımcı olmaya hazırım. " +
			"Lütfen sorunuzu birazdan tekrar deneyin - bir dosya yüklediyseniz analizi hazır bekliyor.",
		notConfigured: "AI servisi kullanılamıyor - API anahtarı yapılandırılmamış",
	},
}

// buildPrompt assembles the single outbound prompt: file context (when
// present), a small window of prior turns, the current request, and the
// behavioral instructions. With no file context the message passes through
// with no context section at all.
func buildPrompt(message string, fc *session.FileContext, recent []models.ChatTurn) string {
	if fc == nil {
		return message
	}

	recentSection := ""
	if len(recent) > 0 {
		var lines []string
		for _, turn := range recent {
			lines = append(lines, "- "+turn.Content)
		}
		recentSection = "RECENT CONVERSATION:\n" + strings.Join(lines, "\n") + "\n\n"
	}

	switch {
	case fc.Result.Tabular != nil:
		return datasetPrompt(message, fc.File.FileName, fc.Result.Tabular, recentSection)
	case fc.Result.Text != nil:
		if fc.Result.Text.Empty() {
			return emptyDocumentPrompt(message, fc.File.FileName, recentSection)
		}
		return documentPrompt(message, fc.File.FileName, fc.Result.Text, recentSection)
	default:
		return message
	}
}

func datasetPrompt(message, filename string, t *models.TabularResult, recentSection string) string {
	stats, _ := json.Marshal(t.Summary)
	return fmt.Sprintf(`DATASET: %q (%d rows, %d columns: %s)

%sCURRENT REQUEST: %s

RESPONSE GUIDELINES:
- Answer the specific question about this dataset
- Respond in the same language as the current request
- Use the actual column names and data patterns from this dataset
- The dataset above IS the provided file; never claim no file was provided
- For visualization requests, provide working plotting code
- If a chart exists at /figures/correlation.png, mention it

DATA STATS: %s`,
		filename, t.Rows, len(t.Columns), strings.Join(t.Columns, ", "),
		recentSection, message, stats)
}

func documentPrompt(message, filename string, t *models.TextResult, recentSection string) string {
	return fmt.Sprintf(`DOCUMENT: %q (%s, %d words, %.1f%% extraction confidence)

DOCUMENT CONTENT:
%s

%sCURRENT REQUEST: %s

RESPONSE GUIDELINES:
- Answer questions using the document content above
- Respond in the same language as the current request
- Reference and quote specific content from the document
- The document above IS the provided file; never claim no file was provided

DOCUMENT TYPE: %s`,
		filename, t.ContentType, t.WordCount, t.Confidence,
		t.Text, recentSection, message, t.ContentType)
}

func emptyDocumentPrompt(message, filename, recentSection string) string {
	return fmt.Sprintf(`DOCUMENT: %q (processed but no text was extracted)

%sCURRENT REQUEST: %s

NOTE: This document was processed but no readable text was found. Possible causes: an image without text, a complex layout, or poor scan quality.

RESPONSE GUIDELINES:
- Respond in the same language as the current request
- Tell the user no text content could be extracted from their file
- Suggest ways to improve extraction (better image quality, different format)
- Offer other kinds of help where possible`,
		filename, recentSection, message)
}
