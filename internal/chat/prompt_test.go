package chat

import (
	"strings"
	"testing"

	"datasoph/internal/models"
	"datasoph/internal/session"
)

func TestDetectLanguage(t *testing.T) {
	if detectLanguage("Bu dosyayı özetler misin?") != langTurkish {
		t.Error("Turkish message not detected")
	}
	if detectLanguage("Can you summarize this file?") != langEnglish {
		t.Error("English message misdetected")
	}
	if detectLanguage("çok iyi") != langTurkish {
		t.Error("lowercase Turkish rune not detected")
	}
}

func tabularContext() *session.FileContext {
	return &session.FileContext{
		File: models.UploadedFile{ID: "f1", FileName: "sales.csv"},
		Result: models.ExtractionResult{Tabular: &models.TabularResult{
			Rows:    120,
			Columns: []string{"region", "units", "price"},
			Summary: map[string]models.ColumnStats{},
		}},
	}
}

func textContext(text string) *session.FileContext {
	res := &models.TextResult{
		Text:        text,
		Method:      "pdf_pages",
		Confidence:  87.5,
		WordCount:   len(strings.Fields(text)),
		ContentType: models.ContentDocument,
	}
	return &session.FileContext{
		File:   models.UploadedFile{ID: "f2", FileName: "report.pdf"},
		Result: models.ExtractionResult{Text: res},
	}
}

func TestBuildPromptNoContext(t *testing.T) {
	got := buildPrompt("hello there", nil, nil)
	if got != "hello there" {
		t.Errorf("prompt = %q, want pass-through", got)
	}
}

func TestBuildPromptDataset(t *testing.T) {
	prompt := buildPrompt("what drives revenue?", tabularContext(), nil)
	for _, want := range []string{
		`DATASET: "sales.csv" (120 rows, 3 columns: region, units, price)`,
		"CURRENT REQUEST: what drives revenue?",
		"never claim no file was provided",
		"DATA STATS:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("dataset prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "RECENT CONVERSATION") {
		t.Error("recent section present without prior turns")
	}
}

func TestBuildPromptRecentTurns(t *testing.T) {
	recent := []models.ChatTurn{
		{Role: models.RoleUser, Content: "first question"},
		{Role: models.RoleAssistant, Content: "first answer"},
	}
	prompt := buildPrompt("follow-up", tabularContext(), recent)
	if !strings.Contains(prompt, "RECENT CONVERSATION:\n- first question\n- first answer") {
		t.Errorf("recent section wrong:\n%s", prompt)
	}
}

func TestBuildPromptDocument(t *testing.T) {
	prompt := buildPrompt("summarize it", textContext("The contract covers delivery terms."), nil)
	for _, want := range []string{
		`DOCUMENT: "report.pdf"`,
		"87.5% extraction confidence",
		"The contract covers delivery terms.",
		"CURRENT REQUEST: summarize it",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("document prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptEmptyDocument(t *testing.T) {
	prompt := buildPrompt("what does it say?", textContext(""), nil)
	if !strings.Contains(prompt, "no text was extracted") {
		t.Errorf("empty-document prompt wrong:\n%s", prompt)
	}
	if !strings.Contains(prompt, "no readable text was found") {
		t.Errorf("empty-document note missing:\n%s", prompt)
	}
}
