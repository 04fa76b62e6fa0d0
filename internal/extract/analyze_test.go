package extract

import (
	"strings"
	"testing"

	"datasoph/internal/models"
)

func TestAnalyzeContentTypes(t *testing.T) {
	cases := []struct {
		name string
		text string
		want models.ContentType
	}{
		{"financial", "Invoice total amount due: $450.00 payable within thirty days of receipt date shown above", models.ContentFinancial},
		{"analytical", "This quarterly report presents the data analysis of regional performance trends over time", models.ContentAnalytical},
		{"short", "Just a quick note", models.ContentShortText},
		{"document", strings.Repeat("plain narrative sentence without keywords here ", 10), models.ContentDocument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := analyzeContent(tc.text)
			if res.ContentType != tc.want {
				t.Errorf("content type = %s, want %s", res.ContentType, tc.want)
			}
			if res.WordCount != len(strings.Fields(tc.text)) {
				t.Errorf("word count = %d", res.WordCount)
			}
			if res.CharCount != len(tc.text) {
				t.Errorf("char count = %d", res.CharCount)
			}
		})
	}
}

func TestAnalyzeContentEmpty(t *testing.T) {
	res := analyzeContent("")
	if res.ContentType != models.ContentEmpty {
		t.Errorf("content type = %s, want empty", res.ContentType)
	}
	if res.Summary != "No text content found" {
		t.Errorf("summary = %q", res.Summary)
	}
	if !res.Empty() {
		t.Error("Empty() = false")
	}
}

func TestAnalyzeContentSummaryPreview(t *testing.T) {
	long := strings.Repeat("lorem ipsum dolor sit amet ", 20)
	res := analyzeContent(long)
	if !strings.Contains(res.Summary, "Preview:") {
		t.Errorf("long text summary lacks preview: %q", res.Summary)
	}
	if !strings.Contains(res.Summary, "...") {
		t.Error("preview not truncated")
	}

	short := "five words only right here"
	res = analyzeContent(short)
	if !strings.Contains(res.Summary, "Full text: '"+short+"'") {
		t.Errorf("short text summary = %q", res.Summary)
	}
}
