package models

// ColumnStats holds descriptive statistics for one numeric column. Fields are
// pointers so that non-finite values serialize as JSON null instead of NaN.
type ColumnStats struct {
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Std   *float64 `json:"std"`
	Min   *float64 `json:"min"`
	Q25   *float64 `json:"25%"`
	Q50   *float64 `json:"50%"`
	Q75   *float64 `json:"75%"`
	Max   *float64 `json:"max"`
}

// TabularResult summarizes a loaded table.
type TabularResult struct {
	Rows      int                    `json:"rows"`
	Columns   []string               `json:"columns"`
	Dtypes    map[string]string      `json:"dtypes"`
	Missing   map[string]int         `json:"missing"`
	Summary   map[string]ColumnStats `json:"summary"`
	ChartPath string                 `json:"chart,omitempty"`
}

// Shape returns (rows, cols) the way the upload response reports it.
func (t *TabularResult) Shape() [2]int {
	return [2]int{t.Rows, len(t.Columns)}
}

// ContentType is the coarse classification of extracted document text.
type ContentType string

const (
	ContentFinancial  ContentType = "financial"
	ContentAnalytical ContentType = "analytical"
	ContentShortText  ContentType = "short_text"
	ContentDocument   ContentType = "document"
	ContentEmpty      ContentType = "empty"
)

// TextResult is the outcome of the text-extraction fallback chain.
//
// Confidence carries two unrelated scales behind one field: for tesseract_ocr
// it is the mean per-token recognizer score, for pdf_* and direct_read* it is
// a length-saturating heuristic (min(100, chars/10)). The Method tag tells
// them apart; do not unify the scales.
type TextResult struct {
	Text        string      `json:"text"`
	Method      string      `json:"method"`
	Confidence  float64     `json:"confidence"`
	WordCount   int         `json:"word_count"`
	CharCount   int         `json:"char_count"`
	ContentType ContentType `json:"content_type"`
	Summary     string      `json:"summary"`
}

// Empty reports whether extraction succeeded but found nothing readable.
func (t *TextResult) Empty() bool {
	return len(t.Text) == 0
}

// ExtractionResult is a tagged union: exactly one of Tabular or Text is set.
type ExtractionResult struct {
	Tabular *TabularResult `json:"tabular,omitempty"`
	Text    *TextResult    `json:"text,omitempty"`
}
