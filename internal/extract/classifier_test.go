package extract

import (
	"errors"
	"testing"

	"datasoph/internal/models"
)

func TestClassifyRouting(t *testing.T) {
	cases := []struct {
		path string
		kind models.ProcessKind
		ft   models.FileType
	}{
		{"sales.csv", models.ProcessTabular, models.FileTypeTabular},
		{"report.XLSX", models.ProcessTabular, models.FileTypeTabular},
		{"rows.json", models.ProcessTabular, models.FileTypeTabular},
		{"doc.pdf", models.ProcessText, models.FileTypePDF},
		{"scan.PNG", models.ProcessText, models.FileTypeImage},
		{"photo.jpeg", models.ProcessText, models.FileTypeImage},
		{"letter.docx", models.ProcessText, models.FileTypeDocx},
		{"notes.txt", models.ProcessText, models.FileTypeText},
		{"readme.md", models.ProcessText, models.FileTypeText},
	}
	for _, tc := range cases {
		kind, ft, err := Classify(tc.path)
		if err != nil {
			t.Fatalf("Classify(%s): %v", tc.path, err)
		}
		if kind != tc.kind || ft != tc.ft {
			t.Errorf("Classify(%s) = (%s, %s), want (%s, %s)", tc.path, kind, ft, tc.kind, tc.ft)
		}
	}
}

func TestClassifyUnsupported(t *testing.T) {
	for _, path := range []string{"binary.exe", "archive.zip", "noext"} {
		_, _, err := Classify(path)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Classify(%s) err = %v, want ErrUnsupportedFormat", path, err)
		}
	}
	if Supported("weird.bin") {
		t.Error("Supported(weird.bin) = true")
	}
	if !Supported("data.csv") {
		t.Error("Supported(data.csv) = false")
	}
}
