package extract

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestExtractPlainTextUTF8(t *testing.T) {
	path := writeTemp(t, "notes.txt", "hello çalışma dünya")
	text, method, err := extractPlainText(path)
	if err != nil {
		t.Fatalf("extractPlainText: %v", err)
	}
	if method != "direct_read" {
		t.Errorf("method = %s, want direct_read", method)
	}
	if text != "hello çalışma dünya" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractPlainTextLatin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte("café résumé"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "legacy.txt")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	text, method, err := extractPlainText(path)
	if err != nil {
		t.Fatalf("extractPlainText: %v", err)
	}
	if method != "direct_read_latin1" {
		t.Errorf("method = %s, want direct_read_latin1", method)
	}
	if text != "café résumé" {
		t.Errorf("text = %q", text)
	}
}
