package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDocx(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx: %v", err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

const docxWithTable = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second paragraph.</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Value</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>alpha</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>1</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`

func TestExtractDocx(t *testing.T) {
	path := writeDocx(t, docxWithTable)
	text, method, err := extractDocx(path)
	if err != nil {
		t.Fatalf("extractDocx: %v", err)
	}
	if method != "docx_xml" {
		t.Errorf("method = %s, want docx_xml", method)
	}
	if !strings.Contains(text, "First paragraph.\n\nSecond paragraph.") {
		t.Errorf("paragraphs wrong:\n%s", text)
	}
	if !strings.Contains(text, "--- TABLES ---\nName | Value\nalpha | 1") {
		t.Errorf("table section wrong:\n%s", text)
	}
}

func TestExtractDocxEmpty(t *testing.T) {
	empty := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body><w:p></w:p></w:body>
</w:document>`
	path := writeDocx(t, empty)
	text, method, err := extractDocx(path)
	if err != nil {
		t.Fatalf("extractDocx: %v", err)
	}
	if method != "docx_no_text" || text != "" {
		t.Errorf("got (%q, %s), want empty with docx_no_text", text, method)
	}
}

func TestExtractDocxMissingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	w, _ := zw.Create("word/styles.xml")
	_, _ = w.Write([]byte("<styles/>"))
	_ = zw.Close()
	_ = f.Close()

	if _, _, err := extractDocx(path); err == nil {
		t.Error("expected error for docx without word/document.xml")
	}
}
