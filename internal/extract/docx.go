package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDocx reads word/document.xml out of the docx archive and collects
// paragraph text followed by a table section, the way word-processor text is
// presented to the chat context: paragraphs joined by blank lines, table rows
// as " | "-joined cell texts under a "--- TABLES ---" marker.
func extractDocx(path string) (string, string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", "", fmt.Errorf("%w: open docx: %v", ErrLoadFailed, err)
	}
	defer zr.Close()

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return "", "", fmt.Errorf("%w: open document.xml: %v", ErrLoadFailed, err)
			}
			break
		}
	}
	if doc == nil {
		return "", "", fmt.Errorf("%w: docx has no word/document.xml", ErrLoadFailed)
	}
	defer doc.Close()

	paragraphs, tableRows, err := parseDocumentXML(doc)
	if err != nil {
		return "", "", fmt.Errorf("%w: parse document.xml: %v", ErrLoadFailed, err)
	}

	var parts []string
	if len(paragraphs) > 0 {
		parts = append(parts, strings.Join(paragraphs, "\n\n"))
	}
	if len(tableRows) > 0 {
		parts = append(parts, "--- TABLES ---\n"+strings.Join(tableRows, "\n"))
	}
	text := strings.Join(parts, "\n\n")
	if strings.TrimSpace(text) == "" {
		return "", "docx_no_text", nil
	}
	return text, "docx_xml", nil
}

// parseDocumentXML walks the WordprocessingML stream. Paragraphs inside table
// cells belong to the cell, not the body.
func parseDocumentXML(r io.Reader) (paragraphs, tableRows []string, err error) {
	dec := xml.NewDecoder(r)

	var (
		tblDepth int
		para     strings.Builder
		cell     strings.Builder
		rowCells []string
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "t":
				var text string
				if err := dec.DecodeElement(&text, &t); err != nil {
					return nil, nil, err
				}
				if tblDepth > 0 {
					cell.WriteString(text)
				} else {
					para.WriteString(text)
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth--
			case "p":
				if tblDepth == 0 {
					if s := strings.TrimSpace(para.String()); s != "" {
						paragraphs = append(paragraphs, s)
					}
					para.Reset()
				} else {
					cell.WriteString(" ")
				}
			case "tc":
				if s := strings.TrimSpace(cell.String()); s != "" {
					rowCells = append(rowCells, s)
				}
				cell.Reset()
			case "tr":
				if len(rowCells) > 0 {
					tableRows = append(tableRows, strings.Join(rowCells, " | "))
				}
				rowCells = nil
			}
		}
	}
	return paragraphs, tableRows, nil
}
