package textsource

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"
)

const docxBody = "word/document.xml"

// readDOCX extracts paragraph and table text from a WordprocessingML package.
func readDOCX(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	if err := checkDOCXBody(f, info.Size(), maxBytes); err != nil {
		return "", err
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	text := documentText(doc.Document.Body.Items)
	if int64(len(text)) > maxBytes {
		return "", fmt.Errorf("extracted text exceeds %d bytes", maxBytes)
	}
	return text, nil
}

// checkDOCXBody refuses packages without a document part or whose part
// expands beyond maxBytes.
func checkDOCXBody(f *os.File, size, maxBytes int64) error {
	zr, err := zip.NewReader(f, size)
	if err != nil {
		return fmt.Errorf("open docx: %w", err)
	}
	for _, entry := range zr.File {
		if entry.Name != docxBody {
			continue
		}
		if entry.UncompressedSize64 > uint64(maxBytes) {
			return fmt.Errorf("%s expands beyond %d bytes", docxBody, maxBytes)
		}
		return nil
	}
	return errors.New("docx has no " + docxBody)
}

// documentText writes one line per paragraph. Table cells are flattened in
// reading order.
func documentText(items []interface{}) string {
	var b strings.Builder
	for _, item := range items {
		switch it := item.(type) {
		case *docx.Paragraph:
			b.WriteString(it.String())
			b.WriteByte('\n')
		case *docx.Table:
			for _, row := range it.TableRows {
				for _, cell := range row.TableCells {
					for _, p := range cell.Paragraphs {
						b.WriteString(p.String())
						b.WriteByte('\n')
					}
				}
			}
		}
	}
	return b.String()
}
