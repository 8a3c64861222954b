package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gomutex/godocx"
)

// Docx builds a Word document: a Title-styled heading followed by one
// paragraph per line of text.
func Docx(text string) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("export: new docx: %w", err)
	}
	if _, err := doc.AddHeading(DocumentTitle, 0); err != nil {
		return nil, fmt.Errorf("export: docx title: %w", err)
	}
	for _, line := range splitLines(text) {
		doc.AddParagraph(line)
	}
	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: write docx: %w", err)
	}
	return buf.Bytes(), nil
}

// splitLines splits on \n, \r\n and \r without a trailing empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
