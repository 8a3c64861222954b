package export

import (
	"bytes"
	"strings"

	"github.com/phpdave11/gofpdf"
)

// PDF renders the same content as the Word export. Markdown headings are
// set in bold and table rows in a fixed-width font; everything else is
// wrapped body text. The core fonts only cover cp1252, so other runes are
// substituted by the translator.
func PDF(text string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(DocumentTitle, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.MultiCell(0, 10, tr(DocumentTitle), "", "", false)
	pdf.Ln(4)

	for _, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			pdf.Ln(3)
		case strings.HasPrefix(trimmed, "#"):
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			size := 16.0 - float64(level)
			if size < 11 {
				size = 11
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.MultiCell(0, 8, tr(strings.TrimSpace(trimmed[level:])), "", "", false)
		case strings.HasPrefix(trimmed, "|"):
			pdf.SetFont("Courier", "", 8)
			pdf.MultiCell(0, 4.5, tr(line), "", "", false)
		default:
			pdf.SetFont("Helvetica", "", 11)
			pdf.MultiCell(0, 6, tr(stripEmphasis(line)), "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var emphasisReplacer = strings.NewReplacer("**", "", "__", "")

func stripEmphasis(s string) string { return emphasisReplacer.Replace(s) }
