// Package export renders a trip plan and its Q&A log into downloadable
// documents.
package export

import (
	"fmt"
	"strings"
	"time"

	"tripplanner/internal/trip"
)

// DocumentTitle heads the Word and PDF exports.
const DocumentTitle = "Your Complete Trip Plan"

// TimestampLayout formats the session timestamp used in file names.
const TimestampLayout = "20060102_150405"

type Format string

const (
	FormatMarkdown Format = "md"
	FormatDocx     Format = "docx"
	FormatPDF      Format = "pdf"
)

// ParseFormat accepts a file extension with or without the leading dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case FormatMarkdown, FormatDocx, FormatPDF:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("export: unsupported format %q", s)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatDocx:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// FullTripText joins the sections as "## Title\n\ncontent", separated by a
// blank line.
func FullTripText(r trip.TripResult) string {
	sections := r.Sections()
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, "## "+s.Title+"\n\n"+s.Content)
	}
	return strings.Join(parts, "\n\n")
}

// Render produces the itinerary document for text in the given format.
func Render(f Format, text string) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return []byte(text), nil
	case FormatDocx:
		return Docx(text)
	case FormatPDF:
		return PDF(text)
	default:
		return nil, fmt.Errorf("export: unsupported format %q", f)
	}
}

// Timestamp formats t for file names.
func Timestamp(t time.Time) string { return t.Format(TimestampLayout) }

// ItineraryFileName is Trip_Itinerary_<ts>.<ext>.
func ItineraryFileName(ts time.Time, f Format) string {
	return fmt.Sprintf("Trip_Itinerary_%s.%s", Timestamp(ts), f)
}

// ChatFileName is Trip_QA_Chat_<ts>.md.
func ChatFileName(ts time.Time) string {
	return fmt.Sprintf("Trip_QA_Chat_%s.md", Timestamp(ts))
}
