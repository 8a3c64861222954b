// Package ui renders the planner's single HTML page.
package ui

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"slices"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"tripplanner/internal/export"
	"tripplanner/internal/trip"
)

//go:embed templates/*.html
var templateFS embed.FS

// Messages shown on the page.
const (
	MsgPlanFirst   = "Generate your travel plan first to ask questions about it."
	MsgPlanSuccess = "Trip planned successfully!"
	MsgPlanFailed  = "Trip planning failed: "
	MsgAskFailed   = "Could not get an answer: "
	MsgBusy        = "A travel plan is already being generated for this session."
	MsgPlanChanged = "Your travel plan changed while this question was being answered. Please ask again."
	MsgAskBusy     = "Still answering your previous question."
)

// SectionView is one rendered plan section.
type SectionView struct {
	Title string
	HTML  template.HTML
}

// ChatView is one rendered Q&A exchange.
type ChatView struct {
	Index      int
	Question   string
	AnswerHTML template.HTML
}

// PageData feeds the page template.
type PageData struct {
	Inputs    trip.TripInputs
	Sections  []SectionView
	Chat      []ChatView
	PlanID    string
	Timestamp string
	Error     string
	Success   string
}

func (p PageData) HasPlan() bool { return len(p.Sections) > 0 }

// Renderer holds the parsed template and the markdown converter.
type Renderer struct {
	page *template.Template
	md   goldmark.Markdown
}

func NewRenderer() (*Renderer, error) {
	page, err := template.New("page.html").Funcs(template.FuncMap{
		"travelTypes":  func() []string { return trip.TravelTypes },
		"interests":    func() []string { return trip.Interests },
		"seasons":      func() []string { return trip.Seasons },
		"budgets":      func() []string { return trip.Budgets },
		"minDuration":  func() int { return trip.MinDuration },
		"maxDuration":  func() int { return trip.MaxDuration },
		"has":          func(list []string, v string) bool { return slices.Contains(list, v) },
		"msgPlanFirst": func() string { return MsgPlanFirst },
	}).ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{
		page: page,
		// Raw HTML in model output is escaped, not passed through.
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}, nil
}

// Markdown converts model output to safe HTML.
func (r *Renderer) Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Sections renders every plan section.
func (r *Renderer) Sections(result trip.TripResult) ([]SectionView, error) {
	var out []SectionView
	for _, s := range result.Sections() {
		h, err := r.Markdown(s.Content)
		if err != nil {
			return nil, err
		}
		out = append(out, SectionView{Title: s.Title, HTML: h})
	}
	return out, nil
}

// Chat renders the Q&A history, numbered from 1.
func (r *Renderer) Chat(history []export.QA) ([]ChatView, error) {
	var out []ChatView
	for i, qa := range history {
		h, err := r.Markdown(qa.Answer)
		if err != nil {
			return nil, err
		}
		out = append(out, ChatView{Index: i + 1, Question: qa.Question, AnswerHTML: h})
	}
	return out, nil
}

func (r *Renderer) Page(w io.Writer, data PageData) error {
	return r.page.Execute(w, data)
}
