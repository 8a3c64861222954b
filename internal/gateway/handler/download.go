package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"tripplanner/internal/export"
	"tripplanner/internal/gateway/service/plan"
	"tripplanner/internal/session"
	"tripplanner/internal/trip"
)

// HandleDownloadItinerary serves the session's plan as itinerary.md,
// itinerary.docx or itinerary.pdf.
func (h *Handler) HandleDownloadItinerary(w http.ResponseWriter, r *http.Request) {
	ext, ok := strings.CutPrefix(r.PathValue("file"), "itinerary.")
	if !ok {
		http.NotFound(w, r)
		return
	}
	format, err := export.ParseFormat(ext)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	sess, ok := h.sessions.Lookup(r)
	if !ok {
		http.Error(w, session.ErrNoPlan.Error(), http.StatusNotFound)
		return
	}
	v := sess.Snapshot()
	if !v.HasPlan() {
		http.Error(w, session.ErrNoPlan.Error(), http.StatusNotFound)
		return
	}
	data, err := export.Render(format, v.FullText)
	if err != nil {
		h.log.Error("export failed", zap.String("format", string(format)), zap.Error(err))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	writeAttachment(w, export.ItineraryFileName(v.Timestamp, format), format.ContentType(), data)
}

// HandleDownloadChat serves the session's Q&A log as markdown.
func (h *Handler) HandleDownloadChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Lookup(r)
	if !ok {
		http.Error(w, "no chat history", http.StatusNotFound)
		return
	}
	v := sess.Snapshot()
	if len(v.Chat) == 0 {
		http.Error(w, "no chat history", http.StatusNotFound)
		return
	}
	writeAttachment(w, export.ChatFileName(v.Timestamp), export.FormatMarkdown.ContentType(), []byte(export.ChatLog(v.Chat)))
}

type planSummary struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Inputs    trip.TripInputs `json:"inputs"`
	Sections  []string        `json:"sections"`
	Files     []string        `json:"files"`
}

// HandleListPlanFiles describes an archived plan as JSON: when it was made,
// the form inputs, its section titles and the stored files.
func (h *Handler) HandleListPlanFiles(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := h.plans.Load(r.Context(), id)
	if err != nil {
		h.archiveError(w, r, err)
		return
	}
	names, err := h.plans.List(r.Context(), id)
	if err != nil {
		h.archiveError(w, r, err)
		return
	}
	sum := planSummary{ID: id, CreatedAt: rec.CreatedAt, Inputs: rec.Inputs, Sections: []string{}, Files: names}
	for _, key := range rec.Result.Keys() {
		sum.Sections = append(sum.Sections, trip.SectionTitle(key))
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandlePlanFile serves one archived file, redirecting when the store
// provides a direct URL.
func (h *Handler) HandlePlanFile(w http.ResponseWriter, r *http.Request) {
	f, err := h.plans.Open(r.Context(), r.PathValue("id"), r.PathValue("file"))
	if err != nil {
		h.archiveError(w, r, err)
		return
	}
	if f.URL != "" {
		http.Redirect(w, r, f.URL, http.StatusFound)
		return
	}
	writeAttachment(w, f.Name, f.ContentType, f.Content)
}

func (h *Handler) archiveError(w http.ResponseWriter, r *http.Request, err error) {
	if plan.IsNotFound(err) {
		http.NotFound(w, r)
		return
	}
	status := http.StatusInternalServerError
	if errors.Is(err, plan.ErrInvalidKey) {
		status = http.StatusBadRequest
	}
	h.log.Warn("plan archive request failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, err.Error(), status)
}

func writeAttachment(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	_, _ = w.Write(data)
}
