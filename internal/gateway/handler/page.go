package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tripplanner/internal/gateway/ui"
	"tripplanner/internal/session"
	"tripplanner/internal/trip"
)

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.FromRequest(w, r)
	var flash string
	if r.URL.Query().Get("planned") == "1" && sess.Snapshot().HasPlan() {
		flash = ui.MsgPlanSuccess
	}
	h.renderPage(w, sess, http.StatusOK, "", flash)
}

// renderPage writes the page for the session's current state with an
// optional error or success message.
func (h *Handler) renderPage(w http.ResponseWriter, sess *session.Session, status int, errMsg, success string) {
	v := sess.Snapshot()
	data := ui.PageData{
		Inputs:  v.Inputs,
		PlanID:  v.PlanID,
		Error:   errMsg,
		Success: success,
	}
	var err error
	if v.HasPlan() {
		data.Timestamp = v.Timestamp.Format("2006-01-02 15:04:05")
		if data.Sections, err = h.pages.Sections(v.Result); err == nil {
			data.Chat, err = h.pages.Chat(v.Chat)
		}
	}
	var buf bytes.Buffer
	if err == nil {
		err = h.pages.Page(&buf, data)
	}
	if err != nil {
		h.log.Error("render page failed", zap.String("session", sess.ID), zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// parseTripForm reads the planner form. Duration defaults when absent.
func parseTripForm(r *http.Request) (trip.TripInputs, error) {
	if err := r.ParseForm(); err != nil {
		return trip.TripInputs{}, fmt.Errorf("invalid form: %w", err)
	}
	in := trip.TripInputs{
		TravelType: strings.TrimSpace(r.PostForm.Get("travel_type")),
		Season:     strings.TrimSpace(r.PostForm.Get("season")),
		Budget:     strings.TrimSpace(r.PostForm.Get("budget")),
		Duration:   trip.DefaultDuration,
	}
	for _, v := range r.PostForm["interests"] {
		if v = strings.TrimSpace(v); v != "" {
			in.Interests = append(in.Interests, v)
		}
	}
	if raw := strings.TrimSpace(r.PostForm.Get("duration")); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			return in, fmt.Errorf("invalid duration %q", raw)
		}
		in.Duration = d
	}
	return in, nil
}
