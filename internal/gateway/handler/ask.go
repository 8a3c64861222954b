package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tripplanner/internal/gateway/ui"
	"tripplanner/internal/session"
)

// HandleAsk answers a follow-up question about the session's plan.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.FromRequest(w, r)
	if err := r.ParseForm(); err != nil {
		h.renderPage(w, sess, http.StatusBadRequest, ui.MsgAskFailed+err.Error(), "")
		return
	}
	question := strings.TrimSpace(r.PostForm.Get("question"))
	if _, _, err := h.answer(r.Context(), sess, question); err != nil {
		status := http.StatusBadGateway
		msg := ui.MsgAskFailed + err.Error()
		switch {
		case errors.Is(err, session.ErrNoPlan):
			status, msg = http.StatusBadRequest, ui.MsgPlanFirst
		case errors.Is(err, session.ErrPlanChanged):
			status, msg = http.StatusConflict, ui.MsgPlanChanged
		case question == "":
			status = http.StatusBadRequest
		}
		h.renderPage(w, sess, status, msg, "")
		return
	}
	http.Redirect(w, r, "/#chat", http.StatusSeeOther)
}

// answer runs the Q&A crew against the session's itinerary and records
// the exchange. It returns the answer and its 1-based index in the history.
// An answer about a plan replaced mid-question is dropped with
// session.ErrPlanChanged.
func (h *Handler) answer(ctx context.Context, sess *session.Session, question string) (string, int, error) {
	itinerary, rev, err := sess.Itinerary()
	if err != nil {
		return "", 0, err
	}
	ctx, cancel := withTimeout(ctx, h.AskTimeout)
	defer cancel()

	answer, err := h.planner.Ask(ctx, itinerary, question)
	if err != nil {
		h.log.Warn("question failed", zap.String("session", sess.ID), zap.Error(err))
		return "", 0, err
	}
	idx, err := sess.AppendQA(rev, question, answer)
	if err != nil {
		h.log.Info("dropping answer for replaced plan", zap.String("session", sess.ID))
		return "", 0, err
	}
	return answer, idx, nil
}
