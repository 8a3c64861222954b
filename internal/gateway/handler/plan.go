package handler

import (
	"net/http"

	"go.uber.org/zap"

	"tripplanner/internal/export"
	"tripplanner/internal/gateway/ui"
)

// HandlePlan runs the planning pipeline for the submitted form. On success
// the plan replaces the session's previous one and the chat is cleared.
func (h *Handler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.FromRequest(w, r)
	in, err := parseTripForm(r)
	if err != nil {
		h.renderPage(w, sess, http.StatusBadRequest, ui.MsgPlanFailed+err.Error(), "")
		return
	}
	sess.SetInputs(in)
	if err := in.Validate(); err != nil {
		h.renderPage(w, sess, http.StatusBadRequest, ui.MsgPlanFailed+err.Error(), "")
		return
	}
	if !sess.TryBegin() {
		h.renderPage(w, sess, http.StatusConflict, ui.MsgBusy, "")
		return
	}
	defer sess.End()

	ctx, cancel := withTimeout(r.Context(), h.PlanTimeout)
	defer cancel()

	log := h.log.With(zap.String("session", sess.ID))
	result, err := h.planner.Plan(ctx, in)
	if err != nil {
		log.Error("trip planning failed", zap.Error(err))
		h.renderPage(w, sess, http.StatusBadGateway, ui.MsgPlanFailed+err.Error(), "")
		return
	}

	// The archive is a convenience; a failed write does not fail the plan.
	var planID string
	if h.plans != nil {
		if planID, err = h.plans.Save(ctx, in, result); err != nil {
			log.Warn("archive plan failed", zap.Error(err))
			planID = ""
		}
	}
	sess.SetPlan(result, export.FullTripText(result), planID, h.sessions.Now())
	log.Info("trip planned", zap.String("plan_id", planID), zap.Int("sections", result.Len()))
	http.Redirect(w, r, "/?planned=1", http.StatusSeeOther)
}
