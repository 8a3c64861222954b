package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tripplanner/internal/gateway/service/plan"
	"tripplanner/internal/gateway/ui"
	"tripplanner/internal/session"
	"tripplanner/internal/trip"
)

// Planner is the trip pipeline the handlers drive.
type Planner interface {
	Plan(ctx context.Context, in trip.TripInputs) (trip.TripResult, error)
	Ask(ctx context.Context, itinerary, question string) (string, error)
}

// Handler serves the planner page, its form actions, downloads, the plan
// archive and the chat websocket.
type Handler struct {
	planner  Planner
	sessions *session.Store
	plans    *plan.Service
	pages    *ui.Renderer
	log      *zap.Logger

	// PlanTimeout bounds one pipeline run; zero means no limit.
	PlanTimeout time.Duration
	// AskTimeout bounds one question; zero means no limit.
	AskTimeout time.Duration
	// ChatPongWait is how long a chat websocket may stay silent before it
	// is dropped. Pings go out at nine tenths of it.
	ChatPongWait time.Duration
}

func New(planner Planner, sessions *session.Store, plans *plan.Service, pages *ui.Renderer, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		planner:      planner,
		sessions:     sessions,
		plans:        plans,
		pages:        pages,
		log:          log,
		PlanTimeout:  15 * time.Minute,
		AskTimeout:   3 * time.Minute,
		ChatPongWait: 60 * time.Second,
	}
}

// Register adds every route to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.HandleIndex)
	mux.HandleFunc("POST /plan", h.HandlePlan)
	mux.HandleFunc("POST /ask", h.HandleAsk)
	mux.HandleFunc("GET /download/{file}", h.HandleDownloadItinerary)
	mux.HandleFunc("GET /download/chat.md", h.HandleDownloadChat)
	mux.HandleFunc("GET /plans/{id}", h.HandleListPlanFiles)
	mux.HandleFunc("GET /plans/{id}/{file}", h.HandlePlanFile)
	mux.HandleFunc("GET /ws/chat", h.HandleChatWS)
	mux.HandleFunc("GET /healthz", h.HandleHealth)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
