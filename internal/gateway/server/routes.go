package server

import (
	"net/http"

	"go.uber.org/zap"

	"tripplanner/internal/gateway/handler"
	"tripplanner/internal/gateway/middleware"
)

func NewMux(h *handler.Handler, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)

	return middleware.Chain(mux,
		middleware.Recover(log),
		middleware.AccessLog(log),
		middleware.CORS,
	)
}
