package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	analysis "github.com/zhouzirui/callpulse/backend/internal/analysis/emotion"
	"github.com/zhouzirui/callpulse/backend/internal/handler/classify"
	"github.com/zhouzirui/callpulse/backend/internal/handler/session"
	middlewarePkg "github.com/zhouzirui/callpulse/backend/internal/middleware"
	emotionService "github.com/zhouzirui/callpulse/backend/internal/service/emotion"
	sessionService "github.com/zhouzirui/callpulse/backend/internal/service/session"
	"github.com/zhouzirui/callpulse/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(emotionSvc *emotionService.Service, controller *sessionService.Controller, transcripts session.TranscriptReader, filler *analysis.Filler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	classifyHandler := classify.New(emotionSvc, filler)
	sessionHandler := session.New(controller, transcripts)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status":  "ok",
				"backend": emotionSvc.Backend(),
			})
		})

		classifyHandler.RegisterRoutes(api)
		sessionHandler.RegisterRoutes(api)
	})

	return r
}
