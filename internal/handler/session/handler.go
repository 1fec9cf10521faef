package session

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	model "github.com/zhouzirui/callpulse/backend/internal/model/session"
	sessionservice "github.com/zhouzirui/callpulse/backend/internal/service/session"
	"github.com/zhouzirui/callpulse/backend/internal/service/transcript"
	"github.com/zhouzirui/callpulse/backend/pkg/utils"
)

const heartbeatInterval = 15 * time.Second

// TranscriptReader 读取已归档的会话记录。
type TranscriptReader interface {
	GetSession(ctx context.Context, sessionID string) (model.Session, error)
	ListSessions(ctx context.Context) []model.Session
	LoadTranscript(ctx context.Context, sessionID string) ([]model.Entry, error)
}

// Handler 实时会话的HTTP处理器
type Handler struct {
	controller  *sessionservice.Controller
	transcripts TranscriptReader
}

// New 创建会话处理器
func New(controller *sessionservice.Controller, transcripts TranscriptReader) *Handler {
	return &Handler{controller: controller, transcripts: transcripts}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.handleStart)
		r.Get("/", h.handleList)
		r.Get("/ws", h.handleWebSocket)

		r.Route("/current", func(r chi.Router) {
			r.Get("/", h.handleSnapshot)
			r.Delete("/", h.handleStop)
			r.Post("/fragments", h.handleFragment)
			r.Get("/events", h.handleEvents)
		})

		r.Get("/{sessionID}/transcript", h.handleTranscript)
	})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	snap, err := h.controller.Start(r.Context())
	if err != nil {
		respondControllerError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, snap)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.controller.Snapshot()
	if err != nil {
		respondControllerError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleStop(w http.ResponseWriter, r *http.Request) {
	snap, err := h.controller.Stop(r.Context())
	if err != nil {
		respondControllerError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, snap)
}

// handleFragment 接收一段识别文本，立即返回本地分析结果。
func (h *Handler) handleFragment(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Speaker string  `json:"speaker"`
		Text    *string `json:"text"`
		IsFinal bool    `json:"isFinal"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	frag := sessionservice.Fragment{Speaker: payload.Speaker, Final: payload.IsFinal}
	if payload.Text != nil {
		frag.Text = *payload.Text
	}

	result, err := h.controller.Submit(r.Context(), frag)
	if err != nil {
		respondControllerError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.transcripts.ListSessions(r.Context()))
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := h.transcripts.GetSession(r.Context(), sessionID)
	if err != nil {
		respondControllerError(w, err)
		return
	}
	entries, err := h.transcripts.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		respondControllerError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"session": sess,
		"entries": entries,
	})
}

// handleEvents 以 SSE 推送当前会话的状态变化。
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	snap, err := h.controller.Snapshot()
	if err != nil {
		respondControllerError(w, err)
		return
	}

	updates, unsubscribe := h.controller.Subscribe()
	defer unsubscribe()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	log.Printf("[sse] opening event stream for session=%s", snap.SessionID)
	if err := utils.SendSSEEvent(w, flusher, "snapshot", snap); err != nil {
		return
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[sse] closing event stream for session=%s", snap.SessionID)
			return
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				return
			}
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, string(update.Kind), update); err != nil {
				return
			}
			if update.Kind == sessionservice.UpdateStopped && update.SessionID == snap.SessionID {
				log.Printf("[sse] session stopped, closing stream session=%s", snap.SessionID)
				return
			}
		}
	}
}

func respondControllerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sessionservice.ErrSessionActive):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, sessionservice.ErrNoSession), errors.Is(err, transcript.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("[session] request failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
