package classify

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	analysis "github.com/zhouzirui/callpulse/backend/internal/analysis/emotion"
	"github.com/zhouzirui/callpulse/backend/pkg/utils"
)

// Analyzer 提供本地与远程两种情绪分析。
type Analyzer interface {
	Local(text string) analysis.Result
	Analyze(ctx context.Context, text string) analysis.Result
}

// Handler 单句情绪分析的HTTP处理器
type Handler struct {
	analyzer Analyzer
	filler   *analysis.Filler
}

// New 创建分析处理器
func New(analyzer Analyzer, filler *analysis.Filler) *Handler {
	if filler == nil {
		filler = analysis.NewFiller(nil)
	}
	return &Handler{analyzer: analyzer, filler: filler}
}

// RegisterRoutes 注册分析相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/classify", h.handleClassify)
	r.Get("/filler", h.handleFiller)
}

// handleClassify 分析一句话。?remote=true 时优先使用大模型结果。
func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text *string `json:"text"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	text := ""
	if payload.Text != nil {
		text = *payload.Text
	}

	remote, _ := strconv.ParseBool(r.URL.Query().Get("remote"))
	if remote {
		utils.RespondJSON(w, http.StatusOK, h.analyzer.Analyze(r.Context(), text))
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.analyzer.Local(text))
}

// handleFiller 返回一句寒暄、鼓励或针对情绪的回应。
func (h *Handler) handleFiller(w http.ResponseWriter, r *http.Request) {
	kind := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("kind")))

	var text string
	switch kind {
	case "", "greeting":
		kind = "greeting"
		text = h.filler.Greeting()
	case "compliment":
		text = h.filler.Compliment()
	case "acknowledge":
		label, ok := analysis.ParseLabel(r.URL.Query().Get("emotion"))
		if !ok {
			label = analysis.Neutral
		}
		text = h.filler.Acknowledge(label)
	default:
		utils.RespondError(w, http.StatusBadRequest, "unsupported filler kind: "+kind)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"kind": kind, "text": text})
}
