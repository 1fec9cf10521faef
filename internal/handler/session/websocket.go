package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	sessionservice "github.com/zhouzirui/callpulse/backend/internal/service/session"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// FragmentMessage 识别端推送的文本片段
type FragmentMessage struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// wsConn 串行化对同一连接的写操作。
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) writeJSON(msg outgoingMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(msg)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

// connectionState 记录该连接启动的会话，连接断开时负责收尾。
type connectionState struct {
	sessionID string
}

// handleWebSocket 处理实时会话 WebSocket 连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	conn := &wsConn{conn: raw}
	defer raw.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	state := &connectionState{}
	defer h.closeOwnedSession(state)

	updates, unsubscribe := h.controller.Subscribe()
	defer unsubscribe()

	raw.SetReadDeadline(time.Now().Add(readTimeout))
	raw.SetPongHandler(func(string) error {
		raw.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.pingLoop(ctx, conn)
	go h.forwardUpdates(ctx, conn, updates)

	log.Printf("[websocket] new connection from %s", r.RemoteAddr)
	h.sendResult(conn, "", map[string]any{"type": "connected"})

	for {
		var msg inboundMessage
		if err := raw.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		raw.SetReadDeadline(time.Now().Add(readTimeout))
		h.handleMessage(ctx, conn, state, &msg)
	}
}

func (h *Handler) handleMessage(ctx context.Context, conn *wsConn, state *connectionState, msg *inboundMessage) {
	switch msg.Type {
	case "start":
		h.handleStartMessage(ctx, conn, state)
	case "fragment":
		h.handleFragmentMessage(ctx, conn, state, msg)
	case "stop":
		h.handleStopMessage(ctx, conn, state)
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
	}
}

func (h *Handler) handleStartMessage(ctx context.Context, conn *wsConn, state *connectionState) {
	snap, err := h.controller.Start(ctx)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}
	state.sessionID = snap.SessionID
	h.sendResult(conn, snap.SessionID, map[string]any{"type": "snapshot", "snapshot": snap})
}

func (h *Handler) handleFragmentMessage(ctx context.Context, conn *wsConn, state *connectionState, msg *inboundMessage) {
	var frag FragmentMessage
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &frag); err != nil {
			h.sendError(conn, "invalid fragment payload")
			return
		}
	}

	result, err := h.controller.Submit(ctx, sessionservice.Fragment{
		Speaker: frag.Speaker,
		Text:    frag.Text,
		Final:   frag.IsFinal,
	})
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}
	h.sendResult(conn, msg.SessionID, map[string]any{"type": "local", "result": result})
}

func (h *Handler) handleStopMessage(ctx context.Context, conn *wsConn, state *connectionState) {
	snap, err := h.controller.Stop(ctx)
	if err != nil {
		h.sendError(conn, err.Error())
		return
	}
	state.sessionID = ""
	h.sendResult(conn, snap.SessionID, map[string]any{"type": "snapshot", "snapshot": snap})
}

// closeOwnedSession 在连接断开时结束由该连接启动且仍在进行的会话。
func (h *Handler) closeOwnedSession(state *connectionState) {
	if state.sessionID == "" {
		return
	}
	if _, err := h.controller.StopIf(context.Background(), state.sessionID); err != nil {
		if !errors.Is(err, sessionservice.ErrNoSession) {
			log.Printf("[websocket] stop session on disconnect failed: %v", err)
		}
		return
	}
	log.Printf("[websocket] connection closed, stopped session=%s", state.sessionID)
}

// forwardUpdates 把控制器事件转发给客户端
func (h *Handler) forwardUpdates(ctx context.Context, conn *wsConn, updates <-chan sessionservice.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg := outgoingMessage{
				Type:      "result",
				SessionID: update.SessionID,
				Data:      update,
				Timestamp: time.Now().Unix(),
			}
			if err := conn.writeJSON(msg); err != nil {
				log.Printf("[websocket] write update failed: %v", err)
				return
			}
		}
	}
}

func (h *Handler) sendResult(conn *wsConn, sessionID string, data map[string]any) {
	msg := outgoingMessage{
		Type:      "result",
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := conn.writeJSON(msg); err != nil {
		log.Printf("[websocket] write result failed: %v", err)
	}
}

func (h *Handler) sendError(conn *wsConn, message string) {
	msg := outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := conn.writeJSON(msg); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

// pingLoop 定期发送ping消息
func (h *Handler) pingLoop(ctx context.Context, conn *wsConn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		}
	}
}
