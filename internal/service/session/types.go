package session

import (
	"errors"
	"time"

	analysis "github.com/zhouzirui/callpulse/backend/internal/analysis/emotion"
	model "github.com/zhouzirui/callpulse/backend/internal/model/session"
)

var (
	ErrSessionActive = errors.New("a session is already active")
	ErrNoSession     = errors.New("no active session")
)

// State 是会话控制器的生命周期状态。
type State string

const (
	StateIdle   State = "idle"
	StateWarmup State = "warmup"
	StateLive   State = "live"
)

// Fragment 是语音识别端送来的一段文本，Final 表示该句已定稿。
type Fragment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Final   bool   `json:"isFinal"`
}

// UpdateKind 标识推送给订阅者的事件类型。
type UpdateKind string

const (
	UpdateStarted    UpdateKind = "started"
	UpdateResult     UpdateKind = "result"
	UpdateTranscript UpdateKind = "transcript"
	UpdateStopped    UpdateKind = "stopped"
)

// Update 是会话状态变化事件。
type Update struct {
	Kind      UpdateKind       `json:"kind"`
	SessionID string           `json:"sessionId"`
	State     State            `json:"state"`
	Display   analysis.Label   `json:"display"`
	Result    *analysis.Result `json:"result,omitempty"`
	Entry     *model.Entry     `json:"entry,omitempty"`
	Cached    bool             `json:"cached,omitempty"`
	Seq       uint64           `json:"seq,omitempty"`
	At        time.Time        `json:"at"`
}

// Snapshot 是会话状态的只读副本。
type Snapshot struct {
	SessionID         string           `json:"sessionId"`
	State             State            `json:"state"`
	StartedAt         time.Time        `json:"startedAt"`
	WarmupDeadline    time.Time        `json:"warmupDeadline"`
	EndedAt           *time.Time       `json:"endedAt,omitempty"`
	Display           analysis.Label   `json:"display"`
	Current           *analysis.Result `json:"current,omitempty"`
	Transcript        []model.Entry    `json:"transcript"`
	LastProcessedText string           `json:"lastProcessedText"`
	CacheSize         int              `json:"cacheSize"`
	RemoteCalls       int              `json:"remoteCalls"`
	RemoteFailures    int              `json:"remoteFailures"`
	CacheHits         int              `json:"cacheHits"`
}
