package session

import "time"

// Entry 保存一句定稿语句及其展示的情绪。
type Entry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Seq       uint64    `json:"seq"`
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Emotion   string    `json:"emotion,omitempty"`
	Score     float64   `json:"score,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
