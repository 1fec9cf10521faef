package session

import "time"

// Session 记录一通实时通话从开始到结束。
type Session struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// Active 表示通话是否仍在进行。
func (s Session) Active() bool {
	return s.EndedAt == nil
}
