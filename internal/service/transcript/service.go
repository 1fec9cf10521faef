package transcript

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zhouzirui/callpulse/backend/internal/model/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session already closed")
	ErrEmptyText       = errors.New("entry text is required")
)

// Service 在内存中归档通话会话及其定稿语句。
type Service struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
	entries  map[string][]session.Entry
}

// NewService 创建内存归档。
func NewService() *Service {
	return &Service{
		sessions: make(map[string]session.Session),
		entries:  make(map[string][]session.Entry),
	}
}

// CreateSession 创建新的归档会话。
func (s *Service) CreateSession(_ context.Context) (session.Session, error) {
	sess := session.Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.entries[sess.ID] = make([]session.Entry, 0, 32)
	s.mu.Unlock()

	return sess, nil
}

// CloseSession 标记会话结束，记录仍可读取。
func (s *Service) CloseSession(_ context.Context, sessionID string) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return session.Session{}, ErrSessionNotFound
	}
	if !sess.Active() {
		return sess, ErrSessionClosed
	}

	ended := time.Now().UTC()
	sess.EndedAt = &ended
	s.sessions[sessionID] = sess
	return sess, nil
}

// SaveEntry 向未结束的会话追加一条记录并返回带 id 的记录。
func (s *Service) SaveEntry(_ context.Context, entry session.Entry) (session.Entry, error) {
	if entry.SessionID == "" {
		return session.Entry{}, ErrSessionNotFound
	}
	if entry.Text == "" {
		return session.Entry{}, ErrEmptyText
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[entry.SessionID]
	if !ok {
		return session.Entry{}, ErrSessionNotFound
	}
	if !sess.Active() {
		return session.Entry{}, ErrSessionClosed
	}

	entry.ID = uuid.NewString()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	s.entries[entry.SessionID] = append(s.entries[entry.SessionID], entry)
	return entry, nil
}

// UpdateEmotion 更新记录最终展示的情绪，未知记录直接忽略。
func (s *Service) UpdateEmotion(_ context.Context, sessionID, entryID, emotion string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, ok := s.entries[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	for i := range entries {
		if entries[i].ID == entryID {
			entries[i].Emotion = emotion
			entries[i].Score = score
			return nil
		}
	}
	return nil
}

// GetSession 按 ID 获取会话。
func (s *Service) GetSession(_ context.Context, sessionID string) (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return session.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// ListSessions 按开始时间倒序返回所有会话。
func (s *Service) ListSessions(_ context.Context) []session.Session {
	s.mu.RLock()
	out := make([]session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

// LoadTranscript 返回会话的全部记录。
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]session.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]session.Entry, len(entries))
	copy(copied, entries)
	return copied, nil
}
