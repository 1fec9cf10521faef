package session

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	analysis "github.com/zhouzirui/callpulse/backend/internal/analysis/emotion"
	model "github.com/zhouzirui/callpulse/backend/internal/model/session"
	emotionservice "github.com/zhouzirui/callpulse/backend/internal/service/emotion"
)

const subscriberBuffer = 32

// Config 控制实时会话的节奏与缓存。
type Config struct {
	Warmup         time.Duration
	Debounce       time.Duration
	CacheSize      int
	StrictOrdering bool
}

// Archive 保存会话与定稿文本，会话结束后仍可查询。
type Archive interface {
	CreateSession(ctx context.Context) (model.Session, error)
	CloseSession(ctx context.Context, sessionID string) (model.Session, error)
	SaveEntry(ctx context.Context, entry model.Entry) (model.Entry, error)
	UpdateEmotion(ctx context.Context, sessionID, entryID, emotion string, score float64) error
}

// Option 调整控制器的可选依赖。
type Option func(*Controller)

// WithClock 替换时间源。
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller 驱动单个实时会话：每个片段立即做本地分析，定稿文本经防抖后交给远程分类器，
// 并按逻辑时钟把最新的结果写回会话状态。
type Controller struct {
	cfg        Config
	classifier *analysis.Classifier
	remote     emotionservice.Remote
	archive    Archive
	now        func() time.Time

	group singleflight.Group

	mu     sync.Mutex
	active *liveSession

	subsMu  sync.Mutex
	subs    map[int]chan Update
	nextSub int
}

// pending 是等待防抖触发的定稿文本。
type pending struct {
	text    string
	seq     uint64
	entryID string
}

type liveSession struct {
	id             string
	startedAt      time.Time
	warmupDeadline time.Time
	ctx            context.Context
	cancel         context.CancelFunc

	current    analysis.Result
	hasCurrent bool

	seq          uint64
	lastAccepted uint64

	transcript        []model.Entry
	lastProcessedText string

	cache    *resultCache
	timer    *time.Timer
	timerGen uint64
	pending  *pending

	remoteCalls    int
	remoteFailures int
	cacheHits      int
}

// NewController 创建会话控制器。remote 为 nil 时只做本地分析。
func NewController(cfg Config, classifier *analysis.Classifier, remote emotionservice.Remote, archive Archive, opts ...Option) *Controller {
	if classifier == nil {
		classifier = analysis.Default()
	}
	c := &Controller{
		cfg:        cfg,
		classifier: classifier,
		remote:     remote,
		archive:    archive,
		now:        time.Now,
		subs:       make(map[int]chan Update),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start 开启新会话。已有活动会话时返回 ErrSessionActive。
func (c *Controller) Start(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		return Snapshot{}, ErrSessionActive
	}

	archived, err := c.archive.CreateSession(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	now := c.now()
	sessionCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &liveSession{
		id:             archived.ID,
		startedAt:      now,
		warmupDeadline: now.Add(c.cfg.Warmup),
		ctx:            sessionCtx,
		cancel:         cancel,
		transcript:     make([]model.Entry, 0, 32),
		cache:          newResultCache(c.cfg.CacheSize),
	}
	c.active = s

	log.Printf("[session] started session=%s warmup=%s", s.id, c.cfg.Warmup)
	snap := c.snapshotLocked(s)
	c.publish(Update{Kind: UpdateStarted, SessionID: s.id, State: snap.State, Display: snap.Display, At: now})
	return snap, nil
}

// Submit 处理一段识别文本并返回本地分析结果。
func (c *Controller) Submit(ctx context.Context, frag Fragment) (analysis.Result, error) {
	text := analysis.Normalize(frag.Text)
	result := c.classifier.Classify(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.active
	if s == nil {
		return analysis.Result{}, ErrNoSession
	}

	s.seq++
	seq := s.seq
	c.applyLocked(s, result, seq, false)

	if !frag.Final || text == "" {
		return result, nil
	}

	entry := model.Entry{
		SessionID: s.id,
		Seq:       seq,
		Speaker:   frag.Speaker,
		Text:      text,
		Emotion:   string(result.Emotion),
		Score:     result.SentimentScore,
		CreatedAt: c.now().UTC(),
	}
	saved, err := c.archive.SaveEntry(ctx, entry)
	if err != nil {
		log.Printf("[session] archive entry failed session=%s: %v", s.id, err)
		saved = entry
	}
	s.transcript = append(s.transcript, saved)
	s.lastProcessedText = text
	c.publish(Update{Kind: UpdateTranscript, SessionID: s.id, State: c.stateLocked(s), Display: c.displayLocked(s), Entry: &saved, Seq: seq, At: c.now()})

	if c.remote != nil && c.stateLocked(s) == StateLive {
		c.armLocked(s, pending{text: text, seq: seq, entryID: saved.ID})
	}
	return result, nil
}

// Stop 结束当前会话，取消进行中的远程调用并返回最终快照。
func (c *Controller) Stop(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return Snapshot{}, ErrNoSession
	}
	return c.stopLocked(ctx, c.active), nil
}

// StopIf 仅当 sessionID 仍是当前会话时才结束它，否则返回 ErrNoSession。
func (c *Controller) StopIf(ctx context.Context, sessionID string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil || c.active.id != sessionID {
		return Snapshot{}, ErrNoSession
	}
	return c.stopLocked(ctx, c.active), nil
}

func (c *Controller) stopLocked(ctx context.Context, s *liveSession) Snapshot {
	s.cancel()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = nil
	c.active = nil

	snap := c.snapshotLocked(s)
	snap.State = StateIdle
	if closed, err := c.archive.CloseSession(ctx, s.id); err != nil {
		log.Printf("[session] archive close failed session=%s: %v", s.id, err)
		ended := c.now().UTC()
		snap.EndedAt = &ended
	} else {
		snap.EndedAt = closed.EndedAt
	}

	log.Printf("[session] stopped session=%s entries=%d remote_calls=%d failures=%d cache_hits=%d",
		s.id, len(s.transcript), s.remoteCalls, s.remoteFailures, s.cacheHits)
	c.publish(Update{Kind: UpdateStopped, SessionID: s.id, State: StateIdle, Display: snap.Display, At: c.now()})
	return snap
}

// Snapshot 返回当前会话状态。
func (c *Controller) Snapshot() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return Snapshot{}, ErrNoSession
	}
	return c.snapshotLocked(c.active), nil
}

// Subscribe 注册事件订阅。慢订阅者会丢事件而不会阻塞控制器。
func (c *Controller) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, subscriberBuffer)

	c.subsMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			close(ch)
			c.subsMu.Unlock()
		})
	}
}

func (c *Controller) publish(update Update) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- update:
		default:
		}
	}
}

// armLocked (re)starts the debounce timer with the latest final text.
func (c *Controller) armLocked(s *liveSession, p pending) {
	s.pending = &p
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timerGen++
	gen := s.timerGen
	s.timer = time.AfterFunc(c.cfg.Debounce, func() {
		c.flush(s, gen)
	})
}

// flush runs once the debounce window closes. A callback superseded by a
// later arm is ignored.
func (c *Controller) flush(s *liveSession, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != s || s.pending == nil || gen != s.timerGen {
		return
	}
	p := *s.pending
	s.pending = nil

	key := analysis.CacheKey(p.text)
	if cached, ok := s.cache.get(key); ok {
		s.cacheHits++
		c.acceptLocked(s, cached, p, true)
		return
	}

	go c.classifyRemote(s, p, key)
}

// classifyRemote calls the remote classifier. Flushes of the same text share
// one call, and only that call is counted.
func (c *Controller) classifyRemote(s *liveSession, p pending, key string) {
	v, err, _ := c.group.Do(s.id+"\x00"+key, func() (any, error) {
		c.mu.Lock()
		s.remoteCalls++
		c.mu.Unlock()

		result, err := c.remote.ClassifyRemote(s.ctx, p.text)
		if err != nil {
			c.mu.Lock()
			s.remoteFailures++
			c.mu.Unlock()
		}
		return result, err
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != s || s.ctx.Err() != nil {
		log.Printf("[session] dropped remote result for stopped session=%s", s.id)
		return
	}

	if err != nil {
		log.Printf("[session] remote classify failed session=%s, use local result: %v", s.id, err)
		c.acceptLocked(s, c.classifier.Classify(p.text), p, false)
		return
	}

	result := v.(analysis.Result)
	if evicted := s.cache.put(key, result); len(evicted) > 0 {
		log.Printf("[session] cache evicted %d entries session=%s", len(evicted), s.id)
	}
	c.acceptLocked(s, result, p, false)
}

// acceptLocked writes a debounced result and records it on the transcript
// entry that triggered it.
func (c *Controller) acceptLocked(s *liveSession, result analysis.Result, p pending, cached bool) {
	if !c.applyLocked(s, result, p.seq, cached) {
		return
	}
	for i := range s.transcript {
		if s.transcript[i].ID == p.entryID {
			s.transcript[i].Emotion = string(result.Emotion)
			s.transcript[i].Score = result.SentimentScore
			break
		}
	}
	if p.entryID != "" {
		if err := c.archive.UpdateEmotion(s.ctx, s.id, p.entryID, string(result.Emotion), result.SentimentScore); err != nil {
			log.Printf("[session] archive emotion update failed session=%s: %v", s.id, err)
		}
	}
}

// applyLocked writes result as the current one unless strict ordering finds
// it older than the last accepted write.
func (c *Controller) applyLocked(s *liveSession, result analysis.Result, seq uint64, cached bool) bool {
	if c.cfg.StrictOrdering && seq < s.lastAccepted {
		log.Printf("[session] dropped stale result session=%s seq=%d last=%d", s.id, seq, s.lastAccepted)
		return false
	}
	if seq > s.lastAccepted {
		s.lastAccepted = seq
	}
	s.current = result
	s.hasCurrent = true

	r := result
	c.publish(Update{
		Kind:      UpdateResult,
		SessionID: s.id,
		State:     c.stateLocked(s),
		Display:   c.displayLocked(s),
		Result:    &r,
		Cached:    cached,
		Seq:       seq,
		At:        c.now(),
	})
	return true
}

func (c *Controller) stateLocked(s *liveSession) State {
	if c.now().Before(s.warmupDeadline) {
		return StateWarmup
	}
	return StateLive
}

func (c *Controller) displayLocked(s *liveSession) analysis.Label {
	switch {
	case c.stateLocked(s) == StateWarmup:
		return analysis.Listening
	case s.hasCurrent:
		return s.current.Emotion
	default:
		return analysis.Neutral
	}
}

func (c *Controller) snapshotLocked(s *liveSession) Snapshot {
	snap := Snapshot{
		SessionID:         s.id,
		State:             c.stateLocked(s),
		StartedAt:         s.startedAt,
		WarmupDeadline:    s.warmupDeadline,
		Display:           c.displayLocked(s),
		Transcript:        append([]model.Entry{}, s.transcript...),
		LastProcessedText: s.lastProcessedText,
		CacheSize:         s.cache.len(),
		RemoteCalls:       s.remoteCalls,
		RemoteFailures:    s.remoteFailures,
		CacheHits:         s.cacheHits,
	}
	if s.hasCurrent {
		current := s.current
		snap.Current = &current
	}
	return snap
}
