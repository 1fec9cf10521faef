package emotion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	analysis "github.com/zhouzirui/callpulse/backend/internal/analysis/emotion"
)

var (
	// ErrRemoteDisabled 表示未配置远程分类后端。
	ErrRemoteDisabled = errors.New("remote emotion classifier disabled")
	// ErrInvalidPayload 表示模型输出无法解析或缺少合法的情绪标签。
	ErrInvalidPayload = errors.New("invalid emotion payload")
	// ErrEmptyResponse 表示模型没有返回内容。
	ErrEmptyResponse = errors.New("empty emotion response")
)

// Remote 是远程（大模型）情绪分类器。
type Remote interface {
	ClassifyRemote(ctx context.Context, text string) (analysis.Result, error)
}

// Backend 负责把一句话发送给大模型并返回原始文本输出。
type Backend interface {
	Name() string
	Complete(ctx context.Context, text string) (string, error)
}

// Config 控制远程分类服务的行为。
type Config struct {
	Timeout time.Duration
}

// Service 组合远程后端与本地分类器，远程结果合并到本地结果之上。
type Service struct {
	backend    Backend
	classifier *analysis.Classifier
	timeout    time.Duration
}

// NewService 创建远程分类服务。backend 为 nil 时服务处于禁用状态，只使用本地分类。
func NewService(backend Backend, classifier *analysis.Classifier, cfg Config) *Service {
	if classifier == nil {
		classifier = analysis.Default()
	}
	return &Service{backend: backend, classifier: classifier, timeout: cfg.Timeout}
}

// Enabled 返回远程分类是否可用。
func (s *Service) Enabled() bool {
	return s != nil && s.backend != nil
}

// Backend 返回当前后端名称。
func (s *Service) Backend() string {
	if !s.Enabled() {
		return "local"
	}
	return s.backend.Name()
}

// ClassifyRemote 调用远程后端分类，失败时返回错误而不回退。
func (s *Service) ClassifyRemote(ctx context.Context, text string) (analysis.Result, error) {
	if !s.Enabled() {
		return analysis.Result{}, ErrRemoteDisabled
	}

	text = analysis.Normalize(text)
	local := s.classifier.Classify(text)
	if text == "" {
		return local, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	content, err := s.backend.Complete(ctx, text)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("%s classifier: %w", s.backend.Name(), err)
	}
	if strings.TrimSpace(content) == "" {
		return analysis.Result{}, ErrEmptyResponse
	}

	payload, err := parseClassifierOutput(content)
	if err != nil {
		return analysis.Result{}, err
	}
	return merge(s.classifier, local, payload)
}

// Analyze 优先使用远程结果，远程不可用或失败时回退到本地规则引擎。
func (s *Service) Analyze(ctx context.Context, text string) analysis.Result {
	if !s.Enabled() {
		return s.classifier.Classify(text)
	}

	result, err := s.ClassifyRemote(ctx, text)
	if err != nil {
		log.Printf("[emotion] remote classify failed, use local result: %v", err)
		return s.classifier.Classify(text)
	}
	return result
}

// Local 返回本地分类结果。
func (s *Service) Local(text string) analysis.Result {
	return s.classifier.Classify(text)
}
