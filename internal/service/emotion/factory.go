package emotion

import (
	"context"
	"fmt"
	"log"

	analysis "github.com/zhouzirui/callpulse/backend/internal/analysis/emotion"
	"github.com/zhouzirui/callpulse/backend/internal/config"
)

// NewFromConfig 按配置选择远程后端。未配置或被关闭时返回只做本地分类的服务。
func NewFromConfig(ctx context.Context, cfg config.AIConfig, classifier *analysis.Classifier) (*Service, error) {
	svcCfg := Config{Timeout: cfg.RemoteTimeout}
	if !cfg.Enabled() {
		return NewService(nil, classifier, svcCfg), nil
	}

	var backend Backend
	switch cfg.Provider {
	case config.ProviderOpenAI:
		openaiBackend, err := NewOpenAIBackend(OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init openai backend: %w", err)
		}
		backend = openaiBackend
	default:
		chatModel, err := cfg.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("init ark chat model: %w", err)
		}
		chainBackend, err := NewChainBackend(ctx, chatModel)
		if err != nil {
			return nil, fmt.Errorf("init ark chain: %w", err)
		}
		backend = chainBackend
	}

	log.Printf("[emotion] remote classifier enabled backend=%s timeout=%s", backend.Name(), cfg.RemoteTimeout)
	return NewService(backend, classifier, svcCfg), nil
}
