package emotion

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// ChainBackend 通过 eino chain（提示模板 + 聊天模型）调用大模型。
type ChainBackend struct {
	runnable compose.Runnable[map[string]any, *schema.Message]
}

// NewChainBackend 编译分类 chain。chatModel 通常为 Ark 模型。
func NewChainBackend(ctx context.Context, chatModel model.BaseChatModel) (*ChainBackend, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is nil")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(classifierSystemPrompt),
		schema.UserMessage(classifierUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile emotion classifier chain: %w", err)
	}
	return &ChainBackend{runnable: runnable}, nil
}

// Name implements Backend.
func (b *ChainBackend) Name() string { return "ark" }

// Complete implements Backend.
func (b *ChainBackend) Complete(ctx context.Context, text string) (string, error) {
	msg, err := b.runnable.Invoke(ctx, map[string]any{"text": text})
	if err != nil {
		return "", fmt.Errorf("failed to run emotion chain: %w", err)
	}
	if msg == nil {
		return "", ErrEmptyResponse
	}
	return msg.Content, nil
}
