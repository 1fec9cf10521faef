package emotion

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const defaultOpenAIMaxOutput int64 = 600

// OpenAIConfig 描述 OpenAI Responses 分类器的参数。
type OpenAIConfig struct {
	APIKey          string
	Model           string
	BaseURL         string
	MaxOutputTokens int64
}

// OpenAIBackend 使用 Responses API 并以 JSON Schema 约束输出格式。
type OpenAIBackend struct {
	client    *openai.Client
	model     string
	maxOutput int64
}

// NewOpenAIBackend 创建 OpenAI 后端。
func NewOpenAIBackend(cfg OpenAIConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai model is empty")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	maxOutput := cfg.MaxOutputTokens
	if maxOutput <= 0 {
		maxOutput = defaultOpenAIMaxOutput
	}
	return &OpenAIBackend{client: &client, model: cfg.Model, maxOutput: maxOutput}, nil
}

// Name implements Backend.
func (b *OpenAIBackend) Name() string { return "openai" }

// Complete implements Backend.
func (b *OpenAIBackend) Complete(ctx context.Context, text string) (string, error) {
	resp, err := b.client.Responses.New(ctx, b.params(text))
	if err != nil {
		return "", fmt.Errorf("openai responses call failed: %w", err)
	}
	return resp.OutputText(), nil
}

func (b *OpenAIBackend) params(text string) responses.ResponseNewParams {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "EmotionAnalysis",
			Schema:      outputSchema(),
			Strict:      openai.Bool(true),
			Description: openai.String("Emotion analysis of one caller utterance"),
			Type:        "json_schema",
		},
	}

	return responses.ResponseNewParams{
		Model:           b.model,
		MaxOutputTokens: openai.Int(b.maxOutput),
		Instructions:    openai.String(classifierSystemPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage("Caller utterance:\n"+text, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}
}
