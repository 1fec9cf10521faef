package emotion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analysis "github.com/zhouzirui/callpulse/backend/internal/analysis/emotion"
	"github.com/zhouzirui/callpulse/backend/internal/config"
)

type fakeBackend struct {
	content string
	err     error
	delay   time.Duration
	calls   int
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Complete(ctx context.Context, text string) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.content, f.err
}

type fakeChatModel struct {
	reply    string
	received []*schema.Message
}

func (m *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.received = input
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.received = input
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage(m.reply, nil)}), nil
}

func newTestService(backend Backend) *Service {
	return NewService(backend, analysis.NewClassifier(analysis.NopLexicon{}, nil, nil), Config{})
}

func TestClassifyRemoteMergesFullPayload(t *testing.T) {
	backend := &fakeBackend{content: "Sure! " + `{"emotion":"frustrated","sentimentScore":3.2,"intensity":"high","priority":"high",
		"keyIndicators":["on hold"],"suggestion":"Apologize for the wait.","coachingTips":["Give a timeline"],
		"phraseExamples":["Thanks for holding"],"warningFlags":[]}`}
	svc := newTestService(backend)

	result, err := svc.ClassifyRemote(context.Background(), "I have been on hold for an hour")
	require.NoError(t, err)

	assert.Equal(t, analysis.Frustrated, result.Emotion)
	assert.Equal(t, 3.2, result.SentimentScore)
	assert.Equal(t, analysis.LevelHigh, result.Intensity)
	assert.Equal(t, analysis.PriorityHigh, result.Priority)
	assert.Equal(t, []string{"on hold"}, result.KeyIndicators)
	assert.Equal(t, "Apologize for the wait.", result.Suggestion)
	assert.Equal(t, []string{"Give a timeline"}, result.CoachingTips)
	assert.Equal(t, []string{"Thanks for holding"}, result.PhraseExamples)
	assert.Empty(t, result.WarningFlags)
	assert.NotNil(t, result.WarningFlags)
	assert.Equal(t, analysis.SourceRemote, result.Source)
}

func TestClassifyRemoteFillsDefaults(t *testing.T) {
	svc := newTestService(&fakeBackend{content: `{"emotion":"Angry"}`})

	result, err := svc.ClassifyRemote(context.Background(), "I am angry")
	require.NoError(t, err)

	coaching := analysis.DefaultPlaybook()[analysis.Angry]
	assert.Equal(t, analysis.Angry, result.Emotion)
	assert.Equal(t, 1.5, result.SentimentScore)
	assert.Equal(t, analysis.PriorityHigh, result.Priority)
	assert.Equal(t, []string{"angry"}, result.KeyIndicators)
	assert.Equal(t, coaching.Suggestion, result.Suggestion)
	assert.Equal(t, coaching.WarningFlags, result.WarningFlags)
	assert.Equal(t, analysis.SourceRemote, result.Source)
}

func TestClassifyRemoteDropsLocalIndicatorsForDifferentEmotion(t *testing.T) {
	svc := newTestService(&fakeBackend{content: `{"emotion":"Concerned","sentimentScore":42,"priority":"urgent"}`})

	result, err := svc.ClassifyRemote(context.Background(), "I am angry")
	require.NoError(t, err)

	assert.Equal(t, analysis.Concerned, result.Emotion)
	assert.Equal(t, 10.0, result.SentimentScore)
	assert.Equal(t, analysis.PriorityMedium, result.Priority)
	assert.Empty(t, result.KeyIndicators)
	assert.NotNil(t, result.KeyIndicators)
}

func TestClassifyRemoteRejectsInvalidPayload(t *testing.T) {
	tests := map[string]string{
		"no json":         "I think the caller is upset",
		"broken json":     `{"emotion": }`,
		"missing emotion": `{"sentimentScore": 4}`,
		"unknown emotion": `{"emotion":"Sad"}`,
		"placeholder":     `{"emotion":"Listening"}`,
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			svc := newTestService(&fakeBackend{content: content})
			_, err := svc.ClassifyRemote(context.Background(), "hello")
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestClassifyRemoteErrors(t *testing.T) {
	_, err := NewService(nil, nil, Config{}).ClassifyRemote(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrRemoteDisabled)

	boom := errors.New("boom")
	_, err = newTestService(&fakeBackend{err: boom}).ClassifyRemote(context.Background(), "hi")
	assert.ErrorIs(t, err, boom)

	_, err = newTestService(&fakeBackend{content: "  "}).ClassifyRemote(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClassifyRemoteTimeout(t *testing.T) {
	backend := &fakeBackend{content: `{"emotion":"Happy"}`, delay: time.Second}
	svc := NewService(backend, analysis.NewClassifier(analysis.NopLexicon{}, nil, nil), Config{Timeout: 10 * time.Millisecond})

	_, err := svc.ClassifyRemote(context.Background(), "hello")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClassifyRemoteEmptyTextSkipsBackend(t *testing.T) {
	backend := &fakeBackend{content: `{"emotion":"Happy"}`}
	result, err := newTestService(backend).ClassifyRemote(context.Background(), "   ")
	require.NoError(t, err)

	assert.Equal(t, analysis.Neutral, result.Emotion)
	assert.Zero(t, backend.calls)
}

func TestAnalyzeFallsBackToLocal(t *testing.T) {
	svc := newTestService(&fakeBackend{err: errors.New("unavailable")})

	result := svc.Analyze(context.Background(), "I am angry")
	assert.Equal(t, analysis.Angry, result.Emotion)
	assert.Equal(t, analysis.SourceLocal, result.Source)

	disabled := NewService(nil, nil, Config{})
	assert.False(t, disabled.Enabled())
	assert.Equal(t, "local", disabled.Backend())
	assert.Equal(t, analysis.SourceLocal, disabled.Analyze(context.Background(), "thanks").Source)
}

func TestChainBackendRendersPrompt(t *testing.T) {
	chatModel := &fakeChatModel{reply: `{"emotion":"Grateful","sentimentScore":9}`}
	backend, err := NewChainBackend(context.Background(), chatModel)
	require.NoError(t, err)
	assert.Equal(t, "ark", backend.Name())

	svc := newTestService(backend)
	result, err := svc.ClassifyRemote(context.Background(), "thank you so much")
	require.NoError(t, err)
	assert.Equal(t, analysis.Grateful, result.Emotion)
	assert.Equal(t, 9.0, result.SentimentScore)

	require.Len(t, chatModel.received, 2)
	assert.Equal(t, schema.System, chatModel.received[0].Role)
	assert.Equal(t, schema.User, chatModel.received[1].Role)
	assert.Contains(t, chatModel.received[1].Content, "thank you so much")
}

func TestNewChainBackendRequiresModel(t *testing.T) {
	_, err := NewChainBackend(context.Background(), nil)
	assert.Error(t, err)
}

func TestOutputSchemaIsStrict(t *testing.T) {
	s := outputSchema()

	assert.Equal(t, "object", s["type"])
	assert.Equal(t, false, s["additionalProperties"])

	properties, ok := s["properties"].(map[string]any)
	require.True(t, ok)
	required, ok := s["required"].([]string)
	require.True(t, ok)
	assert.Len(t, required, len(properties))
	assert.Contains(t, required, "emotion")

	emotionProp, ok := properties["emotion"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, emotionProp["enum"], "Disgusted")
}

func TestOpenAIBackendCallsResponsesAPI(t *testing.T) {
	var request map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &request)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/responses"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         "resp_1",
			"object":     "response",
			"created_at": 1,
			"status":     "completed",
			"model":      "gpt-test",
			"output": []any{map[string]any{
				"type":   "message",
				"id":     "msg_1",
				"role":   "assistant",
				"status": "completed",
				"content": []any{map[string]any{
					"type":        "output_text",
					"text":        `{"emotion":"Confused","sentimentScore":4.5}`,
					"annotations": []any{},
				}},
			}},
		})
	}))
	defer server.Close()

	backend, err := NewOpenAIBackend(OpenAIConfig{APIKey: "test-key", Model: "gpt-test", BaseURL: server.URL})
	require.NoError(t, err)

	result, err := newTestService(backend).ClassifyRemote(context.Background(), "what do you mean")
	require.NoError(t, err)
	assert.Equal(t, analysis.Confused, result.Emotion)

	assert.Equal(t, "gpt-test", request["model"])
	text, ok := request["text"].(map[string]any)
	require.True(t, ok)
	format, ok := text["format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, true, format["strict"])
}

func TestNewOpenAIBackendValidates(t *testing.T) {
	_, err := NewOpenAIBackend(OpenAIConfig{Model: "m"})
	assert.Error(t, err)
	_, err = NewOpenAIBackend(OpenAIConfig{APIKey: "k"})
	assert.Error(t, err)
}

func TestNewFromConfigSelectsBackend(t *testing.T) {
	classifier := analysis.NewClassifier(analysis.NopLexicon{}, nil, nil)

	disabled, err := NewFromConfig(context.Background(), config.AIConfig{Provider: config.ProviderArk}, classifier)
	require.NoError(t, err)
	assert.False(t, disabled.Enabled())
	assert.Equal(t, "local", disabled.Backend())

	openaiSvc, err := NewFromConfig(context.Background(), config.AIConfig{
		Provider:      config.ProviderOpenAI,
		RemoteEnabled: true,
		RemoteTimeout: time.Second,
		OpenAIKey:     "sk-test",
		OpenAIModel:   "gpt-4o-mini",
	}, classifier)
	require.NoError(t, err)
	assert.True(t, openaiSvc.Enabled())
	assert.Equal(t, "openai", openaiSvc.Backend())

	turnedOff, err := NewFromConfig(context.Background(), config.AIConfig{
		Provider:    config.ProviderOpenAI,
		OpenAIKey:   "sk-test",
		OpenAIModel: "gpt-4o-mini",
	}, classifier)
	require.NoError(t, err)
	assert.False(t, turnedOff.Enabled())
}
