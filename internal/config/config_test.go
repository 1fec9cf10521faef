package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "EMOTION_PROVIDER", "EMOTION_REMOTE_ENABLED", "EMOTION_REMOTE_TIMEOUT",
		"ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "Model", "ARK_TEMPERATURE", "ARK_TOP_P", "ARK_MAX_TOKENS",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
		"SESSION_WARMUP", "SESSION_DEBOUNCE", "SESSION_CACHE_SIZE", "SESSION_STRICT_ORDERING",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, ProviderArk, cfg.AI.Provider)
	assert.True(t, cfg.AI.RemoteEnabled)
	assert.Equal(t, 8*time.Second, cfg.AI.RemoteTimeout)
	assert.False(t, cfg.AI.Enabled())

	assert.Equal(t, 15*time.Second, cfg.Session.Warmup)
	assert.Equal(t, 500*time.Millisecond, cfg.Session.Debounce)
	assert.Equal(t, 50, cfg.Session.CacheSize)
	assert.True(t, cfg.Session.StrictOrdering)
}

func TestLoadSessionOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_WARMUP", "2s")
	t.Setenv("SESSION_DEBOUNCE", "250")
	t.Setenv("SESSION_CACHE_SIZE", "-4")
	t.Setenv("SESSION_STRICT_ORDERING", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Session.Warmup)
	assert.Equal(t, 250*time.Millisecond, cfg.Session.Debounce)
	assert.Equal(t, 0, cfg.Session.CacheSize)
	assert.False(t, cfg.Session.StrictOrdering)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"SESSION_WARMUP":          "soon",
		"SESSION_DEBOUNCE":        "-5ms",
		"SESSION_CACHE_SIZE":      "many",
		"SESSION_STRICT_ORDERING": "maybe",
		"EMOTION_PROVIDER":        "claude",
		"EMOTION_REMOTE_TIMEOUT":  "forever",
		"ARK_TEMPERATURE":         "hot",
		"PORT":                    "80 80",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestServerAddr(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "127.0.0.1:9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
}

func TestAIConfigEnabled(t *testing.T) {
	ark := AIConfig{Provider: ProviderArk, RemoteEnabled: true, APIKey: "k", Model: "ep-1"}
	assert.True(t, ark.Enabled())

	ark.RemoteEnabled = false
	assert.False(t, ark.Enabled())

	aksk := AIConfig{Provider: ProviderArk, RemoteEnabled: true, AccessKey: "ak", Model: "ep-1"}
	assert.False(t, aksk.Enabled())
	aksk.SecretKey = "sk"
	assert.True(t, aksk.Enabled())

	openai := AIConfig{Provider: ProviderOpenAI, RemoteEnabled: true, OpenAIKey: "sk-test", OpenAIModel: "gpt-4o-mini"}
	assert.True(t, openai.Enabled())
	openai.OpenAIKey = ""
	assert.False(t, openai.Enabled())
}

func TestLoadOpenAIProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("EMOTION_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("EMOTION_REMOTE_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.OpenAIModel)
	assert.Equal(t, 3*time.Second, cfg.AI.RemoteTimeout)
	assert.True(t, cfg.AI.Enabled())
}

func TestNewChatModelRequiresCredentials(t *testing.T) {
	_, err := AIConfig{}.NewChatModel(context.Background())
	assert.Error(t, err)
}
