package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Session SessionConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Session: session}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// 远程情绪分类可选的后端。
const (
	ProviderArk    = "ark"
	ProviderOpenAI = "openai"
)

// AIConfig 描述远程情绪分类（大模型）相关配置。
type AIConfig struct {
	Provider      string
	RemoteEnabled bool
	RemoteTimeout time.Duration

	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
}

// Enabled 表示所选后端是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	if !c.RemoteEnabled {
		return false
	}
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIKey != "" && c.OpenAIModel != ""
	default:
		return c.arkReady()
	}
}

func (c AIConfig) arkReady() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个 Ark 模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.arkReady() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}
	if c.RemoteTimeout > 0 {
		timeout := c.RemoteTimeout
		cfg.Timeout = &timeout
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("EMOTION_PROVIDER", ProviderArk))
	if provider != ProviderArk && provider != ProviderOpenAI {
		return AIConfig{}, fmt.Errorf("invalid EMOTION_PROVIDER value %q", provider)
	}

	remoteEnabled, err := parseBoolEnv("EMOTION_REMOTE_ENABLED", true)
	if err != nil {
		return AIConfig{}, err
	}

	remoteTimeout, err := parseDurationEnv("EMOTION_REMOTE_TIMEOUT", 8*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		Provider:      provider,
		RemoteEnabled: remoteEnabled,
		RemoteTimeout: remoteTimeout,
		APIKey:        strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:     strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:     strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:         strings.TrimSpace(os.Getenv("Model")),
		BaseURL:       getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:        getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:   temperature,
		TopP:          topP,
		MaxTokens:     maxTokens,
		OpenAIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
	}, nil
}

// SessionConfig 描述实时会话控制器的参数。
type SessionConfig struct {
	Warmup         time.Duration
	Debounce       time.Duration
	CacheSize      int
	StrictOrdering bool
}

func loadSessionConfig() (SessionConfig, error) {
	warmup, err := parseDurationEnv("SESSION_WARMUP", 15*time.Second)
	if err != nil {
		return SessionConfig{}, err
	}

	debounce, err := parseDurationEnv("SESSION_DEBOUNCE", 500*time.Millisecond)
	if err != nil {
		return SessionConfig{}, err
	}

	cacheSize := 50
	if override, err := parseOptionalIntEnv("SESSION_CACHE_SIZE"); err != nil {
		return SessionConfig{}, err
	} else if override != nil {
		if *override < 0 {
			cacheSize = 0
		} else {
			cacheSize = *override
		}
	}

	strict, err := parseBoolEnv("SESSION_STRICT_ORDERING", true)
	if err != nil {
		return SessionConfig{}, err
	}

	return SessionConfig{
		Warmup:         warmup,
		Debounce:       debounce,
		CacheSize:      cacheSize,
		StrictOrdering: strict,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

// parseDurationEnv 接受 Go duration 格式（如 "500ms"），纯数字按毫秒处理。
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	if ms, err := strconv.Atoi(raw); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("invalid %s value %q: negative duration", key, raw)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid %s value %q: negative duration", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
