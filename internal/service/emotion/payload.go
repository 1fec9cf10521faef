package emotion

import (
	"encoding/json"
	"fmt"
	"strings"

	analysis "github.com/zhouzirui/callpulse/backend/internal/analysis/emotion"
)

// remotePayload 是大模型返回的部分结果，缺失字段保持为 nil，在合并时按默认值补齐。
type remotePayload struct {
	Emotion        *string  `json:"emotion"`
	SentimentScore *float64 `json:"sentimentScore"`
	Intensity      *string  `json:"intensity"`
	Priority       *string  `json:"priority"`
	KeyIndicators  []string `json:"keyIndicators"`
	Suggestion     *string  `json:"suggestion"`
	CoachingTips   []string `json:"coachingTips"`
	PhraseExamples []string `json:"phraseExamples"`
	WarningFlags   []string `json:"warningFlags"`
}

// classifierOutput 描述 OpenAI 严格模式下要求模型输出的完整结构。
type classifierOutput struct {
	Emotion        string   `json:"emotion" jsonschema:"enum=Excited,enum=Grateful,enum=Happy,enum=Satisfied,enum=Concerned,enum=Confused,enum=Disappointed,enum=Frustrated,enum=Angry,enum=Disgusted,enum=Neutral" jsonschema_description:"Discrete emotion of the caller"`
	SentimentScore float64  `json:"sentimentScore" jsonschema_description:"Sentiment from 1 (very negative) to 10 (very positive)"`
	Intensity      string   `json:"intensity" jsonschema:"enum=low,enum=medium,enum=high"`
	Priority       string   `json:"priority" jsonschema:"enum=low,enum=medium,enum=high"`
	KeyIndicators  []string `json:"keyIndicators" jsonschema_description:"Words from the utterance that signal the emotion"`
	Suggestion     string   `json:"suggestion" jsonschema_description:"One sentence of guidance for the agent"`
	CoachingTips   []string `json:"coachingTips"`
	PhraseExamples []string `json:"phraseExamples"`
	WarningFlags   []string `json:"warningFlags"`
}

// parseClassifierOutput 从模型输出中截取第一个 JSON 对象并解析。
func parseClassifierOutput(content string) (*remotePayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("%w: missing json object", ErrInvalidPayload)
	}

	payload := &remotePayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return payload, nil
}

// merge 将远程结果合并到本地结果之上。情绪标签必须合法；其余字段缺失时：
// 分数与优先级取该情绪规则的默认值，强度沿用本地估计，指导内容由教练表重新生成。
func merge(classifier *analysis.Classifier, local analysis.Result, payload *remotePayload) (analysis.Result, error) {
	if payload == nil || payload.Emotion == nil {
		return analysis.Result{}, fmt.Errorf("%w: emotion missing", ErrInvalidPayload)
	}
	label, ok := analysis.ParseLabel(*payload.Emotion)
	if !ok {
		return analysis.Result{}, fmt.Errorf("%w: unknown emotion %q", ErrInvalidPayload, *payload.Emotion)
	}

	score, priority := defaultsFor(label)
	if payload.SentimentScore != nil {
		score = clampScore(*payload.SentimentScore)
	}
	if payload.Priority != nil {
		if p, ok := analysis.ParsePriority(*payload.Priority); ok {
			priority = p
		}
	}

	intensity := local.Intensity
	if payload.Intensity != nil {
		if level, ok := analysis.ParseLevel(*payload.Intensity); ok {
			intensity = level
		}
	}

	var indicators []string
	switch {
	case payload.KeyIndicators != nil:
		indicators = cleanList(payload.KeyIndicators)
	case label == local.Emotion:
		indicators = local.KeyIndicators
	}

	result := classifier.WithCoaching(analysis.Result{
		Emotion:        label,
		SentimentScore: score,
		Intensity:      intensity,
		Priority:       priority,
		KeyIndicators:  indicators,
		Source:         analysis.SourceRemote,
	})

	if payload.Suggestion != nil && strings.TrimSpace(*payload.Suggestion) != "" {
		result.Suggestion = strings.TrimSpace(*payload.Suggestion)
	}
	if tips := cleanList(payload.CoachingTips); len(tips) > 0 {
		result.CoachingTips = tips
	}
	if phrases := cleanList(payload.PhraseExamples); len(phrases) > 0 {
		result.PhraseExamples = phrases
	}
	if payload.WarningFlags != nil {
		result.WarningFlags = cleanList(payload.WarningFlags)
	}
	return result, nil
}

func defaultsFor(label analysis.Label) (float64, analysis.Priority) {
	if rule, ok := analysis.RuleFor(label); ok {
		return rule.BaseScore, rule.Priority
	}
	return 5, analysis.PriorityMedium
}

func clampScore(val float64) float64 {
	if val < 1 {
		return 1
	}
	if val > 10 {
		return 10
	}
	return val
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
