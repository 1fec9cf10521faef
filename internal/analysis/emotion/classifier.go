package emotion

import "sync"

// Classifier 把单句话转换为 Result，可并发使用且不会失败。
type Classifier struct {
	lexicon  Lexicon
	resolver *Resolver
	synth    *Synthesizer
}

// NewClassifier 组装分类器。参数为 nil 时分别使用 VADER 词典、默认规则表和默认指导表。
func NewClassifier(lexicon Lexicon, resolver *Resolver, synth *Synthesizer) *Classifier {
	if lexicon == nil {
		lexicon = NewVaderLexicon()
	}
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	if synth == nil {
		synth = NewSynthesizer(nil)
	}
	return &Classifier{lexicon: lexicon, resolver: resolver, synth: synth}
}

// Default 返回全局共享的分类器。
var Default = sync.OnceValue(func() *Classifier {
	return NewClassifier(nil, nil, nil)
})

// Classify 使用共享分类器分析 text。
func Classify(text string) Result {
	return Default().Classify(text)
}

// Classify 分析一句话。空文本返回 Neutral，分数为 5。
func (c *Classifier) Classify(text string) Result {
	text = Normalize(text)

	polarity := neutralPolarity
	if text != "" {
		polarity = c.lexicon.Score(text)
	}
	intensity := EstimateIntensity(text, polarity)
	resolution := c.resolver.Resolve(text, polarity, intensity)

	return c.WithCoaching(Result{
		Emotion:        resolution.Emotion,
		SentimentScore: resolution.SentimentScore,
		Intensity:      intensity.Level,
		Priority:       resolution.Priority,
		KeyIndicators:  resolution.KeyIndicators,
		Source:         SourceLocal,
	})
}

// Polarity 返回 Classify 使用的词典极性。
func (c *Classifier) Polarity(text string) Polarity {
	text = Normalize(text)
	if text == "" {
		return neutralPolarity
	}
	return c.lexicon.Score(text)
}

// Matches 返回每条规则的匹配明细。
func (c *Classifier) Matches(text string) []Match {
	text = Normalize(text)
	return c.resolver.Matches(text, c.Polarity(text))
}

// WithCoaching 按情绪补全指导字段，并保证切片非 nil。
func (c *Classifier) WithCoaching(r Result) Result {
	coaching := c.synth.Synthesize(r.Emotion)
	r.Suggestion = coaching.Suggestion
	r.CoachingTips = coaching.CoachingTips
	r.PhraseExamples = coaching.PhraseExamples
	r.WarningFlags = coaching.WarningFlags
	if r.KeyIndicators == nil {
		r.KeyIndicators = []string{}
	} else {
		r.KeyIndicators = append([]string{}, r.KeyIndicators...)
	}
	return r
}
