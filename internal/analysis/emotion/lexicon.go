package emotion

import (
	"log"
	"sync"

	"github.com/jonreiter/govader"
)

// Polarity 是一句话的情感极性。Positive、Negative、Neutral 三者之和约为 1。
type Polarity struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
}

// neutralPolarity is returned for empty text and when no lexicon is loaded.
var neutralPolarity = Polarity{Neutral: 1}

// Lexicon 计算文本极性，实现不会失败。
type Lexicon interface {
	Score(text string) Polarity
}

// VaderLexicon 封装 govader 的 SentimentIntensityAnalyzer，可并发使用。
type VaderLexicon struct {
	mu  sync.Mutex
	sia *govader.SentimentIntensityAnalyzer
}

// NewVaderLexicon 加载内置的 VADER 词典。词典读取失败时 govader 会 panic，
// 此时返回的评分器不可用，对任何输入都给出中性极性。
func NewVaderLexicon() *VaderLexicon {
	return &VaderLexicon{sia: loadAnalyzer()}
}

func loadAnalyzer() (sia *govader.SentimentIntensityAnalyzer) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[emotion] polarity lexicon unavailable, keyword matching only: %v", r)
			sia = nil
		}
	}()
	return govader.NewSentimentIntensityAnalyzer()
}

// Available 表示词典是否加载成功。
func (l *VaderLexicon) Available() bool {
	return l != nil && l.sia != nil
}

// Score 返回文本的极性。
func (l *VaderLexicon) Score(text string) Polarity {
	if !l.Available() || text == "" {
		return neutralPolarity
	}

	l.mu.Lock()
	scores := l.sia.PolarityScores(text)
	l.mu.Unlock()

	return Polarity{
		Compound: scores.Compound,
		Positive: scores.Positive,
		Negative: scores.Negative,
		Neutral:  scores.Neutral,
	}
}

// NopLexicon 不带词典，始终返回中性极性，规则匹配的词典加成因此为 0。
type NopLexicon struct{}

// Score implements Lexicon.
func (NopLexicon) Score(string) Polarity { return neutralPolarity }
