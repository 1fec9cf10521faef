package emotion

import (
	"math"
	"strings"
)

const (
	lexiconBonus = 0.3
	neutralScore = 5.0
)

// escalating emotions are upgraded to high priority when spoken intensely.
var escalating = map[Label]struct{}{
	Angry:        {},
	Frustrated:   {},
	Disappointed: {},
	Disgusted:    {},
}

// Match 是单条规则对一句话的匹配明细。
type Match struct {
	Rule            Rule
	MatchedKeywords []string
	MatchedPhrases  []string
	WeightedScore   float64
}

// Resolution 是规则判定部分的结果。
type Resolution struct {
	Emotion        Label
	SentimentScore float64
	Priority       Priority
	KeyIndicators  []string
	// Matched is false when the lexicon fallback produced the emotion.
	Matched bool
}

// Resolver 根据规则表为一句话选出情绪。
type Resolver struct {
	rules []Rule
}

// NewResolver 按给定顺序使用 rules，传 nil 时使用默认规则表。
func NewResolver(rules []Rule) *Resolver {
	if rules == nil {
		rules = Rules()
	}
	copied := make([]Rule, len(rules))
	for i, rule := range rules {
		copied[i] = rule.clone()
	}
	return &Resolver{rules: copied}
}

// Matches 计算每条规则的加权分。没有命中关键词或短语的规则不参与候选，
// 词典极性本身不会让规则成为候选。
func (r *Resolver) Matches(text string, polarity Polarity) []Match {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	bonus := math.Abs(polarity.Compound) * lexiconBonus

	var matches []Match
	for _, rule := range r.rules {
		m := Match{Rule: rule}
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				m.MatchedKeywords = append(m.MatchedKeywords, kw)
			}
		}
		for _, phrase := range rule.Phrases {
			if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
				m.MatchedPhrases = append(m.MatchedPhrases, phrase)
			}
		}
		if len(m.MatchedKeywords) == 0 && len(m.MatchedPhrases) == 0 {
			continue
		}

		score := float64(len(m.MatchedKeywords))*rule.KeywordWeight +
			float64(len(m.MatchedPhrases))*rule.KeywordWeight*phraseBoost +
			bonus
		m.WeightedScore = score * rule.Priority.multiplier()
		matches = append(matches, m)
	}
	return matches
}

// Resolve 选出加权分严格最高的规则，同分时取表中靠前的规则。
// 没有任何命中时只依据 compound 极性判定。
func (r *Resolver) Resolve(text string, polarity Polarity, intensity Intensity) Resolution {
	if strings.TrimSpace(text) == "" {
		return neutralResolution()
	}

	var best *Match
	matches := r.Matches(text, polarity)
	for i := range matches {
		if best == nil || matches[i].WeightedScore > best.WeightedScore {
			best = &matches[i]
		}
	}

	var res Resolution
	if best == nil {
		res = fallbackResolution(polarity.Compound)
	} else {
		indicators := best.MatchedKeywords
		if len(indicators) == 0 {
			indicators = best.MatchedPhrases
		}
		res = Resolution{
			Emotion:        best.Rule.Name,
			SentimentScore: best.Rule.BaseScore,
			Priority:       best.Rule.Priority,
			KeyIndicators:  append([]string{}, indicators...),
			Matched:        true,
		}
	}

	if intensity.Level == LevelHigh {
		if _, ok := escalating[res.Emotion]; ok {
			res.Priority = PriorityHigh
		}
	}
	return res
}

func neutralResolution() Resolution {
	return Resolution{
		Emotion:        Neutral,
		SentimentScore: neutralScore,
		Priority:       PriorityMedium,
		KeyIndicators:  []string{},
	}
}

// fallbackResolution classifies by compound polarity alone.
func fallbackResolution(compound float64) Resolution {
	var label Label
	var priority Priority
	switch {
	case compound >= 0.3:
		label, priority = Happy, PriorityLow
	case compound >= 0.1:
		label, priority = Satisfied, PriorityLow
	case compound <= -0.3:
		label, priority = Frustrated, PriorityHigh
	case compound <= -0.1:
		label, priority = Concerned, PriorityMedium
	default:
		return neutralResolution()
	}

	return Resolution{
		Emotion:        label,
		SentimentScore: compoundScore(compound),
		Priority:       priority,
		KeyIndicators:  []string{},
	}
}

// compoundScore maps a compound polarity in [-1,1] onto the 1–10 scale.
func compoundScore(compound float64) float64 {
	return clampScore(math.Round((5.5+4.5*compound)*10) / 10)
}

func clampScore(score float64) float64 {
	return math.Max(1, math.Min(10, score))
}
