package emotion

import (
	"math"
	"strings"
	"unicode"
)

// Intensity 是一句话的情绪强度估计。
type Intensity struct {
	Level Level   `json:"level"`
	Score float64 `json:"score"`
}

const (
	intensifierStep = 0.1
	escalationStep  = 0.15
	capsRunStep     = 0.2
	exclaimStep     = 0.1
	maxExclaims     = 3

	mediumThreshold = 0.4
	highThreshold   = 0.7
)

var intensifiers = map[string]struct{}{
	"really": {}, "very": {}, "extremely": {}, "absolutely": {},
	"completely": {}, "so": {}, "totally": {}, "super": {},
}

var escalationWords = map[string]struct{}{
	"always": {}, "never": {}, "constantly": {}, "still": {}, "again": {},
}

// escalationPairs are two-word escalation markers.
var escalationPairs = [][2]string{
	{"every", "time"},
}

// EstimateIntensity 根据极性、程度副词、升级用语、全大写和感叹号估计强度。
func EstimateIntensity(text string, polarity Polarity) Intensity {
	score := math.Abs(polarity.Compound)

	tokens := words(text)
	lower := make([]string, len(tokens))
	for i, tok := range tokens {
		lower[i] = strings.ToLower(tok)
	}

	for i, tok := range lower {
		if _, ok := intensifiers[tok]; ok {
			score += intensifierStep
		}
		if _, ok := escalationWords[tok]; ok {
			score += escalationStep
		}
		if i+1 < len(lower) {
			for _, pair := range escalationPairs {
				if tok == pair[0] && lower[i+1] == pair[1] {
					score += escalationStep
				}
			}
		}
	}

	score += float64(capsRuns(tokens)) * capsRunStep
	score += float64(min(strings.Count(text, "!"), maxExclaims)) * exclaimStep

	score = math.Min(score, 1)
	return Intensity{Level: levelFor(score), Score: math.Round(score*100) / 100}
}

func levelFor(score float64) Level {
	switch {
	case score > highThreshold:
		return LevelHigh
	case score >= mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// capsRuns counts maximal runs of consecutive shouted words.
func capsRuns(tokens []string) int {
	runs := 0
	inRun := false
	for _, tok := range tokens {
		if isShouted(tok) {
			if !inRun {
				runs++
			}
			inRun = true
			continue
		}
		inRun = false
	}
	return runs
}

// isShouted reports whether tok has at least two letters, all upper case.
func isShouted(tok string) bool {
	letters := 0
	for _, r := range tok {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters >= 2
}
