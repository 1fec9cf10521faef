package emotion

// Label 表示一句话被判定的离散情绪。
type Label string

const (
	Excited      Label = "Excited"
	Grateful     Label = "Grateful"
	Happy        Label = "Happy"
	Satisfied    Label = "Satisfied"
	Concerned    Label = "Concerned"
	Confused     Label = "Confused"
	Disappointed Label = "Disappointed"
	Frustrated   Label = "Frustrated"
	Angry        Label = "Angry"
	Disgusted    Label = "Disgusted"
	Neutral      Label = "Neutral"

	// Listening 只在会话预热期间展示，规则引擎不会产出它。
	Listening Label = "Listening"
)

// Priority 是情绪对应的坐席升级等级。
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// multiplier amplifies a rule's weighted score during resolution.
func (p Priority) multiplier() float64 {
	switch p {
	case PriorityHigh:
		return 1.3
	case PriorityMedium:
		return 1.1
	default:
		return 1.0
	}
}

// Level 是一句话的粗粒度强度。
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Source 记录结果来自本地规则还是远程模型。
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

// Result 是单句分析的对外结果，返回后不再修改。
type Result struct {
	Emotion        Label    `json:"emotion"`
	SentimentScore float64  `json:"sentimentScore"`
	Intensity      Level    `json:"intensity"`
	Priority       Priority `json:"priority"`
	KeyIndicators  []string `json:"keyIndicators"`
	Suggestion     string   `json:"suggestion"`
	CoachingTips   []string `json:"coachingTips"`
	PhraseExamples []string `json:"phraseExamples"`
	WarningFlags   []string `json:"warningFlags"`
	Source         Source   `json:"source"`
}

// ParseLabel 不区分大小写地解析情绪名。Listening 只是占位展示，不被接受。
func ParseLabel(raw string) (Label, bool) {
	switch normalizeKey(raw) {
	case "excited":
		return Excited, true
	case "grateful":
		return Grateful, true
	case "happy":
		return Happy, true
	case "satisfied":
		return Satisfied, true
	case "concerned":
		return Concerned, true
	case "confused":
		return Confused, true
	case "disappointed":
		return Disappointed, true
	case "frustrated":
		return Frustrated, true
	case "angry":
		return Angry, true
	case "disgusted":
		return Disgusted, true
	case "neutral":
		return Neutral, true
	default:
		return "", false
	}
}

// ParsePriority 不区分大小写地解析优先级。
func ParsePriority(raw string) (Priority, bool) {
	switch normalizeKey(raw) {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	default:
		return "", false
	}
}

// ParseLevel 不区分大小写地解析强度等级。
func ParseLevel(raw string) (Level, bool) {
	switch normalizeKey(raw) {
	case "low":
		return LevelLow, true
	case "medium":
		return LevelMedium, true
	case "high":
		return LevelHigh, true
	default:
		return "", false
	}
}
