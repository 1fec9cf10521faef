package emotion

import "math/rand"

// Chooser returns an index in [0, n).
type Chooser func(n int) int

var (
	greetings = []string{
		"Hi there! How can I help you today?",
		"Hello! Thanks for calling, what can I do for you?",
		"Good to hear from you. What brings you in today?",
	}
	compliments = []string{
		"Nice work keeping the conversation on track.",
		"Great job staying calm and clear.",
		"That was a really empathetic response.",
		"Good listening, the customer feels heard.",
	}
	acknowledgements = map[Label][]string{
		Excited:      {"That's great news!", "Love the enthusiasm!"},
		Grateful:     {"Happy to help!", "You're very welcome."},
		Happy:        {"Glad to hear it.", "That's wonderful."},
		Satisfied:    {"Great, glad that's sorted.", "Perfect, thanks for confirming."},
		Concerned:    {"I understand your concern.", "Let's make sure this is covered."},
		Confused:     {"Let me clarify that.", "Good question, let me explain."},
		Disappointed: {"I'm sorry it fell short.", "I understand, that's not what you expected."},
		Frustrated:   {"I hear you, let's get this fixed.", "I understand how frustrating that is."},
		Angry:        {"I'm sorry, I'm here to help.", "I understand, let's sort this out now."},
		Disgusted:    {"That's not acceptable, I'll report it.", "Thank you for telling us about this."},
		Neutral:      {"Got it.", "Okay, understood."},
	}
)

// Filler 为坐席界面生成简短的寒暄回复，不涉及指导内容。
type Filler struct {
	choose Chooser
}

// NewFiller 创建回复生成器，choose 为 nil 时使用 math/rand。
func NewFiller(choose Chooser) *Filler {
	if choose == nil {
		choose = rand.Intn
	}
	return &Filler{choose: choose}
}

func (f *Filler) pick(options []string) string {
	if len(options) == 0 {
		return ""
	}
	i := f.choose(len(options))
	if i < 0 || i >= len(options) {
		i = 0
	}
	return options[i]
}

// Greeting 返回一句开场白。
func (f *Filler) Greeting() string { return f.pick(greetings) }

// Compliment 返回一句鼓励。
func (f *Filler) Compliment() string { return f.pick(compliments) }

// Acknowledge 返回与情绪相符的简短回应。
func (f *Filler) Acknowledge(label Label) string {
	options, ok := acknowledgements[label]
	if !ok {
		options = acknowledgements[Neutral]
	}
	return f.pick(options)
}
