package emotion

import "sync"

// Coaching 是某种情绪对应的坐席指导。
type Coaching struct {
	Suggestion     string   `json:"suggestion"`
	CoachingTips   []string `json:"coachingTips"`
	PhraseExamples []string `json:"phraseExamples"`
	WarningFlags   []string `json:"warningFlags"`
}

func (c Coaching) clone() Coaching {
	c.CoachingTips = append([]string{}, c.CoachingTips...)
	c.PhraseExamples = append([]string{}, c.PhraseExamples...)
	c.WarningFlags = append([]string{}, c.WarningFlags...)
	return c
}

// Playbook 是按情绪索引的指导表，必须包含 Neutral 条目作为兜底。
type Playbook map[Label]Coaching

// DefaultPlaybook 返回全局指导表，只构建一次。
var DefaultPlaybook = sync.OnceValue(func() Playbook {
	return Playbook{
		Excited: {
			Suggestion: "Match the customer's energy and build on the momentum.",
			CoachingTips: []string{
				"Mirror their enthusiasm without overpromising.",
				"Confirm the outcome they are excited about.",
				"Use the moment to mention related value.",
			},
			PhraseExamples: []string{
				"That's fantastic to hear!",
				"I'm really glad this worked out for you.",
			},
			WarningFlags: []string{},
		},
		Grateful: {
			Suggestion: "Acknowledge the thanks warmly and close the loop.",
			CoachingTips: []string{
				"Accept the thanks graciously.",
				"Check whether anything else is outstanding.",
			},
			PhraseExamples: []string{
				"You're very welcome, happy to help.",
				"Is there anything else I can do for you today?",
			},
			WarningFlags: []string{},
		},
		Happy: {
			Suggestion: "Keep the tone positive and confirm satisfaction.",
			CoachingTips: []string{
				"Reinforce what went well.",
				"Invite feedback while the mood is good.",
			},
			PhraseExamples: []string{
				"Great, I'm glad that helped.",
				"Wonderful, let me know if anything else comes up.",
			},
			WarningFlags: []string{},
		},
		Satisfied: {
			Suggestion: "Confirm the resolution and summarize next steps.",
			CoachingTips: []string{
				"Recap what was resolved.",
				"Set expectations for any follow-up.",
			},
			PhraseExamples: []string{
				"Just to confirm, everything is working now?",
				"Here's a quick summary of what we did.",
			},
			WarningFlags: []string{},
		},
		Concerned: {
			Suggestion: "Reassure with specifics and address the worry directly.",
			CoachingTips: []string{
				"Name the concern back to the customer.",
				"Give concrete facts instead of general comfort.",
				"Offer a clear next step and timeline.",
			},
			PhraseExamples: []string{
				"I understand why that's worrying. Here's what will happen next.",
				"Let me walk you through exactly how this is handled.",
			},
			WarningFlags: []string{"Customer uncertainty may turn into churn risk."},
		},
		Confused: {
			Suggestion: "Slow down and explain step by step.",
			CoachingTips: []string{
				"Avoid jargon and acronyms.",
				"Check understanding after each step.",
				"Offer to send written instructions.",
			},
			PhraseExamples: []string{
				"Let me explain that a different way.",
				"Does that make sense so far?",
			},
			WarningFlags: []string{"Repeated confusion can escalate into frustration."},
		},
		Disappointed: {
			Suggestion: "Acknowledge the gap between expectation and outcome.",
			CoachingTips: []string{
				"Validate the disappointment before explaining.",
				"Own the part that fell short.",
				"Offer a concrete remedy.",
			},
			PhraseExamples: []string{
				"I'm sorry this wasn't what you expected.",
				"Let me see what I can do to make this right.",
			},
			WarningFlags: []string{"Expectation gap detected.", "Consider a goodwill gesture."},
		},
		Frustrated: {
			Suggestion: "Acknowledge the frustration and take ownership of the fix.",
			CoachingTips: []string{
				"Apologize once, sincerely, then focus on action.",
				"Do not ask the customer to repeat information.",
				"Give a specific timeline.",
			},
			PhraseExamples: []string{
				"I completely understand how frustrating this is.",
				"I'm going to take care of this for you right now.",
			},
			WarningFlags: []string{"Escalation risk.", "Avoid scripted responses."},
		},
		Angry: {
			Suggestion: "De-escalate: stay calm, listen fully and avoid defensiveness.",
			CoachingTips: []string{
				"Let the customer finish without interrupting.",
				"Lower your pace and volume.",
				"Acknowledge the feeling before the facts.",
				"Offer a supervisor if requested.",
			},
			PhraseExamples: []string{
				"I hear you, and I'm sorry you've had this experience.",
				"You have every right to be upset. Let's fix this together.",
			},
			WarningFlags: []string{"High escalation risk.", "Supervisor may be needed.", "Do not argue or blame."},
		},
		Disgusted: {
			Suggestion: "Take the complaint seriously and escalate quality issues.",
			CoachingTips: []string{
				"Thank the customer for raising it.",
				"Document the details precisely.",
				"Escalate to the responsible team.",
			},
			PhraseExamples: []string{
				"That's absolutely not the standard we aim for.",
				"I'm reporting this right away.",
			},
			WarningFlags: []string{"Possible quality or safety issue.", "High escalation risk."},
		},
		Neutral: {
			Suggestion: "Keep the conversation clear and friendly.",
			CoachingTips: []string{
				"Ask open questions to understand the need.",
				"Summarize before moving on.",
			},
			PhraseExamples: []string{
				"How can I help you today?",
				"Let me make sure I have that right.",
			},
			WarningFlags: []string{},
		},
	}
})

// Synthesizer 把情绪映射为指导内容。
type Synthesizer struct {
	playbook Playbook
}

// NewSynthesizer 创建指导生成器，playbook 为 nil 时使用默认表。
func NewSynthesizer(playbook Playbook) *Synthesizer {
	if playbook == nil {
		playbook = DefaultPlaybook()
	}
	return &Synthesizer{playbook: playbook}
}

// Synthesize 返回 label 对应的指导，未知情绪回退到 Neutral。
func (s *Synthesizer) Synthesize(label Label) Coaching {
	if c, ok := s.playbook[label]; ok {
		return c.clone()
	}
	return s.playbook[Neutral].clone()
}
