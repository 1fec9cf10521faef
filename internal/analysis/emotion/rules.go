package emotion

// Rule 描述一种情绪及触发它的关键词和短语。
type Rule struct {
	Name          Label
	Keywords      []string
	Phrases       []string
	BaseScore     float64
	Priority      Priority
	KeywordWeight float64
}

// phraseBoost weights a multi-word phrase above a single keyword.
const phraseBoost = 1.5

// 关键词和短语按小写子串匹配。会落在常用词里的短词根（"coverage" 里的 "rage"，
// "whatever" 里的 "hate"，"goodbye" 里的 "good"）只以短语形式出现。
// 否定形式的正面词归入负面规则，其权重高于所包含的正面词根。
var defaultRules = []Rule{
	{
		Name: Excited,
		Keywords: []string{
			"awesome", "amazing", "fantastic", "incredible", "excited", "thrilled",
			"wow", "outstanding", "brilliant", "can't wait",
		},
		Phrases: []string{
			"this is awesome", "best day", "so excited", "blown away", "can't wait to",
		},
		BaseScore:     9.0,
		Priority:      PriorityLow,
		KeywordWeight: 2.0,
	},
	{
		Name: Grateful,
		Keywords: []string{
			"thank", "thanks", "appreciate", "grateful", "thankful", "helpful", "cheers",
		},
		Phrases: []string{
			"thank you so much", "really appreciate", "you've been so helpful", "means a lot",
		},
		BaseScore:     8.5,
		Priority:      PriorityLow,
		KeywordWeight: 2.0,
	},
	{
		Name: Happy,
		Keywords: []string{
			"happy", "glad", "great", "pleased", "delighted", "love", "enjoy", "wonderful", "nice",
		},
		Phrases: []string{
			"made my day", "so happy", "love it", "good news",
		},
		BaseScore:     7.5,
		Priority:      PriorityLow,
		KeywordWeight: 1.5,
	},
	{
		Name: Satisfied,
		Keywords: []string{
			"satisfied", "resolved", "perfect", "sorted", "alright",
		},
		Phrases: []string{
			"that works", "all good", "problem solved", "works for me", "makes sense",
			"sounds good", "that's fine", "fine by me", "it's fixed", "fixed it",
		},
		BaseScore:     6.5,
		Priority:      PriorityLow,
		KeywordWeight: 1.5,
	},
	{
		Name: Concerned,
		Keywords: []string{
			"worried", "concerned", "nervous", "anxious", "afraid", "unsure", "risk", "worry", "uncertain",
		},
		Phrases: []string{
			"what if", "not sure", "i'm worried", "is it safe",
		},
		BaseScore:     4.0,
		Priority:      PriorityMedium,
		KeywordWeight: 1.5,
	},
	{
		Name: Confused,
		Keywords: []string{
			"confused", "confusing", "unclear", "lost", "puzzled", "don't understand", "don't get",
		},
		Phrases: []string{
			"what do you mean", "how does this work", "i don't follow", "makes no sense",
		},
		BaseScore:     4.5,
		Priority:      PriorityLow,
		KeywordWeight: 1.5,
	},
	{
		Name: Disappointed,
		Keywords: []string{
			"disappointed", "disappointing", "let down", "unfortunately", "unhappy", "sad", "shame",
			"dissatisfied", "unsatisfied", "displeased",
		},
		Phrases: []string{
			"not what i expected", "expected better", "really disappointed", "such a shame",
		},
		BaseScore:     3.0,
		Priority:      PriorityMedium,
		KeywordWeight: 2.0,
	},
	{
		Name: Frustrated,
		Keywords: []string{
			"frustrated", "frustrating", "annoyed", "annoying", "fed up", "tired of", "useless",
			"waste", "stuck", "ridiculous", "hassle", "unhelpful", "unresolved",
		},
		Phrases: []string{
			"this is ridiculous", "waste of time", "still not working", "how many times", "every single time",
		},
		BaseScore:     2.5,
		Priority:      PriorityHigh,
		KeywordWeight: 2.0,
	},
	{
		Name: Angry,
		Keywords: []string{
			"angry", "furious", "outraged", "enraged", "livid", "unacceptable", "terrible", "worst",
			"pissed", "disgrace",
		},
		Phrases: []string{
			"speak to a manager", "this is unacceptable", "i'm done", "cancel my account", "absolutely ridiculous",
			"i hate", "hate this", "hate it",
		},
		BaseScore:     1.5,
		Priority:      PriorityHigh,
		KeywordWeight: 2.5,
	},
	{
		Name: Disgusted,
		Keywords: []string{
			"disgusted", "disgusting", "revolting", "appalling", "sickening", "nasty",
		},
		Phrases: []string{
			"makes me sick", "absolutely disgusting", "that's gross",
		},
		BaseScore:     2.0,
		Priority:      PriorityHigh,
		KeywordWeight: 2.0,
	},
}

// Rules 按匹配顺序返回规则表的副本。
func Rules() []Rule {
	out := make([]Rule, len(defaultRules))
	for i, rule := range defaultRules {
		out[i] = rule.clone()
	}
	return out
}

// RuleFor 查找某个情绪对应的规则。
func RuleFor(label Label) (Rule, bool) {
	for _, rule := range defaultRules {
		if rule.Name == label {
			return rule.clone(), true
		}
	}
	return Rule{}, false
}

func (r Rule) clone() Rule {
	r.Keywords = append([]string(nil), r.Keywords...)
	r.Phrases = append([]string(nil), r.Phrases...)
	return r
}
