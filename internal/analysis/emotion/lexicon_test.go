package emotion

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaderLexiconScoresPolarity(t *testing.T) {
	lex := NewVaderLexicon()
	require.True(t, lex.Available())

	positive := lex.Score("I love this, it is wonderful")
	assert.Greater(t, positive.Compound, 0.3)

	negative := lex.Score("This is terrible and I hate it")
	assert.Less(t, negative.Compound, -0.3)

	sum := negative.Positive + negative.Negative + negative.Neutral
	assert.InDelta(t, 1.0, sum, 0.01)
}

func TestVaderLexiconEmptyText(t *testing.T) {
	assert.Equal(t, neutralPolarity, NewVaderLexicon().Score(""))
}

func TestVaderLexiconUnavailable(t *testing.T) {
	var lex VaderLexicon
	assert.False(t, lex.Available())
	assert.Equal(t, neutralPolarity, lex.Score("I hate this"))
}

func TestVaderLexiconConcurrentUse(t *testing.T) {
	lex := NewVaderLexicon()
	want := lex.Score("not good at all")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, lex.Score("not good at all"))
		}()
	}
	wg.Wait()
}

func TestSynthesizeUnknownFallsBackToNeutral(t *testing.T) {
	s := NewSynthesizer(nil)
	assert.Equal(t, s.Synthesize(Neutral), s.Synthesize(Label("Bored")))
}

func TestSynthesizeReturnsCopies(t *testing.T) {
	s := NewSynthesizer(nil)
	first := s.Synthesize(Angry)
	require.NotEmpty(t, first.CoachingTips)
	first.CoachingTips[0] = "mutated"

	assert.NotEqual(t, "mutated", s.Synthesize(Angry).CoachingTips[0])
}

func TestDefaultPlaybookCoversEveryRule(t *testing.T) {
	playbook := DefaultPlaybook()
	for _, rule := range Rules() {
		entry, ok := playbook[rule.Name]
		require.True(t, ok, "missing coaching for %s", rule.Name)
		assert.NotEmpty(t, entry.Suggestion)
		assert.NotEmpty(t, entry.CoachingTips)
	}
	_, ok := playbook[Neutral]
	assert.True(t, ok)
}

func TestSynthesizeInjectedPlaybook(t *testing.T) {
	s := NewSynthesizer(Playbook{
		Neutral: {Suggestion: "default"},
		Happy:   {Suggestion: "smile"},
	})
	assert.Equal(t, "smile", s.Synthesize(Happy).Suggestion)
	assert.Equal(t, "default", s.Synthesize(Angry).Suggestion)
}

func TestFillerUsesChooser(t *testing.T) {
	f := NewFiller(func(n int) int { return n - 1 })

	assert.Equal(t, greetings[len(greetings)-1], f.Greeting())
	assert.Equal(t, compliments[len(compliments)-1], f.Compliment())
	options := acknowledgements[Angry]
	assert.Equal(t, options[len(options)-1], f.Acknowledge(Angry))
}

func TestFillerOutOfRangeChoice(t *testing.T) {
	f := NewFiller(func(int) int { return 99 })
	assert.Equal(t, greetings[0], f.Greeting())
	assert.Equal(t, acknowledgements[Neutral][0], f.Acknowledge(Label("Bored")))
}

func TestFillerDefaultChooser(t *testing.T) {
	f := NewFiller(nil)
	assert.Contains(t, greetings, f.Greeting())
}
