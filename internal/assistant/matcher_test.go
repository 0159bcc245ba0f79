package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_KeywordMatching(t *testing.T) {
	m := NewMatcher(DefaultRules())

	cases := []struct {
		message string
		expect  string
	}{
		{"How do I get a refund?", "Refunds"},
		{"I want my MONEY BACK", "Refunds"},
		{"where is my certificate", "Certificates"},
		{"the video won't play", "video won't play"},
		{"My payment is stuck at checkout", "cards at checkout"},
		{"how do I enroll in the Go course", "press Enroll"},
		{"hello there", "Lumora assistant"},
	}
	for _, tc := range cases {
		reply := m.Reply(tc.message)
		assert.Contains(t, reply, tc.expect, "message %q", tc.message)
	}
}

func TestMatcher_FirstRuleWins(t *testing.T) {
	m := NewMatcher([]Rule{
		{Keywords: []string{"video"}, Reply: "first"},
		{Keywords: []string{"video", "playback"}, Reply: "second"},
	})
	assert.Equal(t, "first", m.Reply("my video playback is broken"))
}

func TestMatcher_FallbackForUnknownQuestion(t *testing.T) {
	m := NewMatcher(DefaultRules())
	reply := m.Reply("what is the meaning of life")
	assert.Contains(t, reply, "support@lumora.academy")
}

func TestMatcher_EmptyRulesAlwaysFallsBack(t *testing.T) {
	m := NewMatcher(nil)
	assert.Contains(t, m.Reply("refund please"), "support@lumora.academy")
}
