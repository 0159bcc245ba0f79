package assistant

import (
	"strings"
)

// Rule maps trigger keywords to a canned reply.
type Rule struct {
	Keywords []string
	Reply    string
}

// Matcher answers student questions from a fixed rule set. All matching is
// case-insensitive substring search; the first rule whose keyword appears in
// the message wins.
type Matcher struct {
	rules    []Rule
	fallback string
}

// DefaultRules covers the support questions students actually ask.
func DefaultRules() []Rule {
	return []Rule{
		{
			Keywords: []string{"refund", "money back"},
			Reply:    "Refunds are available within 14 days of purchase. Email support@lumora.academy with your order reference and we'll take care of it.",
		},
		{
			Keywords: []string{"certificate", "certification"},
			Reply:    "Certificates are issued automatically when you complete every lesson in a course. You can download yours from your profile page.",
		},
		{
			Keywords: []string{"video", "playback", "buffering", "not loading", "won't play"},
			Reply:    "If a video won't play, check that you're enrolled in the course and signed in, then reload the page. Paid courses unlock after payment is confirmed.",
		},
		{
			Keywords: []string{"enroll", "sign up", "join course"},
			Reply:    "To enroll, open the course page and press Enroll. Free courses unlock immediately; paid courses unlock once your payment goes through.",
		},
		{
			Keywords: []string{"payment", "pay", "card", "checkout"},
			Reply:    "We accept all major cards at checkout. If a payment looks stuck, it usually confirms within a few minutes. Still pending after that? Contact support@lumora.academy.",
		},
		{
			Keywords: []string{"password", "reset", "locked out"},
			Reply:    "Use the Forgot Password link on the sign-in page to reset your password. The reset email can take a couple of minutes to arrive.",
		},
		{
			Keywords: []string{"hello", "hi", "hey"},
			Reply:    "Hi! I'm the Lumora assistant. Ask me about enrollments, payments, video playback, certificates or refunds.",
		},
	}
}

// NewMatcher creates a matcher over the given rules.
func NewMatcher(rules []Rule) *Matcher {
	return &Matcher{
		rules:    rules,
		fallback: "I'm not sure about that one. Email support@lumora.academy and a human will get back to you within a day.",
	}
}

// Reply returns the canned answer for the message.
func (m *Matcher) Reply(message string) string {
	lowered := strings.ToLower(message)
	for _, rule := range m.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lowered, kw) {
				return rule.Reply
			}
		}
	}
	return m.fallback
}
