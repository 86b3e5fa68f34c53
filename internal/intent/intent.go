// Package intent is the client-side heuristic classifier that maps a chat
// turn to a device-action request. It mirrors the backend parser's
// surface behavior so both classification strategies agree.
//
// Matching is plain substring containment, not word-boundary aware:
// "contacted" still triggers the contacts rule. That quirk is load-bearing
// for compatibility with the server-side parser and must not be fixed here.
package intent

import (
	"regexp"
	"strings"

	"github.com/tharos-ai/superintendent-go/internal/action"
)

// turn is the normalized input a rule sees. User keeps original casing
// for extraction; userLower/replyLower are for keyword checks only.
type turn struct {
	user       string
	userLower  string
	replyLower string
}

// rule inspects a turn and either produces a request or declines,
// passing the turn to the next rule.
type rule struct {
	name  string
	apply func(t turn) (action.Request, bool)
}

// Rules are evaluated in order; the first rule that produces a request
// wins. A rule whose keywords match may still decline (e.g. SMS with no
// extractable number and no prompting reply), falling through.
var rules = []rule{
	{name: "sms", apply: matchSMS},
	{name: "call", apply: matchCall},
	{name: "contacts", apply: matchContacts},
}

// A phone number is the first run of 10 or more consecutive digits,
// wherever it appears. Longer runs are taken whole, so a long numeric
// token (an order number, say) is a known false positive.
var phoneRe = regexp.MustCompile(`[0-9]{10,}`)

// Quoted message content, tried in order: double quotes after an SMS
// keyword, single quotes after an SMS keyword, double quotes after
// "say"/"tell".
var contentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:text|message|sms).*?"(.*?)"`),
	regexp.MustCompile(`(?i)(?:text|message|sms).*?'(.*?)'`),
	regexp.MustCompile(`(?i)(?:say|tell).*?"(.*?)"`),
}

// Classify maps a user utterance and the assistant's reply to a device
// action. It is pure and total: any input yields a request, defaulting
// to the none sentinel.
func Classify(userMessage, assistantReply string) action.Request {
	t := turn{
		user:       userMessage,
		userLower:  strings.ToLower(userMessage),
		replyLower: strings.ToLower(assistantReply),
	}
	for _, r := range rules {
		if req, ok := r.apply(t); ok {
			return req
		}
	}
	return action.None()
}

func matchSMS(t turn) (action.Request, bool) {
	if !containsAny(t.userLower, "text", "message", "sms") {
		return action.Request{}, false
	}
	if phone := firstDigitRun(t.user); phone != "" {
		return action.Request{
			Kind: action.KindSMS,
			SMS:  &action.SMSParams{PhoneNumber: phone, Message: extractContent(t.user)},
		}, true
	}
	// The assistant offering to send implies SMS intent even without a
	// number; the UI prompts for the missing fields.
	if containsAny(t.replyLower, "send", "text") {
		return action.Request{Kind: action.KindSMS, SMS: &action.SMSParams{}}, true
	}
	return action.Request{}, false
}

func matchCall(t turn) (action.Request, bool) {
	// "called" is excluded so past-tense mentions don't dial anyone.
	if !strings.Contains(t.userLower, "call") || strings.Contains(t.userLower, "called") {
		return action.Request{}, false
	}
	phone := firstDigitRun(t.user)
	if phone == "" {
		return action.Request{}, false
	}
	return action.Request{Kind: action.KindCall, Call: &action.CallParams{PhoneNumber: phone}}, true
}

func matchContacts(t turn) (action.Request, bool) {
	if !containsAny(t.userLower, "contact", "phone number") {
		return action.Request{}, false
	}
	return action.Request{Kind: action.KindContacts}, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstDigitRun(s string) string {
	return phoneRe.FindString(s)
}

func extractContent(s string) string {
	for _, re := range contentPatterns {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}
