// Package sanitize maps raw upstream error detail to a fixed, user-facing
// sentence. Raw text is only ever matched against, never returned.
package sanitize

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is the safe classification of an upstream failure.
type Category string

const (
	ContentPolicy       Category = "content_policy_blocked"
	RateLimited         Category = "rate_limited"
	InsufficientBalance Category = "insufficient_balance"
	TimedOut            Category = "timed_out"
	Generic             Category = "generic_failure"
)

var messages = map[Category]string{
	ContentPolicy:       "The request was blocked by the content policy. Please revise the prompt and try again.",
	RateLimited:         "The service is busy or rate limited right now. Please wait a moment and try again.",
	InsufficientBalance: "Insufficient token balance. Please top up your account and try again.",
	TimedOut:            "The generation timed out. Please try again, or simplify the request.",
	Generic:             "Generation failed. Please try again later.",
}

// rule pairs a predicate over lower-cased text with the category it selects.
type rule struct {
	category Category
	match    func(text string) bool
}

// rules are evaluated in order; the first match wins. Content policy and
// billing come before rate limits and timeouts so they are never masked.
var rules = []rule{
	{ContentPolicy, containsAny("nsfw", "content policy", "content_policy", "policy violation", "safety check", "moderation")},
	{RateLimited, containsAny("rate limit", "rate_limit", "ratelimit", "too many requests", "blocked")},
	{InsufficientBalance, containsAny("insufficient token", "insufficient balance", "insufficient funds", "insufficient_balance")},
	{TimedOut, containsAny("timeout", "timed out", "deadline exceeded")},
}

func containsAny(needles ...string) func(string) bool {
	return func(text string) bool {
		for _, n := range needles {
			if strings.Contains(text, n) {
				return true
			}
		}
		return false
	}
}

// Classify returns the category for detail, which may be a string, an error,
// raw JSON bytes or any JSON-serializable value.
func Classify(detail any) Category {
	text := strings.ToLower(toText(detail))
	for _, r := range rules {
		if r.match(text) {
			return r.category
		}
	}
	return Generic
}

// Message returns the fixed sentence for a category.
func Message(c Category) string {
	if m, ok := messages[c]; ok {
		return m
	}
	return messages[Generic]
}

// Sanitize classifies detail and returns its fixed sentence.
func Sanitize(detail any) string {
	return Message(Classify(detail))
}

func toText(detail any) string {
	switch v := detail.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case json.RawMessage:
		return string(v)
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	}
	b, err := json.Marshal(detail)
	if err != nil {
		return fmt.Sprint(detail)
	}
	return string(b)
}
