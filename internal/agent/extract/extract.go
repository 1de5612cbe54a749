// Package extract holds the deterministic entity extractors that back up the
// reasoning model's extraction. They are pure functions over the message text,
// so reapplying them to an already-extracted state yields the same values.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Order-number patterns, checked in precedence order. Numbers under four
// digits are never order numbers.
var orderNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`#(\d{4,})`),
	regexp.MustCompile(`order\s*#?\s*(\d{4,})`),
	regexp.MustCompile(`order\s+number\s*:?\s*#?(\d{4,})`),
}

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

var amountPattern = regexp.MustCompile(`\$(\d+(?:\.\d{2})?)`)

// OrderNumber extracts an order number like "#1234", "order 1234" or
// "order number: 1234" from text. Returns "" when none is present.
func OrderNumber(text string) string {
	lower := strings.ToLower(text)
	for _, p := range orderNumberPatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			return m[1]
		}
	}
	return ""
}

// Email extracts the first email address from text, "" when absent.
func Email(text string) string {
	return emailPattern.FindString(text)
}

// Amount extracts the first dollar amount from text. The second return is
// false when no amount is present.
func Amount(text string) (float64, bool) {
	m := amountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
