// Package dateparse extracts a due date from free text typed as a task title.
//
// Parse recognises relative terms ("today", "tomorrow", "next week"), weekday
// names and numeric dates. Expressions are tried in a fixed priority order;
// the first valid occurrence wins and is cut out of the text together with a
// preceding "on", "due", "by", "at" or "for".
package dateparse

import (
	"regexp"
	"strings"
	"time"
)

// DateLayout is the format of Result.Date.
const DateLayout = "2006-01-02"

// Result is the outcome of Parse.
type Result struct {
	// Date is the resolved date as YYYY-MM-DD, empty when no date was found.
	Date string
	// Remaining is the input with the date expression removed.
	Remaining string
	// Expression is the text that was recognised, keyword included.
	Expression string
}

// Found reports whether a date was extracted.
func (r Result) Found() bool {
	return r.Date != ""
}

// Time returns the resolved date at midnight in loc.
func (r Result) Time(loc *time.Location) (time.Time, bool) {
	if !r.Found() {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, r.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var leadingKeyword = regexp.MustCompile(`(?i)(?:^|\s)((?:on|due|by|at|for)\s+)$`)

// Parse looks for a date expression in text. Relative expressions are
// resolved against the local midnight of now. When nothing matches, the
// result carries the original text untouched.
func Parse(text string, now time.Time) Result {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, m := range matchers {
		for _, loc := range m.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[0], loc[1]
			if !isBoundary(text, start-1) || !isBoundary(text, end) {
				continue
			}

			date, ok := m.resolve(submatches(text, loc), today)
			if !ok {
				continue
			}

			if k := leadingKeyword.FindStringSubmatchIndex(text[:start]); k != nil {
				start = k[2]
			}

			return Result{
				Date:       date.Format(DateLayout),
				Remaining:  join(text[:start], text[end:]),
				Expression: strings.TrimSpace(text[start:end]),
			}
		}
	}

	return Result{Remaining: text}
}

func submatches(text string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = text[loc[2*i]:loc[2*i+1]]
		}
	}
	return groups
}

// isBoundary reports whether the byte at i may sit next to a date
// expression: out of range, whitespace or sentence punctuation.
func isBoundary(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	switch c := text[i]; c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	default:
		return strings.IndexByte(`.,;:!?()[]{}"'`, c) >= 0
	}
}

var closers = map[byte]byte{'(': ')', '[': ']', '{': '}', '"': '"', '\'': '\''}

// join glues the text around a removed expression. An emptied bracket or
// quote pair is dropped, as is punctuation that trailed the expression.
func join(left, right string) string {
	left = strings.TrimRight(left, whitespace)
	right = strings.TrimLeft(right, whitespace)

	if left != "" && right != "" {
		if c, ok := closers[left[len(left)-1]]; ok && c == right[0] {
			left, right = left[:len(left)-1], right[1:]
		}
	}

	right = strings.TrimLeft(right, ".,;:!?")
	if strings.TrimSpace(right) == "" {
		left = strings.TrimRight(left, ",;:"+whitespace)
	}
	return collapse(left + " " + right)
}

const whitespace = " \t\n\r\f\v"

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
