package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// matcher finds one kind of date expression. resolve turns the submatches of
// a single occurrence into a date relative to today, or reports that the
// occurrence does not denote a real calendar date.
type matcher struct {
	name    string
	re      *regexp.Regexp
	resolve func(groups []string, today time.Time) (time.Time, bool)
}

const keywords = `(?:on|due|by|at|for)`

// matchers are tried in priority order. Within one matcher, occurrences are
// tried left to right.
var matchers = []matcher{
	{
		name: "next week",
		re:   regexp.MustCompile(`(?i)next\s+week`),
		resolve: func(_ []string, today time.Time) (time.Time, bool) {
			return today.AddDate(0, 0, 7), true
		},
	},
	{
		name: "next month",
		re:   regexp.MustCompile(`(?i)next\s+month`),
		resolve: func(_ []string, today time.Time) (time.Time, bool) {
			return today.AddDate(0, 1, 0), true
		},
	},
	{
		name: "next year",
		re:   regexp.MustCompile(`(?i)next\s+year`),
		resolve: func(_ []string, today time.Time) (time.Time, bool) {
			return today.AddDate(1, 0, 0), true
		},
	},
	{
		name: "keyword iso date",
		// Both separators must agree, so 2024-05/01 is not a date.
		re: regexp.MustCompile(`(?i)` + keywords +
			`\s+(?:(\d{4})-(\d{1,2})-(\d{1,2})|(\d{4})/(\d{1,2})/(\d{1,2}))`),
		resolve: func(g []string, today time.Time) (time.Time, bool) {
			if g[1] == "" {
				return calendarDate(g[4], g[5], g[6], today.Location())
			}
			return calendarDate(g[1], g[2], g[3], today.Location())
		},
	},
	{
		name: "keyword us date",
		re:   regexp.MustCompile(`(?i)` + keywords + `\s+(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})`),
		resolve: func(g []string, today time.Time) (time.Time, bool) {
			return calendarDate(g[3], g[1], g[2], today.Location())
		},
	},
	{
		name: "weekday",
		re: regexp.MustCompile(`(?i)(?:(next)\s+)?(monday|mon|tuesday|tues|tue|wednesday|wed|` +
			`thursday|thurs|thur|thu|friday|fri|saturday|sat|sunday|sun)`),
		resolve: func(g []string, today time.Time) (time.Time, bool) {
			wd, ok := weekdays[strings.ToLower(g[2])]
			if !ok {
				return time.Time{}, false
			}
			return nextWeekday(today, wd), true
		},
	},
	{
		name: "today",
		re:   regexp.MustCompile(`(?i)today`),
		resolve: func(_ []string, today time.Time) (time.Time, bool) {
			return today, true
		},
	},
	{
		name: "tomorrow",
		re:   regexp.MustCompile(`(?i)tomorrow`),
		resolve: func(_ []string, today time.Time) (time.Time, bool) {
			return today.AddDate(0, 0, 1), true
		},
	},
	{
		name: "iso date",
		re:   regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`),
		resolve: func(g []string, today time.Time) (time.Time, bool) {
			return calendarDate(g[1], g[2], g[3], today.Location())
		},
	},
	{
		name: "us date",
		re:   regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`),
		resolve: func(g []string, today time.Time) (time.Time, bool) {
			return calendarDate(g[3], g[1], g[2], today.Location())
		},
	},
	{
		name: "month and day",
		re:   regexp.MustCompile(`(\d{1,2})/(\d{1,2})`),
		resolve: func(g []string, today time.Time) (time.Time, bool) {
			return calendarDate(strconv.Itoa(today.Year()), g[1], g[2], today.Location())
		},
	},
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tues": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thurs": time.Thursday, "thur": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// nextWeekday returns the first day strictly after today that falls on wd.
// Naming today's own weekday therefore means the same day next week.
func nextWeekday(today time.Time, wd time.Weekday) time.Time {
	diff := (int(wd) - int(today.Weekday()) + 7) % 7
	if diff == 0 {
		diff = 7
	}
	return today.AddDate(0, 0, diff)
}

// calendarDate validates and builds a date from its numeric parts. Two digit
// years are taken as 20xx. Dates that do not exist, like February 30th, are
// rejected instead of rolling over into the next month.
func calendarDate(year, month, day string, loc *time.Location) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, false
	}

	if len(year) == 2 {
		y += 2000
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
