package dragy

import (
	"regexp"
	"unicode/utf8"
)

// windowAfter returns at most n runes of text starting at byte offset from.
func windowAfter(text string, from, n int) string {
	if from < 0 || from >= len(text) || n <= 0 {
		return ""
	}
	end := from
	for i := 0; i < n && end < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	return text[from:end]
}

// windowRule finds a header and then looks for a time token only within a
// bounded window after it.
type windowRule struct {
	header *regexp.Regexp
	time   *regexp.Regexp
	window int
	bounds secondsRange
}

// windowMatch describes one application of a windowRule.
type windowMatch struct {
	Found     bool
	Header    string
	Candidate string
	Value     float64
	OK        bool
}

func (r windowRule) apply(text string) windowMatch {
	var m windowMatch
	loc := r.header.FindStringIndex(text)
	if loc == nil {
		return m
	}
	m.Found = true
	m.Header = text[loc[0]:loc[1]]
	sub := r.time.FindStringSubmatch(windowAfter(text, loc[1], r.window))
	if len(sub) < 2 {
		return m
	}
	v, ok := ParseSeconds(sub[1])
	if !ok {
		return m
	}
	m.Candidate = sub[1]
	m.Value = v
	m.OK = r.bounds.contains(v)
	return m
}

// inlineRule captures the time within the header pattern itself; the
// tolerance between label and value is encoded in the pattern.
type inlineRule struct {
	pattern *regexp.Regexp
	bounds  secondsRange
}

func (r inlineRule) apply(text string) (float64, bool) {
	sub := r.pattern.FindStringSubmatch(text)
	if len(sub) < 2 {
		return 0, false
	}
	v, ok := ParseSeconds(sub[1])
	if !ok || !r.bounds.contains(v) {
		return 0, false
	}
	return v, true
}
