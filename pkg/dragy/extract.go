package dragy

import (
	"regexp"
	"strconv"
	"strings"
)

// Window sizes, in runes, searched after a matched header.
const (
	ZeroToHundredWindow       = 60
	HundredToTwoHundredWindow = 80
)

var (
	yearBrandRE = regexp.MustCompile(`(?i)\b((?:19|20)\d{2})\s+([a-z][a-z0-9-]*(?:\s+[a-z][a-z0-9-]*){0,2})\b`)

	zeroToSixtyRule = inlineRule{
		pattern: regexp.MustCompile(`(?i)0\s*[-–]?\s*6[o0]\s*(?:m?ph?)?.{0,30}?([\d.,]+)\s*s?\b`),
	}

	quarterMileRule = inlineRule{
		pattern: regexp.MustCompile(`(?i)1/4\s*mile.{0,30}?([\d.,]+)\s*s?\b`),
	}

	zeroToHundredRule = windowRule{
		header: regexp.MustCompile(`(?i)[0O]\s*[-–]?\s*1[0O]{2}\s*km/?h`),
		time:   regexp.MustCompile(`(?i)([\d.,]+)\s*s\b`),
		window: ZeroToHundredWindow,
	}

	hundredToTwoHundredRule = windowRule{
		header: regexp.MustCompile(`(?i)1[0O]{2}\s*[-–]?\s*2[0O]{2}\s*km/?h`),
		time:   regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*s\b`),
		window: HundredToTwoHundredWindow,
		bounds: secondsRange{min: min100to200, max: max100to200},
	}
)

// Info holds the fields pulled out of one text blob. Every field is
// optional; nil means the rule did not produce a plausible value.
type Info struct {
	Year                   *int
	Brand                  *string
	ZeroToSixty            *float64
	ZeroToHundredKmh       *float64
	QuarterMile            *float64
	HundredToTwoHundredKmh *float64
	Debug100200            Debug100200
}

// ExtractInfo runs every field rule over the recognized text. Rules are
// independent: one failing to match never affects another.
func ExtractInfo(text string) Info {
	info := Info{Debug100200: Debug100200{TimeMatches: []string{}}}

	if year, brand, ok := ExtractYearBrand(text); ok {
		info.Year = &year
		info.Brand = &brand
	}
	if v, ok := ExtractZeroToSixty(text); ok {
		info.ZeroToSixty = &v
	}
	if v, ok := ExtractZeroToHundredKmh(text); ok {
		info.ZeroToHundredKmh = &v
	}
	if v, ok := ExtractQuarterMile(text); ok {
		info.QuarterMile = &v
	}

	m := hundredToTwoHundredRule.apply(text)
	if m.Found {
		info.Debug100200.Found = true
		info.Debug100200.MatchedText = m.Header
	}
	if m.Candidate != "" {
		info.Debug100200.TimeMatches = []string{m.Candidate}
	}
	if m.OK {
		v := m.Value
		info.HundredToTwoHundredKmh = &v
		sel := m.Value
		info.Debug100200.SelectedTime = &sel
	}
	return info
}

// ExtractYearBrand finds a model year followed by one to three name tokens.
// Only the first two tokens are kept as the brand (make plus first model
// word).
func ExtractYearBrand(text string) (int, string, bool) {
	m := yearBrandRE.FindStringSubmatch(text)
	if len(m) < 3 {
		return 0, "", false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil || !isPlausibleYear(year) {
		return 0, "", false
	}
	tokens := strings.Fields(m[2])
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}
	return year, strings.Join(tokens, " "), true
}

// ExtractZeroToSixty returns the 0-60 mph time.
func ExtractZeroToSixty(text string) (float64, bool) {
	return zeroToSixtyRule.apply(text)
}

// ExtractQuarterMile returns the 1/4 mile time.
func ExtractQuarterMile(text string) (float64, bool) {
	return quarterMileRule.apply(text)
}

// ExtractZeroToHundredKmh returns the 0-100 km/h time found within
// ZeroToHundredWindow runes of its header.
func ExtractZeroToHundredKmh(text string) (float64, bool) {
	m := zeroToHundredRule.apply(text)
	return m.Value, m.OK
}

// ExtractHundredToTwoHundredKmh returns the 100-200 km/h time found within
// HundredToTwoHundredWindow runes of its header, limited to 3-15 s.
func ExtractHundredToTwoHundredKmh(text string) (float64, bool) {
	m := hundredToTwoHundredRule.apply(text)
	return m.Value, m.OK
}
