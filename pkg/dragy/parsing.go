package dragy

import (
	"strconv"
	"strings"
)

// ParseSeconds turns a captured time token such as "9,5" or "12.8" into
// seconds. OCR renders the decimal separator as either a comma or a period.
// Anything that is not a plain number after normalization reports false.
func ParseSeconds(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
