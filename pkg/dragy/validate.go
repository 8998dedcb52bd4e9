package dragy

import (
	"strconv"
	"strings"
)

// Verdicts returned by Validate.
const (
	VerdictOK       = "ok"
	VerdictMismatch = "mismatch"
	VerdictUnknown  = "unknown"
)

// Provided is what the uploader claims about the car.
type Provided struct {
	Brand string
	Year  string
}

// Validation compares detected car details with the claimed ones.
type Validation struct {
	Verdict string   `json:"verdict"`
	Reasons []string `json:"reasons"`
}

// Validate flags a brand or year that disagrees with what the uploader
// provided. Missing values on either side are not a mismatch.
func Validate(s *Summary, p Provided) Validation {
	if s == nil {
		return Validation{Verdict: VerdictUnknown, Reasons: []string{"no summary"}}
	}
	reasons := []string{}
	brand := strings.TrimSpace(p.Brand)
	if brand != "" && s.Brand != nil && *s.Brand != "" {
		if !strings.Contains(strings.ToLower(*s.Brand), strings.ToLower(brand)) {
			reasons = append(reasons, "brand-mismatch")
		}
	}
	year := strings.TrimSpace(p.Year)
	if year != "" && s.Year != nil {
		if year != strconv.Itoa(*s.Year) {
			reasons = append(reasons, "year-mismatch")
		}
	}
	if len(reasons) == 0 {
		return Validation{Verdict: VerdictOK, Reasons: reasons}
	}
	return Validation{Verdict: VerdictMismatch, Reasons: reasons}
}
