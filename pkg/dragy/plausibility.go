package dragy

const (
	minYear = 1900
	maxYear = 2099

	// 100-200 km/h runs outside this band are misreads of a nearby readout.
	min100to200 = 3.0
	max100to200 = 15.0
)

// secondsRange is an inclusive plausibility band. The zero value only
// requires a positive time.
type secondsRange struct {
	min, max float64
}

func (r secondsRange) contains(v float64) bool {
	if v <= 0 {
		return false
	}
	if r.min == 0 && r.max == 0 {
		return true
	}
	return v >= r.min && v <= r.max
}

func isPlausibleYear(y int) bool {
	return y >= minYear && y <= maxYear
}
