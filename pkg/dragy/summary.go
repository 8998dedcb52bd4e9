package dragy

import (
	"fmt"
	"math"
	"strings"
)

// Range labels reported in a Summary.
const (
	Range0to60mph     = "0-60mph"
	Range0to100kmh    = "0-100km/h"
	Range100to200kmh  = "100-200km/h"
	VehicleCar        = "car"
	VehicleMotorcycle = "motorcycle"
)

// SummaryOptions selects which headline time a Summary reports.
type SummaryOptions struct {
	VehicleType string
	Range       string
}

// Summary is the headline view of a Record used by API clients.
type Summary struct {
	VehicleType   string  `json:"vehicle_type"`
	Range         string  `json:"range"`
	Brand         *string `json:"brand"`
	Year          *int    `json:"year"`
	ElapsedMs     *int64  `json:"best_elapsed_ms"`
	QuarterMileMs *int64  `json:"quarter_mile_ms"`
	TargetSpeed   int     `json:"target_speed"`
	Error         string  `json:"error,omitempty"`
}

type pick struct {
	secs  *float64
	label string
	speed int
}

// Summarize chooses the elapsed time that best answers the requested range.
// Motorcycles always report 0-60 mph. Cars honour an explicit range and
// otherwise prefer 0-100 km/h over 0-60 mph. When the chosen time is
// missing it falls back to 0-100, then 100-200, then 0-60.
func Summarize(rec Record, opts SummaryOptions) Summary {
	vehicle := strings.ToLower(strings.TrimSpace(opts.VehicleType))
	if vehicle == "" {
		vehicle = VehicleCar
	}
	want := strings.ToLower(opts.Range)

	p060 := pick{rec.ZeroToSixty, Range0to60mph, 60}
	p0100 := pick{rec.ZeroToHundredKmh, Range0to100kmh, 100}
	p100200 := pick{rec.HundredToTwoHundredKmh, Range100to200kmh, 200}

	var chosen pick
	switch {
	case vehicle == VehicleMotorcycle:
		chosen = p060
	case strings.Contains(want, "100-200") || strings.Contains(want, "0-200"):
		chosen = p100200
	case strings.Contains(want, "0-100"):
		chosen = p0100
	case p0100.secs != nil:
		chosen = p0100
	default:
		chosen = p060
	}
	if chosen.secs == nil {
		for _, fb := range []pick{p0100, p100200, p060} {
			if fb.secs != nil {
				chosen = fb
				break
			}
		}
	}

	s := Summary{
		VehicleType:   vehicle,
		Range:         chosen.label,
		Brand:         rec.Brand,
		Year:          rec.Year,
		ElapsedMs:     toMillis(chosen.secs),
		QuarterMileMs: toMillis(rec.QuarterMile),
		TargetSpeed:   chosen.speed,
	}
	if s.ElapsedMs == nil {
		s.Error = fmt.Sprintf("no time detected for requested range: %s", chosen.label)
	}
	return s
}

func toMillis(secs *float64) *int64 {
	if secs == nil {
		return nil
	}
	ms := int64(math.Round(*secs * 1000))
	return &ms
}
