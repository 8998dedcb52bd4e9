package dragy

// Record is the structured result of one extraction. It is built once by
// Assemble and not modified afterwards.
type Record struct {
	Year                   *int        `json:"year"`
	Brand                  *string     `json:"brand"`
	ZeroToSixty            *float64    `json:"best_0_60_s"`
	ZeroToHundredKmh       *float64    `json:"best_0_100_s"`
	QuarterMile            *float64    `json:"quarter_mile_s"`
	HundredToTwoHundredKmh *float64    `json:"best_100_200_s"`
	RawText                string      `json:"raw_text"`
	Fragments              []string    `json:"debug_ocr"`
	Debug100200            Debug100200 `json:"debug_100_200"`
}

// Debug100200 records how the 100-200 km/h rule behaved.
type Debug100200 struct {
	Found        bool     `json:"found_100_200_text"`
	MatchedText  string   `json:"matched_text,omitempty"`
	TimeMatches  []string `json:"time_matches"`
	SelectedTime *float64 `json:"selected_time"`
}

// Assemble packages the recognized fragments, the joined blob and the
// extracted fields into a Record.
func Assemble(fragments []string, blob string, info Info) Record {
	frags := make([]string, len(fragments))
	copy(frags, fragments)
	dbg := info.Debug100200
	dbg.TimeMatches = append([]string{}, dbg.TimeMatches...)
	return Record{
		Year:                   info.Year,
		Brand:                  info.Brand,
		ZeroToSixty:            info.ZeroToSixty,
		ZeroToHundredKmh:       info.ZeroToHundredKmh,
		QuarterMile:            info.QuarterMile,
		HundredToTwoHundredKmh: info.HundredToTwoHundredKmh,
		RawText:                blob,
		Fragments:              frags,
		Debug100200:            dbg,
	}
}

// FieldsPresent lists the JSON names of the optional fields that were set.
func (r Record) FieldsPresent() []string {
	var out []string
	if r.Year != nil {
		out = append(out, "year")
	}
	if r.Brand != nil {
		out = append(out, "brand")
	}
	if r.ZeroToSixty != nil {
		out = append(out, "best_0_60_s")
	}
	if r.ZeroToHundredKmh != nil {
		out = append(out, "best_0_100_s")
	}
	if r.QuarterMile != nil {
		out = append(out, "quarter_mile_s")
	}
	if r.HundredToTwoHundredKmh != nil {
		out = append(out, "best_100_200_s")
	}
	return out
}
