package dragy

import "testing"

func f64(v float64) *float64 { return &v }

func TestSummarizeCarDefaultsToZeroToHundred(t *testing.T) {
	rec := Record{ZeroToSixty: f64(4.2), ZeroToHundredKmh: f64(4.41)}
	s := Summarize(rec, SummaryOptions{})
	if s.Range != Range0to100kmh || s.ElapsedMs == nil || *s.ElapsedMs != 4410 || s.TargetSpeed != 100 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.VehicleType != VehicleCar || s.Error != "" {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestSummarizeMotorcycleUsesZeroToSixty(t *testing.T) {
	rec := Record{ZeroToSixty: f64(3.1), ZeroToHundredKmh: f64(3.4)}
	s := Summarize(rec, SummaryOptions{VehicleType: "Motorcycle", Range: "100-200"})
	if s.Range != Range0to60mph || *s.ElapsedMs != 3100 || s.TargetSpeed != 60 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestSummarizeRequestedRangeFallsBack(t *testing.T) {
	rec := Record{ZeroToSixty: f64(4.2), HundredToTwoHundredKmh: f64(9.5), QuarterMile: f64(12.8)}
	s := Summarize(rec, SummaryOptions{Range: "0-100km/h"})
	if s.Range != Range100to200kmh || *s.ElapsedMs != 9500 || s.TargetSpeed != 200 {
		t.Fatalf("expected fallback to 100-200 got %+v", s)
	}
	if s.QuarterMileMs == nil || *s.QuarterMileMs != 12800 {
		t.Fatalf("expected quarter mile 12800 got %v", s.QuarterMileMs)
	}
	s = Summarize(rec, SummaryOptions{Range: "0-200"})
	if s.Range != Range100to200kmh {
		t.Fatalf("expected 100-200 for 0-200 request got %+v", s)
	}
}

func TestSummarizeNothingDetected(t *testing.T) {
	s := Summarize(Record{}, SummaryOptions{})
	if s.ElapsedMs != nil || s.Range != Range0to60mph || s.Error == "" {
		t.Fatalf("expected error summary got %+v", s)
	}
}

func TestValidate(t *testing.T) {
	brand := "Ford Mustang"
	year := 2019
	s := &Summary{Brand: &brand, Year: &year}
	if v := Validate(s, Provided{Brand: "ford", Year: "2019"}); v.Verdict != VerdictOK || len(v.Reasons) != 0 {
		t.Fatalf("expected ok got %+v", v)
	}
	v := Validate(s, Provided{Brand: "Audi", Year: "2020"})
	if v.Verdict != VerdictMismatch || len(v.Reasons) != 2 || v.Reasons[0] != "brand-mismatch" || v.Reasons[1] != "year-mismatch" {
		t.Fatalf("expected both mismatches got %+v", v)
	}
	if v := Validate(nil, Provided{}); v.Verdict != VerdictUnknown {
		t.Fatalf("expected unknown got %+v", v)
	}
	if v := Validate(&Summary{}, Provided{Brand: "Audi", Year: "2020"}); v.Verdict != VerdictOK {
		t.Fatalf("expected ok when nothing detected got %+v", v)
	}
}

func TestAssembleCopiesInputs(t *testing.T) {
	frags := []string{"2019 Ford Mustang", "100-200km/h 20s"}
	blob := "2019 Ford Mustang 100-200km/h 20s"
	info := ExtractInfo(blob)
	rec := Assemble(frags, blob, info)
	frags[0] = "changed"
	if rec.Fragments[0] != "2019 Ford Mustang" || rec.RawText != blob {
		t.Fatalf("record shares caller state: %+v", rec)
	}
	if rec.HundredToTwoHundredKmh != nil || len(rec.Debug100200.TimeMatches) != 1 {
		t.Fatalf("unexpected 100-200 result %+v", rec.Debug100200)
	}
	got := rec.FieldsPresent()
	if len(got) != 2 || got[0] != "year" || got[1] != "brand" {
		t.Fatalf("unexpected present fields %v", got)
	}
}
