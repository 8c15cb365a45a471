package screening

import (
	"strings"
	"testing"
)

func TestCheckDateRange(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		passed   bool
		contains string
	}{
		{"valid cycle", "We analysed NHANES 2017-2018.", true, "found: 2017-2018."},
		{"en dash", "NHANES 2015–2016 participants", true, "2015-2016"},
		{"year before name", "the 2013-2014 NHANES cycle", true, "2013-2014"},
		{"invalid cycle", "We analysed NHANES 2018-2019.", false, "2018-2019"},
		{"no ranges", "We analysed NHANES in a single year.", true, "No specific NHANES cycle year ranges"},
		{"valid with a stray range", "NHANES 2017-2018 and NHANES 2010-2012 were pooled.", true, "potentially invalid ranges: 2010-2012"},
		{"unanchored fallback", "We used NHANES. Participants were examined 2011-2012.", true, "2011-2012"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckDateRange(tt.text)
			if got.Passed != tt.passed {
				t.Fatalf("Passed = %v, want %v (%s)", got.Passed, tt.passed, got.Details)
			}
			if !strings.Contains(got.Details, tt.contains) {
				t.Fatalf("details %q missing %q", got.Details, tt.contains)
			}
		})
	}
}

func TestCheckDateRangeConsidersEveryRange(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		contains []string
	}{
		{
			name:     "valid range away from the survey name",
			text:     "We used NHANES 2018-2019 data. Results were compared with the 2017-2018 cycle.",
			contains: []string{"found: 2017-2018.", `2018-2019 (in "NHANES 2018-2019")`},
		},
		{
			name:     "pooled span with a later valid cycle",
			text:     "NHANES 2011-2018 pooled; earlier study used 2015-2016.",
			contains: []string{"found: 2015-2016.", "2011-2018"},
		},
		{
			name:     "anchored range reported once",
			text:     "We used NHANES 2017-2018. Prior work covered 2010-2020.",
			contains: []string{"found: 2017-2018.", "potentially invalid ranges: 2010-2020)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckDateRange(tt.text)
			if !got.Passed {
				t.Fatalf("expected pass: %s", got.Details)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got.Details, want) {
					t.Fatalf("details %q missing %q", got.Details, want)
				}
			}
		})
	}
}

func TestRecencyCheck(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxAge   int
		passed   bool
		contains string
	}{
		{"stale cycle", "NHANES 1999-2000", 10, false, "around 2000, which is 26 years ago"},
		{"recent cycle", "NHANES 2021-2022", 10, true, "around 2022, which is 4 years ago"},
		{"odd year is a cycle start", "NHANES 2017 data", 10, true, "around 2018"},
		{"threshold is exclusive", "NHANES 2015-2016", 10, false, "10 years ago"},
		{"custom threshold", "NHANES 2021-2022", 3, false, "(3 years or more)"},
		{"anchored years win", "NHANES 2005-2006 data. Published 2024.", 10, false, "around 2006"},
		{"no year at all", "NHANES", 10, true, "Could not determine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecencyCheck(fixedClock, tt.maxAge)(tt.text)
			if got.Passed != tt.passed {
				t.Fatalf("Passed = %v, want %v (%s)", got.Passed, tt.passed, got.Details)
			}
			if !strings.Contains(got.Details, tt.contains) {
				t.Fatalf("details %q missing %q", got.Details, tt.contains)
			}
		})
	}
}

func TestYearSpanValidCycle(t *testing.T) {
	tests := []struct {
		span yearSpan
		want bool
	}{
		{yearSpan{Start: 2017, End: 2018}, true},
		{yearSpan{Start: 2018, End: 2019}, false},
		{yearSpan{Start: 2015, End: 2018}, false},
		{yearSpan{Start: 2017}, false},
	}
	for _, tt := range tests {
		if got := tt.span.validCycle(); got != tt.want {
			t.Errorf("%s.validCycle() = %v, want %v", tt.span, got, tt.want)
		}
	}
}
