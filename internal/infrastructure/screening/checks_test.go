package screening

import (
	"strings"
	"testing"
)

func TestMentionsNHANES(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"We used nhanes data.", true},
		{"Data from the National Health and Nutrition Examination Survey.", true},
		{"(NHANES)", true},
		{"NHANESIII cohort", false},
		{"National Health Interview Survey", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := MentionsNHANES(tt.text); got != tt.want {
			t.Errorf("MentionsNHANES(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestCheckCitation(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		passed   bool
		contains string
	}{
		{
			name:     "two elements and methods",
			text:     "Methods\nThe National Center for Health Statistics (NCHS) runs it. See https://www.cdc.gov/nchs/nhanes for details.",
			passed:   true,
			contains: "Found 2 citation elements",
		},
		{
			name:     "one element only",
			text:     "Methods\nSee https://www.cdc.gov/nchs/nhanes.",
			passed:   false,
			contains: "found only 1, need at least 2",
		},
		{
			name:     "no methods section",
			text:     "NHANES data are publicly available. The Centers for Disease Control and Prevention (CDC) conducts it.",
			passed:   false,
			contains: "No apparent methods section found",
		},
		{
			name:     "methodology counts as methods",
			text:     "Our methodology: NHANES data are publicly available and the NHANES protocol was approved by the NCHS Research Ethics Review Board.",
			passed:   true,
			contains: "NCHS ethics approval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckCitation(tt.text)
			if got.Passed != tt.passed {
				t.Fatalf("Passed = %v, want %v (%s)", got.Passed, tt.passed, got.Details)
			}
			if !strings.Contains(got.Details, tt.contains) {
				t.Fatalf("details %q missing %q", got.Details, tt.contains)
			}
			if !tt.passed && !strings.HasPrefix(got.Details, "NHANES citation issues: ") {
				t.Fatalf("failure details should be prefixed, got %q", got.Details)
			}
		})
	}
}

func TestCheckSurveyDesign(t *testing.T) {
	pass := CheckSurveyDesign("We accounted for the complex survey design and used sampling weights.")
	if !pass.Passed {
		t.Fatalf("expected pass: %s", pass.Details)
	}
	fail := CheckSurveyDesign("We used sampling weights.")
	if fail.Passed {
		t.Fatalf("one term should not be enough: %s", fail.Details)
	}
}

func TestCheckWeighting(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		passed bool
	}{
		{"weights and SAS", "Sampling weights were used. Weights were applied in SAS.", true},
		{"stata svy", "We used svyset and survey weights in Stata.", true},
		{"R needs a qualifier", "Survey weights and weighted analysis using R software 4.2.", true},
		{"lowercase r is not R", "Survey weights and weighted analysis using r software.", false},
		{"no software", "Survey weights and weighted analysis throughout.", false},
		{"software without weights", "Analyses were done in SPSS.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckWeighting(tt.text)
			if got.Passed != tt.passed {
				t.Fatalf("Passed = %v, want %v (%s)", got.Passed, tt.passed, got.Details)
			}
		})
	}
}
