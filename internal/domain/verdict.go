package domain

import "strings"

// FinalResult enumerates the terminal outcomes of a screening run.
type FinalResult string

const (
	ResultNotNHANES FinalResult = "Not NHANES"
	ResultPass      FinalResult = "Pass"
	ResultFail      FinalResult = "Fail"
	ResultError     FinalResult = "Error"
)

// Detail line markers. Renderers use them to pick a style.
const (
	MarkerPass    = "✓"
	MarkerFail    = "✗"
	MarkerWarning = "⚠️"
)

// DetailStatus classifies a verdict detail line by its leading marker.
type DetailStatus string

const (
	DetailPass    DetailStatus = "pass"
	DetailFail    DetailStatus = "fail"
	DetailWarning DetailStatus = "warning"
	DetailInfo    DetailStatus = "info"
)

// CheckOutcome is what a single rule check reports.
type CheckOutcome struct {
	Passed  bool
	Details string
}

// CheckResult is one executed check as it appears in a Verdict.
type CheckResult struct {
	CheckName string `json:"checkName"`
	Passed    bool   `json:"passed"`
	Details   string `json:"details"`
	Step      int    `json:"step"`
	Critical  bool   `json:"critical"`
}

// Verdict is the outcome of screening one manuscript.
type Verdict struct {
	IsNHANES     bool          `json:"isNHANES"`
	FinalResult  FinalResult   `json:"finalResult"`
	Details      []string      `json:"details"`
	CheckResults []CheckResult `json:"checkResults"`
	FailStep     int           `json:"failStep"`
}

// NewErrorVerdict builds the verdict reported when evaluation faults.
func NewErrorVerdict(reason string) Verdict {
	return Verdict{
		FinalResult:  ResultError,
		Details:      []string{"An unexpected error occurred during analysis: " + reason},
		CheckResults: []CheckResult{},
	}
}

// PassedChecks counts the executed checks that passed.
func (v Verdict) PassedChecks() int {
	n := 0
	for _, r := range v.CheckResults {
		if r.Passed {
			n++
		}
	}
	return n
}

// Failed reports whether the verdict should be treated as a failure by callers.
func (v Verdict) Failed() bool {
	return v.FinalResult == ResultFail || v.FinalResult == ResultError
}

// StatusOf returns the status implied by a detail line's marker.
func StatusOf(line string) DetailStatus {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, MarkerPass):
		return DetailPass
	case strings.HasPrefix(trimmed, MarkerFail):
		return DetailFail
	case strings.HasPrefix(trimmed, MarkerWarning), strings.HasPrefix(trimmed, "⚠"):
		return DetailWarning
	default:
		return DetailInfo
	}
}

// StripMarker removes the leading status marker from a detail line.
func StripMarker(line string) string {
	trimmed := strings.TrimSpace(line)
	for _, marker := range []string{MarkerWarning, "⚠", MarkerPass, MarkerFail} {
		if strings.HasPrefix(trimmed, marker) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, marker))
		}
	}
	return trimmed
}
