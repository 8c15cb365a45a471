package screening

import (
	"github.com/montanaflynn/stats"

	"github.com/doeshing/nhscreen/internal/domain"
)

// Summary aggregates a batch of reports.
type Summary struct {
	Total        int                        `json:"total"`
	ByResult     map[domain.FinalResult]int `json:"byResult"`
	MeanPassed   float64                    `json:"meanPassedChecks"`
	MedianPassed float64                    `json:"medianPassedChecks"`
}

// Summarize counts verdicts per final result and describes how many checks
// passed per manuscript. Not-NHANES and Error reports count toward the
// totals but not toward the passed-check statistics.
func Summarize(reports []domain.Report) Summary {
	sum := Summary{
		Total:    len(reports),
		ByResult: map[domain.FinalResult]int{},
	}
	var passed stats.Float64Data
	for _, r := range reports {
		sum.ByResult[r.Verdict.FinalResult]++
		if r.Verdict.IsNHANES {
			passed = append(passed, float64(r.Verdict.PassedChecks()))
		}
	}
	if len(passed) == 0 {
		return sum
	}
	if mean, err := stats.Mean(passed); err == nil {
		sum.MeanPassed = mean
	}
	if median, err := stats.Median(passed); err == nil {
		sum.MedianPassed = median
	}
	return sum
}

// Failed counts reports that callers should treat as failures.
func (s Summary) Failed() int {
	return s.ByResult[domain.ResultFail] + s.ByResult[domain.ResultError]
}
