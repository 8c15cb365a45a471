package screening

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/doeshing/nhscreen/internal/domain"
)

const (
	yearPattern  = `(?:19|20)\d{2}`
	rangeDash    = `\s*[-–—]\s*`
	datasetNames = `(?:NHANES|National Health and Nutrition Examination Survey)`
	leadIn       = `[\s,:()]*(?:data\s+)?(?:from\s+)?(?:the\s+)?(?:survey\s+)?(?:years?\s+)?(?:cycles?\s+)?`
)

var (
	// dataset name followed by a year or range, e.g. "NHANES data from 2017-2018"
	datasetThenYearRe = regexp.MustCompile(`(?i)` + datasetNames + leadIn + `\b(` + yearPattern + `)(?:` + rangeDash + `(` + yearPattern + `))?\b`)
	// year or range followed by the dataset name, e.g. "the 2017-2018 NHANES"
	yearThenDatasetRe = regexp.MustCompile(`(?i)\b(` + yearPattern + `)(?:` + rangeDash + `(` + yearPattern + `))?\s+(?:cycles?\s+(?:of\s+)?(?:the\s+)?)?` + datasetNames)
	// any year or range anywhere
	anyYearRe = regexp.MustCompile(`\b(` + yearPattern + `)(?:` + rangeDash + `(` + yearPattern + `))?\b`)
)

// yearSpan is a single year (End == 0) or a two-year range found in the text.
type yearSpan struct {
	Start   int
	End     int
	Context string
}

func (s yearSpan) isRange() bool { return s.End != 0 }

// latest is the most recent year the span refers to.
func (s yearSpan) latest() int {
	if s.End > s.Start {
		return s.End
	}
	return s.Start
}

func (s yearSpan) String() string {
	if s.isRange() {
		return fmt.Sprintf("%d-%d", s.Start, s.End)
	}
	return strconv.Itoa(s.Start)
}

// validCycle follows the survey's biennial naming: odd start, even end, one year apart.
func (s yearSpan) validCycle() bool {
	return s.isRange() && s.Start%2 == 1 && s.End%2 == 0 && s.End == s.Start+1
}

func findSpans(re *regexp.Regexp, text string) []yearSpan {
	var spans []yearSpan
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		start, _ := strconv.Atoi(m[1])
		end := 0
		if m[2] != "" {
			end, _ = strconv.Atoi(m[2])
		}
		spans = append(spans, yearSpan{Start: start, End: end, Context: strings.TrimSpace(m[0])})
	}
	return spans
}

// datasetSpans are years tied to a mention of the survey.
func datasetSpans(text string) []yearSpan {
	return append(findSpans(datasetThenYearRe, text), findSpans(yearThenDatasetRe, text)...)
}

func onlyRanges(spans []yearSpan) []yearSpan {
	var out []yearSpan
	for _, s := range spans {
		if s.isRange() {
			out = append(out, s)
		}
	}
	return out
}

// cycleRanges returns every range in the text once. A range named next to the
// survey keeps that surrounding phrase as its context.
func cycleRanges(text string) []yearSpan {
	var out []yearSpan
	seen := map[string]bool{}
	for _, r := range append(onlyRanges(datasetSpans(text)), onlyRanges(findSpans(anyYearRe, text))...) {
		if seen[r.String()] {
			continue
		}
		seen[r.String()] = true
		out = append(out, r)
	}
	return out
}

// CheckDateRange validates the survey cycles a manuscript reports.
func CheckDateRange(text string) domain.CheckOutcome {
	ranges := cycleRanges(text)
	if len(ranges) == 0 {
		return domain.CheckOutcome{
			Passed:  true,
			Details: "No specific NHANES cycle year ranges found to validate.",
		}
	}

	var valid, invalid []string
	for _, r := range ranges {
		if r.validCycle() {
			valid = appendUnique(valid, r.String())
			continue
		}
		label := r.String()
		if r.Context != label {
			label = fmt.Sprintf("%s (in %q)", label, r.Context)
		}
		invalid = appendUnique(invalid, label)
	}

	if len(valid) > 0 {
		details := fmt.Sprintf("Valid NHANES cycle date range(s) found: %s.", strings.Join(valid, ", "))
		if len(invalid) > 0 {
			details += fmt.Sprintf(" (Also found potentially invalid ranges: %s)", strings.Join(invalid, ", "))
		}
		return domain.CheckOutcome{Passed: true, Details: details}
	}
	return domain.CheckOutcome{
		Passed:  false,
		Details: fmt.Sprintf("No valid NHANES cycle ranges (odd start, even end, end = start+1) confirmed. Found ranges with issues: %s", strings.Join(invalid, ", ")),
	}
}

// latestCycleYear finds the most recent year tied to the survey, or failing
// that the most recent year anywhere. Zero means no year was found.
func latestCycleYear(text string) int {
	latest := 0
	for _, s := range datasetSpans(text) {
		latest = max(latest, s.latest())
	}
	if latest > 0 {
		return latest
	}
	for _, s := range findSpans(anyYearRe, text) {
		latest = max(latest, s.latest())
	}
	return latest
}

// RecencyCheck builds the cycle recency check against a clock and a staleness
// threshold in years.
func RecencyCheck(now func() time.Time, maxAgeYears int) CheckFunc {
	if now == nil {
		now = time.Now
	}
	if maxAgeYears <= 0 {
		maxAgeYears = domain.DefaultRecencyYears
	}
	return func(text string) domain.CheckOutcome {
		latest := latestCycleYear(text)
		if latest == 0 {
			return domain.CheckOutcome{
				Passed:  true,
				Details: "Could not determine the most recent NHANES cycle year used.",
			}
		}

		// an odd year is taken as the start of the cycle ending the following year
		cycleEnd := latest
		if cycleEnd%2 == 1 {
			cycleEnd++
		}
		age := now().Year() - cycleEnd

		if age < maxAgeYears {
			return domain.CheckOutcome{
				Passed:  true,
				Details: fmt.Sprintf("Most recent NHANES data likely ends around %d, which is %d years ago (within %d years).", cycleEnd, age, maxAgeYears),
			}
		}
		return domain.CheckOutcome{
			Passed:  false,
			Details: fmt.Sprintf("Most recent NHANES data likely ends around %d, which is %d years ago (%d years or more). Data might be outdated.", cycleEnd, age, maxAgeYears),
		}
	}
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
