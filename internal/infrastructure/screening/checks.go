package screening

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/doeshing/nhscreen/internal/domain"
)

// CheckFunc evaluates one heuristic against the full manuscript text.
type CheckFunc func(text string) domain.CheckOutcome

type namedPattern struct {
	label string
	re    *regexp.Regexp
}

func patterns(pairs ...string) []namedPattern {
	out := make([]namedPattern, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, namedPattern{label: pairs[i], re: regexp.MustCompile(pairs[i+1])})
	}
	return out
}

func matchedLabels(text string, set []namedPattern) []string {
	var found []string
	for _, p := range set {
		if p.re.MatchString(text) {
			found = append(found, p.label)
		}
	}
	return found
}

var datasetRe = regexp.MustCompile(`(?i)\bNHANES\b|\bNational Health and Nutrition Examination Survey\b`)

// MentionsNHANES is the gate: does the manuscript name the survey at all.
func MentionsNHANES(text string) bool {
	return datasetRe.MatchString(text)
}

const minCitationElements = 2

var (
	citationPatterns = patterns(
		"CDC named in full", `(?i)Centers for Disease Control and Prevention \(CDC\)`,
		"NCHS named in full", `(?i)National Center for Health Statistics \(NCHS\)`,
		"NHANES website", `(?i)https?://www\.cdc\.gov/nchs/nhanes`,
		"NCHS ethics approval", `(?i)NHANES protocol was approved by the NCHS Research Ethics Review Board`,
		"public availability statement", `(?i)NHANES data are publicly available`,
	)
	methodsSectionRe = regexp.MustCompile(`(?i)\b(?:methods?|methodology)\b`)
)

// CheckCitation requires at least two citation elements and a methods section.
func CheckCitation(text string) domain.CheckOutcome {
	found := matchedLabels(text, citationPatterns)
	hasMethods := methodsSectionRe.MatchString(text)

	if len(found) >= minCitationElements && hasMethods {
		return domain.CheckOutcome{
			Passed:  true,
			Details: fmt.Sprintf("NHANES properly cited. Found %d citation elements (%s) and a methods section.", len(found), strings.Join(found, ", ")),
		}
	}

	var issues []string
	if len(found) < minCitationElements {
		issues = append(issues, fmt.Sprintf("Missing proper NHANES citation elements (found only %d, need at least %d)", len(found), minCitationElements))
	}
	if !hasMethods {
		issues = append(issues, "No apparent methods section found")
	}
	return domain.CheckOutcome{
		Passed:  false,
		Details: "NHANES citation issues: " + strings.Join(issues, "; "),
	}
}

const minSurveyDesignTerms = 2

var surveyDesignPatterns = patterns(
	"complex survey design", `(?i)\bcomplex\s+(?:survey|sampling)\s+design\b`,
	"multistage design", `(?i)\bmultistage\s+(?:sampling|design)\b`,
	"stratified design", `(?i)\bstratified\s+(?:sampling|design)\b`,
	"cluster design", `(?i)\bcluster\s+(?:sampling|design)\b`,
	"sampling weights", `(?i)\bsampling\s+weights?\b`,
	"weighted analysis", `(?i)\bweighted\s+analysis\b`,
	"survey procedures", `(?i)\bsurvey\s+procedures?\b`,
)

// CheckSurveyDesign looks for acknowledgment of the complex sampling design.
func CheckSurveyDesign(text string) domain.CheckOutcome {
	found := matchedLabels(text, surveyDesignPatterns)
	if len(found) >= minSurveyDesignTerms {
		return domain.CheckOutcome{
			Passed:  true,
			Details: fmt.Sprintf("Complex survey design acknowledged (%d terms: %s).", len(found), strings.Join(found, ", ")),
		}
	}
	return domain.CheckOutcome{
		Passed:  false,
		Details: fmt.Sprintf("Missing adequate acknowledgment of complex survey design (found only %d terms, need at least %d).", len(found), minSurveyDesignTerms),
	}
}

const minWeightingTerms = 2

var (
	weightingPatterns = patterns(
		"sampling weights", `(?i)\bsampling\s+weights?\b`,
		"survey weights", `(?i)\bsurvey\s+weights?\b`,
		"weighted estimates", `(?i)\bweighted\s+(?:analysis|results|data)\b`,
		"weights applied", `(?i)\bweights\s+were\s+applied\b`,
		"design-adjusted analysis", `(?i)\baccounting\s+for\s+(?:the\s+)?complex\s+(?:survey|sampling)\s+design\b`,
		"SURVEYMEANS", `(?i)\bSURVEYMEANS?\b`,
		"SURVEYREG", `(?i)\bSURVEYREG\b`,
		"SURVEYLOGISTIC", `(?i)\bSURVEYLOGISTIC\b`,
		"svyset", `(?i)\bsvyset\b`,
		"svy", `(?i)\bsvy\b`,
	)
	softwarePatterns = patterns(
		"R", `\bR\s+(?:software|package|version|statistical|\d)`,
		"SAS", `(?i)\bSAS\b`,
		"Stata", `(?i)\bSTATA\b`,
		"SPSS", `(?i)\bSPSS\b`,
		"SUDAAN", `(?i)\bSUDAAN\b`,
	)
)

// CheckWeighting requires weighting terminology and a statistical package.
func CheckWeighting(text string) domain.CheckOutcome {
	terms := matchedLabels(text, weightingPatterns)
	software := matchedLabels(text, softwarePatterns)

	if len(terms) >= minWeightingTerms && len(software) > 0 {
		return domain.CheckOutcome{
			Passed:  true,
			Details: fmt.Sprintf("Weighting methodology described (%d weighting terms; software: %s).", len(terms), strings.Join(software, ", ")),
		}
	}

	var issues []string
	if len(terms) < minWeightingTerms {
		issues = append(issues, fmt.Sprintf("Insufficient mention of weighting methodology (found only %d, need at least %d)", len(terms), minWeightingTerms))
	}
	if len(software) == 0 {
		issues = append(issues, "No statistical software mentioned")
	}
	return domain.CheckOutcome{
		Passed:  false,
		Details: "Weighting methodology issues: " + strings.Join(issues, "; "),
	}
}
