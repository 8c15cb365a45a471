package screening

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/doeshing/nhscreen/internal/domain"
)

const (
	stuffingMinTokenLen = 3
	stuffingMaxTokens   = 15
)

var (
	associationRe  = regexp.MustCompile(`(?i)\b(?:association|relationship|correlation|link|impact|effect|influence|predictor)\b.*?\b(?:between|among|of|on|with)\b`)
	populationRe   = regexp.MustCompile(`(?i)\b(?:among|in|across|within)\b.*?\b(?:U\.S\.|US|American|population|adults|children|adolescents|participants|individuals|subjects|men|women|patient)\b`)
	studyDesignRe  = regexp.MustCompile(`(?i)\b(?:cross-sectional|longitudinal|cohort|survey|analysis|study)\b`)
	templatePhrase = regexp.MustCompile(`(?i)\b(?:data from the|using data from|analysis of|based on the)\b`)
	titleSplitRe   = regexp.MustCompile(`[\s,:-]+`)
)

// TitleAssessment breaks down how formulaic a title looks.
type TitleAssessment struct {
	Title          string
	Score          int
	TemplatePhrase bool
	Stuffed        bool
}

// Templated reports whether the assessment should fail the check.
func (a TitleAssessment) Templated() bool {
	return (a.Score >= 2 && a.TemplatePhrase) || a.Score >= 3 || a.Stuffed
}

// AssessTitle scores a title for association, population and design phrasing.
func AssessTitle(title string) TitleAssessment {
	a := TitleAssessment{Title: title}
	if associationRe.MatchString(title) {
		a.Score++
	}
	if populationRe.MatchString(title) {
		a.Score++
	}
	if studyDesignRe.MatchString(title) || datasetRe.MatchString(title) {
		a.Score++
	}
	a.TemplatePhrase = templatePhrase.MatchString(title)

	tokens := 0
	for _, tok := range titleSplitRe.Split(title, -1) {
		if utf8.RuneCountInString(tok) >= stuffingMinTokenLen {
			tokens++
		}
	}
	a.Stuffed = tokens > stuffingMaxTokens
	return a
}

// CheckTitleTemplate flags titles that follow the common association-study template.
func CheckTitleTemplate(text string) domain.CheckOutcome {
	title, _ := titleExtractor.Extract(text)
	if title == "" {
		return domain.CheckOutcome{
			Passed:  true,
			Details: "Could not reliably extract a title to check for templating.",
		}
	}

	a := AssessTitle(title)
	switch {
	case a.Score >= 2 && a.TemplatePhrase:
		return domain.CheckOutcome{
			Passed:  false,
			Details: fmt.Sprintf("Title %q appears potentially templated (Score: %d, Common Phrase: Yes). Contains common association/population/study elements.", title, a.Score),
		}
	case a.Score >= 3:
		return domain.CheckOutcome{
			Passed:  false,
			Details: fmt.Sprintf("Title %q appears strongly templated (Score: %d). Matches multiple common patterns.", title, a.Score),
		}
	case a.Stuffed:
		return domain.CheckOutcome{
			Passed:  false,
			Details: fmt.Sprintf("Title %q might be overly long or keyword-stuffed.", title),
		}
	}
	return domain.CheckOutcome{
		Passed:  true,
		Details: fmt.Sprintf("Title does not appear excessively templated (Score: %d, Common Phrase: %s).", a.Score, yesNo(a.TemplatePhrase)),
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
