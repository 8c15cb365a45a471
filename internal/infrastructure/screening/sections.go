package screening

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Strategy extracts one section of a manuscript. It returns "" when the
// section cannot be located.
type Strategy struct {
	Name    string
	Extract func(text string) string
}

// Extractor tries its strategies in rank order and keeps the first hit.
type Extractor []Strategy

// Extract returns the first non-empty section and the name of the strategy
// that produced it.
func (e Extractor) Extract(text string) (section string, strategy string) {
	for _, s := range e {
		if out := strings.TrimSpace(s.Extract(text)); out != "" {
			return out, s.Name
		}
	}
	return "", ""
}

const (
	frontMatterScanChars = 3000
	frontMatterChars     = 1000
)

var (
	labelledTitleRe = regexp.MustCompile(`(?i)^Title\s*[:\s]\s*([^\n]+)`)
	leadingLineRe   = regexp.MustCompile(`^([^\n]+)`)

	abstractRe = regexp.MustCompile(`(?is)\bAbstract\b(.*?)(?:\n\s*(?:Keywords|Introduction|Background|Methods)\b|\n{2,})`)

	authorBlockRe = regexp.MustCompile(`(?is)\bAbstract\b.*?\n\s*(?:Authors?|Affiliations?)\b\s*[:\n]?(.*?)(?:\n\s*(?:Introduction|Background|Methods|Results|Discussion|Conclusion|References|Acknowledgments)\b|\n{3,})`)

	emailRe       = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@([A-Za-z0-9.-]+\.[A-Za-z]{2,})\b`)
	affiliationRe = regexp.MustCompile(`(?i)\b(?:Department|Dept|Division|School|Faculty|Center|Institute|Hospital|University|College)\b`)
)

// LabelledTitle reads a title introduced by a "Title" label on the first line.
func LabelledTitle(text string) string {
	return firstGroup(labelledTitleRe, text)
}

// LeadingLine returns the very first line of the text.
func LeadingLine(text string) string {
	return firstGroup(leadingLineRe, text)
}

// FirstNonEmptyLine skips leading blank lines.
func FirstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if labelled := LabelledTitle(trimmed); labelled != "" {
			return labelled
		}
		return trimmed
	}
	return ""
}

// LabelledAbstract returns the text after an "Abstract" label up to the next
// structural heading or paragraph break.
func LabelledAbstract(text string) string {
	return firstGroup(abstractRe, text)
}

// LabelledAuthors returns an "Authors"/"Affiliations" block that follows the abstract.
func LabelledAuthors(text string) string {
	return firstGroup(authorBlockRe, text)
}

// FrontMatter falls back to the opening of the manuscript when it looks like
// it carries author details.
func FrontMatter(text string) string {
	head := runePrefix(text, frontMatterScanChars)
	if emailRe.MatchString(head) || affiliationRe.MatchString(head) {
		return runePrefix(head, frontMatterChars)
	}
	return ""
}

// Ranked extractors. Order matters.
var (
	titleExtractor = Extractor{
		{Name: "labelled-title", Extract: LabelledTitle},
		{Name: "leading-line", Extract: LeadingLine},
	}
	topicTitleExtractor = Extractor{
		{Name: "labelled-title", Extract: LabelledTitle},
		{Name: "leading-line", Extract: LeadingLine},
		{Name: "first-non-empty-line", Extract: FirstNonEmptyLine},
	}
	abstractExtractor = Extractor{
		{Name: "labelled-abstract", Extract: LabelledAbstract},
	}
	authorExtractor = Extractor{
		{Name: "labelled-authors", Extract: LabelledAuthors},
		{Name: "front-matter", Extract: FrontMatter},
	}
)

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// runePrefix returns at most n characters of s without splitting a rune.
func runePrefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
