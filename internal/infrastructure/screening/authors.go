package screening

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/doeshing/nhscreen/internal/domain"
)

var consumerMailDomains = map[string]bool{
	"gmail.com":      true,
	"yahoo.com":      true,
	"hotmail.com":    true,
	"outlook.com":    true,
	"aol.com":        true,
	"icloud.com":     true,
	"protonmail.com": true,
	"qq.com":         true,
	"163.com":        true,
	"mail.com":       true,
	"yandex.com":     true,
}

// relevantAffiliations maps a topic to department keywords that plausibly
// produce research on it.
var relevantAffiliations = map[string][]string{
	"Cardiovascular":                    {"cardiology", "cardiovascular", "vascular", "heart", "preventive medicine", "internal medicine"},
	"Nutrition/Diet":                    {"nutrition", "dietetics", "food science", "public health", "preventive medicine", "metabolism"},
	"Metabolic/Endocrine":               {"endocrinology", "metabolic", "diabetes", "obesity", "medicine", "internal medicine"},
	"Epidemiology/Public Health":        {"epidemiology", "public health", "biostatistics", "community health", "preventive medicine", "statistics", "population health", "global health"},
	"Mental Health/Neurology":           {"psychiatry", "psychology", "neurology", "behavioral", "neuroscience", "mental health"},
	"Respiratory":                       {"pulmonary", "respiratory", "medicine", "internal medicine", "sleep"},
	"Oncology":                          {"oncology", "cancer", "medicine"},
	"Pediatrics":                        {"pediatrics", "child health", "adolescent medicine"},
	"Geriatrics":                        {"geriatrics", "gerontology", "aging"},
	"Renal/Urology":                     {"nephrology", "renal", "kidney", "urology"},
	"Musculoskeletal/Physical Activity": {"kinesiology", "exercise science", "sports medicine", "orthopedics", "physical therapy", "rehabilitation", "bone"},
	"Environmental Health":              {"environmental health", "toxicology", "public health", "occupational health", "exposure science"},
	"Infectious Disease":                {"infectious disease", "virology", "microbiology", "immunology"},
	"Gastroenterology":                  {"gastroenterology", "hepatology", "digestive disease"},
	"Allergy/Immunology":                {"allergy", "immunology", "inflammation"},
	GeneralTopic:                        {"medicine", "health science", "public health", "biology", "biostatistics", "statistics", "internal medicine", "family medicine", "preventive medicine", "nursing", "pharmacy"},
}

var (
	departmentRe        = regexp.MustCompile(`(?i)\b(?:Department|Dept|Division|School|Faculty|Center|Institute|Hospital|University|College|Laboratory|Program|Unit|Clinic)\s+(?:of\s+)?([A-Za-z\s,&'-]+)`)
	trailingPunctRe     = regexp.MustCompile(`[\d,.;]+$`)
	dataCollectionClaim = regexp.MustCompile(`(?i)\b(?:we|authors?)\s+(?:collected|gathered|obtained|acquired|assembled|recruited)\s+(?:(?:the|these|our)\s+)?(?:participants|subjects|(?:NHANES\s+)?data)\b`)
)

// AuthorFlags are the independent red flags raised on an author block.
type AuthorFlags struct {
	Emails            int
	ConsumerEmails    int
	Affiliations      int
	RelevantAffils    int
	Topics            []string
	ClaimsCollection  bool
	ConsumerMajority  bool
	AffiliationDrift  bool
	AuthorBlockSource string
}

// Count returns how many flags are raised.
func (f AuthorFlags) Count() int {
	n := 0
	for _, raised := range []bool{f.ConsumerMajority, f.AffiliationDrift, f.ClaimsCollection} {
		if raised {
			n++
		}
	}
	return n
}

// AssessAuthors inspects the author block of a manuscript. ok is false when
// no author information could be located.
func AssessAuthors(text string) (flags AuthorFlags, ok bool) {
	block, source := authorExtractor.Extract(text)
	if block == "" {
		return AuthorFlags{}, false
	}
	flags.AuthorBlockSource = source
	flags.Topics = ExtractTopics(text)

	for _, m := range emailRe.FindAllStringSubmatch(block, -1) {
		flags.Emails++
		if consumerMailDomains[strings.ToLower(m[1])] {
			flags.ConsumerEmails++
		}
	}
	flags.ConsumerMajority = flags.Emails > 0 && float64(flags.ConsumerEmails)/float64(flags.Emails) > 0.5

	affils := uniqueAffiliations(block)
	flags.Affiliations = len(affils)
	for _, affil := range affils {
		if affiliationRelevant(affil, flags.Topics) {
			flags.RelevantAffils++
		}
	}
	flags.AffiliationDrift = flags.Affiliations > 0 && float64(flags.RelevantAffils)/float64(flags.Affiliations) < 0.5

	flags.ClaimsCollection = dataCollectionClaim.MatchString(text)
	return flags, true
}

func uniqueAffiliations(block string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range departmentRe.FindAllStringSubmatch(block, -1) {
		affil := strings.ToLower(strings.TrimSpace(trailingPunctRe.ReplaceAllString(m[1], "")))
		if len(affil) <= 2 || seen[affil] {
			continue
		}
		seen[affil] = true
		out = append(out, affil)
	}
	return out
}

func affiliationRelevant(affil string, topics []string) bool {
	for _, topic := range topics {
		terms, ok := relevantAffiliations[topic]
		if !ok {
			terms = relevantAffiliations[GeneralTopic]
		}
		if containsAny(affil, terms) {
			return true
		}
	}
	return containsAny(affil, relevantAffiliations[GeneralTopic])
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// CheckAuthorRedFlags fails when any author red flag is raised.
func CheckAuthorRedFlags(text string) domain.CheckOutcome {
	flags, ok := AssessAuthors(text)
	if !ok {
		return domain.CheckOutcome{
			Passed:  true,
			Details: "Could not reliably extract author/affiliation information.",
		}
	}

	if flags.Count() == 0 {
		return domain.CheckOutcome{
			Passed:  true,
			Details: fmt.Sprintf("Author information appears plausible (0 red flags detected). Topics: %s.", strings.Join(flags.Topics, ", ")),
		}
	}

	var reasons []string
	if flags.ConsumerMajority {
		reasons = append(reasons, fmt.Sprintf("Majority (%d/%d) non-institutional emails", flags.ConsumerEmails, flags.Emails))
	}
	if flags.AffiliationDrift {
		reasons = append(reasons, fmt.Sprintf("Affiliations (%d/%d relevant) may not align well with topics (%s)", flags.RelevantAffils, flags.Affiliations, strings.Join(flags.Topics, ", ")))
	}
	if flags.ClaimsCollection {
		reasons = append(reasons, "Potentially claims to have collected the NHANES data/participants")
	}
	return domain.CheckOutcome{
		Passed:  false,
		Details: fmt.Sprintf("Found %d potential author/affiliation red flag(s): %s", flags.Count(), strings.Join(reasons, "; ")),
	}
}
