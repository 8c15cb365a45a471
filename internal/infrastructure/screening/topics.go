package screening

import (
	"regexp"
	"sort"
	"strings"
)

// GeneralTopic is reported when no domain is significant.
const GeneralTopic = "General Health/Mixed"

const (
	minTopicScore  = 2
	maxTopics      = 3
	topicScanChars = 3000
)

type domainKeywords struct {
	name     string
	keywords []string
}

// taxonomy is declared in tie-break order.
var taxonomy = []domainKeywords{
	{"Cardiovascular", []string{"heart", "cardiac", "cardiovascular", "blood pressure", "hypertension", "cholesterol", "stroke", "atherosclerosis", "vascular", "lipids", "arrhythmia"}},
	{"Nutrition/Diet", []string{"diet", "dietary", "food", "nutrition", "nutrient", "intake", "consumption", "supplement", "eating pattern", "malnutrition", "vitamin", "mineral", "fiber", "calories"}},
	{"Metabolic/Endocrine", []string{"diabetes", "insulin", "glucose", "metabolic syndrome", "obesity", "BMI", "body mass index", "thyroid", "endocrine", "adiposity", "waist circumference", "hormone"}},
	{"Epidemiology/Public Health", []string{"prevalence", "incidence", "risk factor", "population", "demographic", "public health", "mortality", "morbidity", "surveillance", "trends", "disparities", "socioeconomic"}},
	{"Mental Health/Neurology", []string{"depression", "anxiety", "psychiatric", "mental", "psychological", "cognitive", "cognition", "neurologic", "stress", "mood", "suicide"}},
	{"Respiratory", []string{"lung", "pulmonary", "respiratory", "asthma", "COPD", "breathing", "sleep apnea", "spirometry"}},
	{"Oncology", []string{"cancer", "tumor", "oncology", "malignancy", "carcinoma", "neoplasm"}},
	{"Pediatrics", []string{"child", "children", "adolescent", "pediatric", "youth", "infant", "growth", "development"}},
	{"Geriatrics", []string{"elderly", "older adults", "aging", "geriatric", "seniors", "frailty"}},
	{"Renal/Urology", []string{"kidney", "renal", "nephrology", "chronic kidney disease", "CKD", "urinary", "urology"}},
	{"Musculoskeletal/Physical Activity", []string{"bone", "muscle", "physical activity", "exercise", "sedentary", "osteoporosis", "arthritis", "sarcopenia", "fitness"}},
	{"Environmental Health", []string{"exposure", "pollutant", "environment", "toxin", "heavy metal", "pesticide", "air quality", "lead", "mercury", "cadmium"}},
	{"Infectious Disease", []string{"infection", "virus", "bacteria", "antibody", "vaccine", "hepatitis", "HIV"}},
	{"Gastroenterology", []string{"gut", "gastrointestinal", "liver", "hepatic", "digestive"}},
	{"Allergy/Immunology", []string{"allergy", "asthma", "immune", "inflammation", "antibody"}},
}

type compiledDomain struct {
	name     string
	patterns []*regexp.Regexp
}

var compiledTaxonomy = compileTaxonomy(taxonomy)

func compileTaxonomy(domains []domainKeywords) []compiledDomain {
	out := make([]compiledDomain, 0, len(domains))
	for _, d := range domains {
		cd := compiledDomain{name: d.name}
		for _, kw := range d.keywords {
			cd.patterns = append(cd.patterns, wholeWord(kw))
		}
		out = append(out, cd)
	}
	return out
}

func wholeWord(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
}

// TopicScore is one domain's keyword hit count.
type TopicScore struct {
	Domain string
	Score  int
}

// TopicDomains lists the taxonomy labels in declaration order.
func TopicDomains() []string {
	names := make([]string, 0, len(taxonomy))
	for _, d := range taxonomy {
		names = append(names, d.name)
	}
	return names
}

// ExtractTopics returns up to three dominant health domains of a manuscript,
// judged from its title and abstract.
func ExtractTopics(text string) []string {
	var topics []string
	for _, s := range ScoreTopics(text) {
		if s.Score < minTopicScore || len(topics) == maxTopics {
			break
		}
		topics = append(topics, s.Domain)
	}
	if len(topics) == 0 {
		return []string{GeneralTopic}
	}
	return topics
}

// ScoreTopics scores every domain with at least one hit, highest first.
func ScoreTopics(text string) []TopicScore {
	analysis := topicAnalysisText(text)
	var scores []TopicScore
	for _, d := range compiledTaxonomy {
		score := 0
		for _, re := range d.patterns {
			score += len(re.FindAllStringIndex(analysis, -1))
		}
		if score > 0 {
			scores = append(scores, TopicScore{Domain: d.name, Score: score})
		}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

func topicAnalysisText(text string) string {
	title, _ := topicTitleExtractor.Extract(text)
	abstract, _ := abstractExtractor.Extract(text)
	combined := strings.TrimSpace(title + " " + abstract)
	if combined == "" {
		return runePrefix(text, topicScanChars)
	}
	return combined
}
