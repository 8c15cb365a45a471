package screening

import (
	"reflect"
	"testing"
)

func TestExtractTopics(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "title and abstract drive the ranking",
			text: "Dietary fiber intake and heart health\nAbstract\nDietary fiber and nutrient intake were linked to cardiovascular outcomes and blood pressure.\n\nIntroduction\nCancer cancer cancer cancer.",
			want: []string{"Nutrition/Diet", "Cardiovascular"},
		},
		{
			name: "no significant domain",
			text: "Hello world\nNothing to see here.",
			want: []string{GeneralTopic},
		},
		{
			name: "single hit is below the threshold",
			text: "Heart\n",
			want: []string{GeneralTopic},
		},
		{
			name: "ties keep taxonomy order",
			text: "diet diet heart heart\n",
			want: []string{"Cardiovascular", "Nutrition/Diet"},
		},
		{
			name: "at most three topics",
			text: "heart heart heart heart diet diet diet cancer cancer lung lung\n",
			want: []string{"Cardiovascular", "Nutrition/Diet", "Respiratory"},
		},
		{
			name: "whole words only",
			text: "heartbeat heartbeat dietary dietary\n",
			want: []string{"Nutrition/Diet"},
		},
		{
			name: "leading blank lines are skipped",
			text: "\n\n  Depression and anxiety in adults\nbody text",
			want: []string{"Mental Health/Neurology"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTopics(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExtractTopics() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractTopicsIsIdempotent(t *testing.T) {
	first := ExtractTopics(compliantManuscript)
	second := ExtractTopics(compliantManuscript)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("ExtractTopics not deterministic: %v vs %v", first, second)
	}
}

func TestTopicAnalysisFallsBackToPrefix(t *testing.T) {
	if got := topicAnalysisText("   \n\n"); got != "   \n\n" {
		t.Fatalf("expected raw prefix fallback, got %q", got)
	}
}

func TestTopicDomainsOrder(t *testing.T) {
	domains := TopicDomains()
	if len(domains) < 14 {
		t.Fatalf("taxonomy too small: %d", len(domains))
	}
	if domains[0] != "Cardiovascular" || domains[len(domains)-1] != "Allergy/Immunology" {
		t.Fatalf("unexpected declaration order: %v", domains)
	}
}
