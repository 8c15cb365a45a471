package screening

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRulesDefaults(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules error: %v", err)
	}
	if len(rules) != 0 {
		t.Fatalf("embedded defaults should declare no rules, got %d", len(rules))
	}

	missing, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil || len(missing) != 0 {
		t.Fatalf("missing file should fall back to defaults, got %v / %v", missing, err)
	}
}

func TestLoadRulesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `rules:
  custom:
    - name: "7. Data Availability"
      pattern: "(?i)data availability statement"
      message: "No data availability statement."
      critical: true
    - name: "8. No Preprint"
      pattern: "(?i)medrxiv"
      expect: ABSENT
      step: 8
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules error: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].Step != FirstCustomStep || rules[0].Expect != ExpectPresent || !rules[0].Critical {
		t.Fatalf("unexpected first rule %+v", rules[0])
	}
	if rules[1].Step != 8 || rules[1].Expect != ExpectAbsent {
		t.Fatalf("unexpected second rule %+v", rules[1])
	}
}

func TestNormalizeRuleErrors(t *testing.T) {
	tests := []struct {
		name string
		rule CustomRule
		want string
	}{
		{"no name", CustomRule{Pattern: "x"}, "without a name"},
		{"no pattern", CustomRule{Name: "r"}, "no pattern"},
		{"bad expect", CustomRule{Name: "r", Pattern: "x", Expect: "maybe"}, "expect must be"},
		{"built-in step", CustomRule{Name: "r", Pattern: "x", Step: 3}, "step must be >= 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := normalizeRule(&tt.rule)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("normalizeRule() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestCustomRuleEvaluate(t *testing.T) {
	absent := CustomRule{Name: "8. No Preprint", Pattern: "(?i)medrxiv", Expect: ExpectAbsent, Step: 8, Message: "Preprint server cited."}
	spec, err := absent.compile()
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	if out := spec.Evaluate("clean text"); !out.Passed {
		t.Fatalf("absent pattern should pass: %+v", out)
	}
	out := spec.Evaluate("see medRxiv")
	if out.Passed || !strings.HasPrefix(out.Details, "Preprint server cited.") {
		t.Fatalf("unexpected outcome %+v", out)
	}
}
