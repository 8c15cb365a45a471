package screening

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/nhscreen/assets"
	"github.com/doeshing/nhscreen/internal/domain"
	"github.com/doeshing/nhscreen/internal/pkg/filesystem"
)

// FirstCustomStep is the lowest step a custom rule may occupy; the built-in
// table owns steps 1 through 6.
const FirstCustomStep = 7

// Rule expectations.
const (
	ExpectPresent = "present"
	ExpectAbsent  = "absent"
)

// CustomRule describes a regex-based check declared in the rules file.
type CustomRule struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Expect   string `yaml:"expect"`
	Message  string `yaml:"message"`
	Step     int    `yaml:"step"`
	Critical bool   `yaml:"critical"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		Custom []CustomRule `yaml:"custom"`
	} `yaml:"rules"`
}

// LoadRules reads custom rules from path. An empty path or a missing file
// yields the embedded defaults.
func LoadRules(path string) ([]CustomRule, error) {
	data, err := readRulesFile(path)
	if err != nil {
		return nil, err
	}
	var rules RulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	for i := range rules.Rules.Custom {
		if err := normalizeRule(&rules.Rules.Custom[i]); err != nil {
			return nil, err
		}
	}
	return rules.Rules.Custom, nil
}

func readRulesFile(path string) ([]byte, error) {
	if path == "" {
		return assets.DefaultRulesYAML, nil
	}
	data, err := os.ReadFile(filesystem.ExpandPath(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return assets.DefaultRulesYAML, nil
		}
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return data, nil
}

func normalizeRule(rule *CustomRule) error {
	rule.Name = strings.TrimSpace(rule.Name)
	if rule.Name == "" {
		return errors.New("custom rule without a name")
	}
	if rule.Pattern == "" {
		return fmt.Errorf("custom rule %q has no pattern", rule.Name)
	}
	switch strings.ToLower(rule.Expect) {
	case "", ExpectPresent:
		rule.Expect = ExpectPresent
	case ExpectAbsent:
		rule.Expect = ExpectAbsent
	default:
		return fmt.Errorf("custom rule %q: expect must be present|absent, got %s", rule.Name, rule.Expect)
	}
	if rule.Step == 0 {
		rule.Step = FirstCustomStep
	}
	if rule.Step < FirstCustomStep {
		return fmt.Errorf("custom rule %q: step must be >= %d, got %d", rule.Name, FirstCustomStep, rule.Step)
	}
	return nil
}

// compile turns a custom rule into a pipeline entry.
func (r CustomRule) compile() (RuleCheckSpec, error) {
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return RuleCheckSpec{}, fmt.Errorf("custom rule %q: %w", r.Name, err)
	}
	expectPresent := r.Expect != ExpectAbsent
	message := r.Message
	return RuleCheckSpec{
		Name:     r.Name,
		Step:     r.Step,
		Critical: r.Critical,
		custom:   true,
		Evaluate: func(text string) domain.CheckOutcome {
			found := re.MatchString(text)
			if found == expectPresent {
				return domain.CheckOutcome{Passed: true, Details: customDetails(found, r.Pattern, "")}
			}
			return domain.CheckOutcome{Passed: false, Details: customDetails(found, r.Pattern, message)}
		},
	}, nil
}

func customDetails(found bool, pattern, message string) string {
	state := "not found"
	if found {
		state = "found"
	}
	details := fmt.Sprintf("Pattern %q %s.", pattern, state)
	if message != "" {
		details = message + " " + details
	}
	return details
}
