package screening

import (
	"fmt"
	"sort"
	"time"

	"github.com/doeshing/nhscreen/internal/domain"
	"github.com/doeshing/nhscreen/internal/ports"
)

const (
	gateStep        = 1
	methodologyStep = 2
)

// RuleCheckSpec declares one check of the pipeline.
type RuleCheckSpec struct {
	Name     string
	Evaluate CheckFunc
	Step     int
	Critical bool
	custom   bool
}

// Options adjust the declared check table.
type Options struct {
	// StrictMethodology runs the survey-design and weighting checks as
	// critical members of step 2. Without it they are left out.
	StrictMethodology bool
	// Disabled names checks to drop. The citation check is always kept.
	Disabled []string
	// RecencyYears is the cycle age that fails the recency check.
	RecencyYears int
	// Now is the clock used by the recency check.
	Now func() time.Time
	// CustomRules are appended after the built-in table.
	CustomRules []CustomRule
}

// DeclaredChecks returns the built-in table in execution order.
func DeclaredChecks(recency CheckFunc) []RuleCheckSpec {
	return []RuleCheckSpec{
		{Name: domain.CheckCitation, Evaluate: CheckCitation, Step: 2, Critical: true},
		{Name: domain.CheckSurveyDesign, Evaluate: CheckSurveyDesign, Step: 2, Critical: true},
		{Name: domain.CheckWeighting, Evaluate: CheckWeighting, Step: 2, Critical: true},
		{Name: domain.CheckDateRange, Evaluate: CheckDateRange, Step: 3, Critical: false},
		{Name: domain.CheckCycleRecency, Evaluate: recency, Step: 4, Critical: false},
		{Name: domain.CheckTitleTemplate, Evaluate: CheckTitleTemplate, Step: 5, Critical: false},
		{Name: domain.CheckAuthorRedFlags, Evaluate: CheckAuthorRedFlags, Step: 6, Critical: false},
	}
}

// Pipeline runs the gate and the ordered rule checks over one manuscript.
type Pipeline struct {
	checks []RuleCheckSpec
}

// NewPipeline builds the check table for the given options.
func NewPipeline(opts Options) (*Pipeline, error) {
	cfg := domain.Config{Screening: domain.ScreeningSettings{DisabledChecks: opts.Disabled}}

	var checks []RuleCheckSpec
	for _, spec := range DeclaredChecks(RecencyCheck(opts.Now, opts.RecencyYears)) {
		methodologyExtra := spec.Name == domain.CheckSurveyDesign || spec.Name == domain.CheckWeighting
		if methodologyExtra && !opts.StrictMethodology {
			continue
		}
		if spec.Name != domain.CheckCitation && cfg.IsCheckDisabled(spec.Name) {
			continue
		}
		checks = append(checks, spec)
	}

	var custom []RuleCheckSpec
	for _, rule := range opts.CustomRules {
		if err := normalizeRule(&rule); err != nil {
			return nil, err
		}
		if cfg.IsCheckDisabled(rule.Name) {
			continue
		}
		spec, err := rule.compile()
		if err != nil {
			return nil, err
		}
		custom = append(custom, spec)
	}
	sort.SliceStable(custom, func(i, j int) bool { return custom[i].Step < custom[j].Step })

	return &Pipeline{checks: append(checks, custom...)}, nil
}

// Checks lists the active table.
func (p *Pipeline) Checks() []domain.CheckInfo {
	out := make([]domain.CheckInfo, 0, len(p.checks))
	for _, c := range p.checks {
		out = append(out, domain.CheckInfo{Name: c.Name, Step: c.Step, Critical: c.Critical, Custom: c.custom})
	}
	return out
}

// ExtractTopics implements ports.TopicExtractor.
func (p *Pipeline) ExtractTopics(text string) []string {
	return ExtractTopics(text)
}

// Evaluate screens one manuscript. Checks are total, so the only way out of
// here other than a verdict is a panic, which callers recover.
func (p *Pipeline) Evaluate(text string) domain.Verdict {
	if !MentionsNHANES(text) {
		return domain.Verdict{
			IsNHANES:     false,
			FinalResult:  domain.ResultNotNHANES,
			Details:      []string{"The manuscript does not appear to use NHANES data."},
			CheckResults: []domain.CheckResult{},
		}
	}

	m := newMachine()
	for _, spec := range p.checks {
		if spec.Step != m.step {
			m.enterStep(spec.Step)
		}
		if m.state == stateFailed {
			break
		}
		m.record(spec, spec.Evaluate(text))
		if m.state == stateFailed {
			break
		}
	}
	m.finish()
	return m.verdict
}

type state int

const (
	stateRunning state = iota
	// a step-2 check failed; the rest of step 2 still runs before the
	// step as a whole is failed
	stateStep2Pending
	stateFailed
	stateDone
)

func (s state) String() string {
	switch s {
	case stateRunning:
		return "RUNNING"
	case stateStep2Pending:
		return "STEP2_BLOCK_PENDING"
	case stateFailed:
		return "FAILED"
	case stateDone:
		return "DONE"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// machine folds check outcomes into a verdict.
type machine struct {
	state        state
	step         int
	failureNoted bool
	verdict      domain.Verdict
}

func newMachine() *machine {
	return &machine{
		state: stateRunning,
		step:  gateStep,
		verdict: domain.Verdict{
			IsNHANES:     true,
			Details:      []string{domain.MarkerPass + " STEP 1: Manuscript mentions NHANES."},
			CheckResults: []domain.CheckResult{},
		},
	}
}

func (m *machine) detail(marker, format string, args ...any) {
	m.verdict.Details = append(m.verdict.Details, marker+" "+fmt.Sprintf(format, args...))
}

// enterStep closes the current step before moving to next.
func (m *machine) enterStep(next int) {
	switch m.state {
	case stateStep2Pending:
		m.failMethodologyBlock()
		return
	case stateFailed, stateDone:
		return
	}
	// the gate already reported its own success line
	if m.step != gateStep && m.verdict.FinalResult != domain.ResultFail {
		m.detail(domain.MarkerPass, "STEP %d: Check(s) passed.", m.step)
	}
	m.step = next
}

func (m *machine) failMethodologyBlock() {
	m.verdict.FinalResult = domain.ResultFail
	m.verdict.FailStep = methodologyStep
	m.detail(domain.MarkerFail, "STEP %d: Failed one or more critical methodology checks.", methodologyStep)
	m.state = stateFailed
}

func (m *machine) record(spec RuleCheckSpec, outcome domain.CheckOutcome) {
	m.verdict.CheckResults = append(m.verdict.CheckResults, domain.CheckResult{
		CheckName: spec.Name,
		Passed:    outcome.Passed,
		Details:   outcome.Details,
		Step:      spec.Step,
		Critical:  spec.Critical,
	})
	if outcome.Passed {
		return
	}

	if spec.Step == methodologyStep && m.state == stateRunning {
		m.state = stateStep2Pending
	}

	if !spec.Critical {
		m.detail(domain.MarkerWarning, "STEP %d: Non-critical issue found in check %q.", spec.Step, spec.Name)
		return
	}

	m.verdict.FinalResult = domain.ResultFail
	if m.verdict.FailStep == 0 {
		m.verdict.FailStep = spec.Step
	}
	if !m.failureNoted {
		m.failureNoted = true
		m.detail(domain.MarkerFail, "STEP %d: Failed critical check %q.", spec.Step, spec.Name)
	}
	if spec.Step > methodologyStep {
		m.state = stateFailed
	}
}

func (m *machine) finish() {
	if m.state == stateStep2Pending {
		m.failMethodologyBlock()
	}
	if m.verdict.FinalResult != domain.ResultFail {
		m.detail(domain.MarkerPass, "STEP %d: Check(s) passed.", m.step)
		m.detail(domain.MarkerPass, "ALL CRITICAL CHECKS PASSED.")
		m.verdict.FinalResult = domain.ResultPass
		m.state = stateDone
		return
	}
	if m.verdict.FailStep == 0 {
		m.verdict.FailStep = m.step
	}
	m.detail(domain.MarkerFail, "Manuscript check failed at Step %d.", m.verdict.FailStep)
	m.state = stateFailed
}

var (
	_ ports.Screener       = (*Pipeline)(nil)
	_ ports.TopicExtractor = (*Pipeline)(nil)
)
