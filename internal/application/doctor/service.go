package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/nhscreen/assets"
	configapp "github.com/doeshing/nhscreen/internal/application/config"
	"github.com/doeshing/nhscreen/internal/domain"
	"github.com/doeshing/nhscreen/internal/ports"
)

// RulesLoader reports how many custom rules a rules file holds.
type RulesLoader func(path string) (int, error)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Source         ports.TextSource
	Screener       ports.Screener
	LoadRules      RulesLoader
	// Sample is screened by the pipeline self-test. Defaults to the embedded
	// sample manuscript.
	Sample string
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded version %s", cfg.ConfigFormatVersion)))

	checks = append(checks, s.rulesCheck(cfg))
	if err := configapp.Validate(cfg, len(cfg.Screening.RulesFile) > 0); err != nil {
		checks = append(checks, fail("Config values", err.Error()))
	} else {
		checks = append(checks, ok("Config values", "valid"))
	}

	if s.Source != nil {
		checks = append(checks, ok("Input formats", strings.Join(s.Source.Supported(), ", ")))
	} else {
		checks = append(checks, warn("Input formats", "text source not initialized"))
	}

	checks = append(checks, s.pipelineCheck())

	report := domain.HealthReport{Checks: checks}
	if !report.Healthy() {
		return report, fmt.Errorf("one or more checks failed")
	}
	return report, nil
}

func (s *Service) rulesCheck(cfg domain.Config) domain.HealthCheck {
	path := cfg.Screening.RulesFile
	if path == "" {
		return ok("Custom rules", "none configured")
	}
	if s.LoadRules == nil {
		return warn("Custom rules", "rules loader not initialized")
	}
	n, err := s.LoadRules(path)
	if err != nil {
		return fail("Custom rules", err.Error())
	}
	return ok("Custom rules", fmt.Sprintf("%d rule(s) from %s", n, path))
}

// pipelineCheck screens the sample manuscript and expects it to pass.
func (s *Service) pipelineCheck() (check domain.HealthCheck) {
	if s.Screener == nil {
		return warn("Pipeline self-test", "screener not initialized")
	}
	defer func() {
		if r := recover(); r != nil {
			check = fail("Pipeline self-test", fmt.Sprintf("panic: %v", r))
		}
	}()

	sample := s.Sample
	if sample == "" {
		sample = assets.SampleManuscript
	}
	v := s.Screener.Evaluate(sample)
	switch v.FinalResult {
	case domain.ResultPass:
		return ok("Pipeline self-test", fmt.Sprintf("sample passed %d check(s)", v.PassedChecks()))
	case domain.ResultFail:
		return warn("Pipeline self-test", fmt.Sprintf("sample failed at step %d; review disabled checks and custom rules", v.FailStep))
	default:
		return fail("Pipeline self-test", fmt.Sprintf("unexpected result %q", v.FinalResult))
	}
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
