package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/nhscreen/internal/domain"
)

// knownChecks are the built-in names accepted in screening.disabled_checks.
var knownChecks = []string{
	domain.CheckCitation,
	domain.CheckSurveyDesign,
	domain.CheckWeighting,
	domain.CheckDateRange,
	domain.CheckCycleRecency,
	domain.CheckTitleTemplate,
	domain.CheckAuthorRedFlags,
}

// Validate ensures config structure is consistent.
// Custom rule names may also appear in disabled_checks, so unknown names are
// only rejected when allowUnknownChecks is false.
func Validate(cfg domain.Config, allowUnknownChecks bool) error {
	if cfg.ConfigFormatVersion != "" && cfg.ConfigFormatVersion != "1" {
		return fmt.Errorf("config_format_version %q is not supported", cfg.ConfigFormatVersion)
	}
	if err := validateScreening(cfg.Screening, allowUnknownChecks); err != nil {
		return err
	}
	if cfg.Input.MaxBytes < 0 {
		return errors.New("input.max_bytes must be >= 0")
	}
	if err := validateOutput(cfg.Output); err != nil {
		return err
	}
	if err := validateServer(cfg.Server); err != nil {
		return err
	}
	if cfg.Batch.Concurrency < 0 {
		return errors.New("batch.concurrency must be >= 0")
	}
	return validateLogging(cfg.Logging)
}

func validateScreening(s domain.ScreeningSettings, allowUnknown bool) error {
	if s.RecencyYears < 0 {
		return errors.New("screening.recency_years must be >= 0")
	}
	for _, name := range s.DisabledChecks {
		if strings.EqualFold(strings.TrimSpace(name), domain.CheckCitation) {
			return fmt.Errorf("screening.disabled_checks: %q cannot be disabled", domain.CheckCitation)
		}
		if !allowUnknown && !isKnownCheck(name) {
			return fmt.Errorf("screening.disabled_checks: unknown check %q", name)
		}
	}
	return nil
}

func validateOutput(out domain.OutputSettings) error {
	switch strings.ToLower(out.Format) {
	case "", domain.FormatConsole, domain.FormatJSON, domain.FormatMarkdown, domain.FormatHTML:
	default:
		return fmt.Errorf("output.format must be console|json|markdown|html, got %s", out.Format)
	}
	switch strings.ToLower(out.Color) {
	case "", domain.ColorAuto, domain.ColorAlways, domain.ColorNever:
	default:
		return fmt.Errorf("output.color must be auto|always|never, got %s", out.Color)
	}
	return nil
}

func validateServer(srv domain.ServerSettings) error {
	for key, raw := range map[string]string{
		"server.read_timeout":    srv.ReadTimeout,
		"server.request_timeout": srv.RequestTimeout,
	} {
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s invalid: %w", key, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be > 0", key)
		}
	}
	return nil
}

func validateLogging(l domain.LoggingSettings) error {
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug|info|warn|error, got %s", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "", domain.LogFormatText, domain.LogFormatJSON:
	default:
		return fmt.Errorf("logging.format must be text|json, got %s", l.Format)
	}
	return nil
}

func isKnownCheck(name string) bool {
	for _, known := range knownChecks {
		if strings.EqualFold(strings.TrimSpace(name), known) {
			return true
		}
	}
	return false
}
