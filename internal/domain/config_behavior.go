package domain

import (
	"fmt"
	"strings"
	"time"
)

// Check names that can never be switched off.
var mandatoryChecks = map[string]bool{
	CheckCitation: true,
}

// IsCheckDisabled reports whether the named check was switched off in config.
// Matching ignores case and surrounding whitespace.
func (c *Config) IsCheckDisabled(name string) bool {
	for _, disabled := range c.Screening.DisabledChecks {
		if strings.EqualFold(strings.TrimSpace(disabled), name) {
			return true
		}
	}
	return false
}

// DisableCheck adds a check to the disabled list.
// Returns an error for checks that decide the critical methodology step.
func (c *Config) DisableCheck(name string) error {
	for mandatory := range mandatoryChecks {
		if strings.EqualFold(strings.TrimSpace(name), mandatory) {
			return fmt.Errorf("check %q cannot be disabled", mandatory)
		}
	}
	if c.IsCheckDisabled(name) {
		return nil
	}
	c.Screening.DisabledChecks = append(c.Screening.DisabledChecks, name)
	return nil
}

// EnableCheck removes a check from the disabled list.
func (c *Config) EnableCheck(name string) {
	var kept []string
	for _, disabled := range c.Screening.DisabledChecks {
		if !strings.EqualFold(strings.TrimSpace(disabled), name) {
			kept = append(kept, disabled)
		}
	}
	c.Screening.DisabledChecks = kept
}

// GetRecencyYears returns the cycle age (in years) at which data counts as stale.
func (c *Config) GetRecencyYears() int {
	if c.Screening.RecencyYears <= 0 {
		return DefaultRecencyYears
	}
	return c.Screening.RecencyYears
}

// GetMaxInputBytes returns the largest manuscript accepted by text sources.
func (c *Config) GetMaxInputBytes() int64 {
	if c.Input.MaxBytes <= 0 {
		return DefaultMaxInputBytes
	}
	return c.Input.MaxBytes
}

// GetOutputFormat returns the configured render format.
func (c *Config) GetOutputFormat() string {
	if c.Output.Format == "" {
		return FormatConsole
	}
	return strings.ToLower(c.Output.Format)
}

// GetBatchConcurrency returns how many manuscripts may be screened at once.
func (c *Config) GetBatchConcurrency() int {
	if c.Batch.Concurrency <= 0 {
		return DefaultBatchConcurrency
	}
	return c.Batch.Concurrency
}

// GetServerAddr returns the listen address for the HTTP API.
func (c *Config) GetServerAddr() string {
	if c.Server.Addr == "" {
		return DefaultServerAddr
	}
	return c.Server.Addr
}

// GetReadTimeout parses server.read_timeout, falling back to the default.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDurationOr(c.Server.ReadTimeout, DefaultReadTimeout)
}

// GetRequestTimeout parses server.request_timeout, falling back to the default.
func (c *Config) GetRequestTimeout() time.Duration {
	return parseDurationOr(c.Server.RequestTimeout, DefaultRequestTimeout)
}

// GetLogLevel returns the configured log level name.
func (c *Config) GetLogLevel() string {
	if c.Logging.Level == "" {
		return DefaultLogLevel
	}
	return strings.ToLower(c.Logging.Level)
}

// GetLogFormat returns the configured log handler format.
func (c *Config) GetLogFormat() string {
	if c.Logging.Format == "" {
		return DefaultLogFormat
	}
	return strings.ToLower(c.Logging.Format)
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
