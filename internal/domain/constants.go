package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for config files (rw-------)
	SecureFilePermissions = 0o600
)

// Declared check names, in pipeline order.
const (
	CheckCitation       = "2a. NHANES Citation"
	CheckSurveyDesign   = "2b. Survey Design Acknowledgment"
	CheckWeighting      = "2c. Weighting Methodology"
	CheckDateRange      = "3. NHANES Date Range"
	CheckCycleRecency   = "4. NHANES Cycle Recency"
	CheckTitleTemplate  = "5. Title Template Check"
	CheckAuthorRedFlags = "6. Author Red Flags"
)

// Screening defaults
const (
	// DefaultRecencyYears is the cycle age at which data is considered outdated
	DefaultRecencyYears = 10
	// DefaultMaxInputBytes caps manuscript size (20 MiB)
	DefaultMaxInputBytes int64 = 20 << 20
	// DefaultBatchConcurrency bounds parallel screening of multiple files
	DefaultBatchConcurrency = 4
)

// Output formats
const (
	FormatConsole  = "console"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Server defaults
const (
	DefaultServerAddr     = "127.0.0.1:8087"
	DefaultReadTimeout    = 15 * time.Second
	DefaultRequestTimeout = 30 * time.Second
)

// Logging defaults
const (
	DefaultLogLevel  = "warn"
	LogFormatText    = "text"
	LogFormatJSON    = "json"
	DefaultLogFormat = LogFormatText
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
