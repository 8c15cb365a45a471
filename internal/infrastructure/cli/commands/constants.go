package commands

// Exit codes
const (
	// ExitFailedVerdict is returned by check --fail-on-fail when a
	// manuscript fails screening or cannot be screened.
	ExitFailedVerdict = 2
)

const (
	envKeyEditor  = "EDITOR"
	defaultEditor = "vi"
)

// Error messages
const (
	ErrConfigLoaderUnavailable     = "config loader unavailable"
	ErrDoctorServiceUnavailable    = "doctor service unavailable"
	ErrScreeningServiceUnavailable = "screening service unavailable"
	ErrKeyRequired                 = "--key is required"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
)
