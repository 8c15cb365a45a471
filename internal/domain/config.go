package domain

// Config mirrors ~/.nhscreen/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version" toml:"config_format_version"`
	Screening           ScreeningSettings `yaml:"screening" toml:"screening"`
	Input               InputSettings     `yaml:"input" toml:"input"`
	Output              OutputSettings    `yaml:"output" toml:"output"`
	Server              ServerSettings    `yaml:"server" toml:"server"`
	Batch               BatchSettings     `yaml:"batch" toml:"batch"`
	Logging             LoggingSettings   `yaml:"logging" toml:"logging"`
}

// ScreeningSettings tunes the rule pipeline.
type ScreeningSettings struct {
	StrictMethodology bool     `yaml:"strict_methodology" toml:"strict_methodology"`
	DisabledChecks    []string `yaml:"disabled_checks" toml:"disabled_checks"`
	RulesFile         string   `yaml:"rules_file" toml:"rules_file"`
	RecencyYears      int      `yaml:"recency_years" toml:"recency_years"`
}

// InputSettings limits text acquisition.
type InputSettings struct {
	MaxBytes int64 `yaml:"max_bytes" toml:"max_bytes"`
}

// OutputSettings controls rendering.
type OutputSettings struct {
	Format string `yaml:"format" toml:"format"`
	Color  string `yaml:"color" toml:"color"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr           string `yaml:"addr" toml:"addr"`
	ReadTimeout    string `yaml:"read_timeout" toml:"read_timeout"`
	RequestTimeout string `yaml:"request_timeout" toml:"request_timeout"`
}

// BatchSettings controls multi-file screening.
type BatchSettings struct {
	Concurrency int `yaml:"concurrency" toml:"concurrency"`
}

// LoggingSettings configures diagnostic logs written to stderr.
type LoggingSettings struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}
