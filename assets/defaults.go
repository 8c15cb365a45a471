package assets

import (
	_ "embed"
)

// DefaultConfigYAML contains the embedded default configuration.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultRulesYAML contains the embedded default custom rules (none).
//
//go:embed defaults/rules.yaml
var DefaultRulesYAML []byte

// SampleManuscript is a compliant NHANES manuscript used by the doctor
// self-test.
//
//go:embed defaults/sample_manuscript.txt
var SampleManuscript string
