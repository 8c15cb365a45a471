package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/nhscreen/assets"
	"github.com/doeshing/nhscreen/internal/domain"
	"github.com/doeshing/nhscreen/internal/pkg/filesystem"
	"github.com/doeshing/nhscreen/internal/ports"
)

// Environment variables consulted by the loader.
const (
	EnvConfigPath   = "NHSCREEN_CONFIG"
	EnvOutputFormat = "NHSCREEN_FORMAT"
	EnvStrict       = "NHSCREEN_STRICT"
	EnvLogLevel     = "NHSCREEN_LOG_LEVEL"
	EnvServerAddr   = "NHSCREEN_ADDR"
)

// FileLoader loads configuration from ~/.nhscreen/config.yaml (overridable via
// NHSCREEN_CONFIG). Paths ending in .toml are decoded as TOML.
type FileLoader struct {
	overridePath string
	lookupEnv    func(string) (string, bool)
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path, lookupEnv: os.LookupEnv}
}

// LoadDotEnv reads KEY=VALUE pairs from the given files (".env" when none are
// named) into the process environment. Missing files are ignored; variables
// already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := defaultConfig()
			if err := writeConfig(path, cfg); err != nil {
				return domain.Config{}, fmt.Errorf("write default config: %w", err)
			}
			return l.applyEnv(cfg), nil
		}
		return domain.Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := decode(path, data)
	if err != nil {
		return domain.Config{}, err
	}
	return l.applyEnv(hydrateDefaults(cfg)), nil
}

// Path returns the resolved config file path.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

// Save writes the given config back to disk in the file's format.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	return writeConfig(path, cfg)
}

// Reset overwrites the config with defaults and returns the default snapshot.
func (l *FileLoader) Reset() (domain.Config, error) {
	cfg := defaultConfig()
	if err := l.Save(cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// Backup copies the current config file to a timestamped backup.
func (l *FileLoader) Backup() (string, error) {
	path := l.resolvePath()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102T150405"))
	if err := os.WriteFile(backup, data, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return backup, nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom, ok := l.env(EnvConfigPath); ok && custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.AppDir(), "config.yaml")
}

func (l *FileLoader) env(key string) (string, bool) {
	lookup := l.lookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(key)
	return strings.TrimSpace(v), ok
}

// applyEnv lets environment variables override file settings.
func (l *FileLoader) applyEnv(cfg domain.Config) domain.Config {
	if v, ok := l.env(EnvOutputFormat); ok && v != "" {
		cfg.Output.Format = strings.ToLower(v)
	}
	if v, ok := l.env(EnvStrict); ok && v != "" {
		if strict, err := strconv.ParseBool(v); err == nil {
			cfg.Screening.StrictMethodology = strict
		}
	}
	if v, ok := l.env(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v, ok := l.env(EnvServerAddr); ok && v != "" {
		cfg.Server.Addr = v
	}
	return cfg
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func decode(path string, data []byte) (domain.Config, error) {
	var cfg domain.Config
	if isTOML(path) {
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg); err != nil {
			return domain.Config{}, fmt.Errorf("parse config: %w", err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func encode(path string, cfg domain.Config) ([]byte, error) {
	if isTOML(path) {
		return toml.Marshal(cfg)
	}
	return yaml.Marshal(cfg)
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

func writeConfig(path string, cfg domain.Config) error {
	raw, err := encode(path, cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

func defaultConfig() domain.Config {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		cfg = domain.Config{ConfigFormatVersion: "1"}
	}
	return hydrateDefaults(cfg)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Screening.RecencyYears <= 0 {
		cfg.Screening.RecencyYears = domain.DefaultRecencyYears
	}
	if cfg.Input.MaxBytes <= 0 {
		cfg.Input.MaxBytes = domain.DefaultMaxInputBytes
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = domain.FormatConsole
	}
	if cfg.Output.Color == "" {
		cfg.Output.Color = domain.ColorAuto
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = domain.DefaultServerAddr
	}
	if cfg.Server.ReadTimeout == "" {
		cfg.Server.ReadTimeout = domain.DefaultReadTimeout.String()
	}
	if cfg.Server.RequestTimeout == "" {
		cfg.Server.RequestTimeout = domain.DefaultRequestTimeout.String()
	}
	if cfg.Batch.Concurrency <= 0 {
		cfg.Batch.Concurrency = domain.DefaultBatchConcurrency
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = domain.DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = domain.DefaultLogFormat
	}
	return cfg
}

// DefaultConfig exposes the bootstrap configuration.
func DefaultConfig() domain.Config {
	return defaultConfig()
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
