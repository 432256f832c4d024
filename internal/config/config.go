package config

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/yiblet/clippy/internal/clipfs"
)

// Default values used when the config file is missing or a key is not overridden.
const (
	DefaultPollIntervalMs     = 500
	DefaultMaxHistoryItems    = 50
	DefaultMaxPins            = 50
	DefaultMaxEntryLength     = 10000
	DefaultMaxAgeDays         = 30
	DefaultCleanupIntervalSec = 3600
)

// Config keys as they appear in the config file.
const (
	KeyPollIntervalMs     = "poll_interval_ms"
	KeyMaxHistoryItems    = "max_history_items"
	KeyMaxPins            = "max_pins"
	KeyMaxEntryLength     = "max_entry_length"
	KeyMaxAgeDays         = "max_age_days"
	KeyCleanupIntervalSec = "cleanup_interval_sec"
)

// Config represents the clippy runtime configuration.
// A Config is built once at startup and treated as read-only afterwards.
type Config struct {
	PollIntervalMs     int `yaml:"poll_interval_ms"`
	MaxHistoryItems    int `yaml:"max_history_items"`
	MaxPins            int `yaml:"max_pins"`
	MaxEntryLength     int `yaml:"max_entry_length"`
	MaxAgeDays         int `yaml:"max_age_days"`
	CleanupIntervalSec int `yaml:"cleanup_interval_sec"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		PollIntervalMs:     DefaultPollIntervalMs,
		MaxHistoryItems:    DefaultMaxHistoryItems,
		MaxPins:            DefaultMaxPins,
		MaxEntryLength:     DefaultMaxEntryLength,
		MaxAgeDays:         DefaultMaxAgeDays,
		CleanupIntervalSec: DefaultCleanupIntervalSec,
	}
}

// PollInterval returns the clipboard poll period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// MaxAge returns the age after which history entries expire.
func (c *Config) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeDays) * 24 * time.Hour
}

// CleanupInterval returns the period of the expiry sweep.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSec) * time.Second
}

// Keys returns every recognised config key in sorted order.
func Keys() []string {
	keys := []string{
		KeyPollIntervalMs,
		KeyMaxHistoryItems,
		KeyMaxPins,
		KeyMaxEntryLength,
		KeyMaxAgeDays,
		KeyCleanupIntervalSec,
	}
	sort.Strings(keys)
	return keys
}

// field returns a pointer to the field backing key, or nil for unknown keys.
func (c *Config) field(key string) *int {
	switch key {
	case KeyPollIntervalMs:
		return &c.PollIntervalMs
	case KeyMaxHistoryItems:
		return &c.MaxHistoryItems
	case KeyMaxPins:
		return &c.MaxPins
	case KeyMaxEntryLength:
		return &c.MaxEntryLength
	case KeyMaxAgeDays:
		return &c.MaxAgeDays
	case KeyCleanupIntervalSec:
		return &c.CleanupIntervalSec
	default:
		return nil
	}
}

// Parse applies key=value overrides read from r on top of cfg.
//
// Blank lines and lines starting with '#' are skipped. A line is split on the
// first '=' and both sides are trimmed. Values are applied only when they
// parse as a strictly positive integer; anything else leaves the current
// value untouched. Unknown keys are ignored.
func Parse(r io.Reader, cfg *Config) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		ptr := cfg.field(key)
		if ptr == nil {
			continue
		}
		if n, ok := positiveInt(value); ok {
			*ptr = n
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Errorf("failed to read config: %w", err)
	}
	return nil
}

// parseLine splits a config line into a trimmed key and value.
func parseLine(line string) (string, string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false
	}
	key, value, found := strings.Cut(trimmed, "=")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

func positiveInt(value string) (int, bool) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a config manager for ~/.clippy.conf
func NewConfigManager() (*ConfigManager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Errorf("failed to get user home directory: %w", err)
	}
	return NewConfigManagerWithPath(filepath.Join(homeDir, clipfs.ConfigFile)), nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads the configuration file on top of the defaults.
// A missing file yields the defaults and no error. Any other read failure
// also yields the defaults, together with the error for diagnostics.
func (cm *ConfigManager) Load() (*Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(cm.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, errors.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := Parse(f, cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// Get returns the effective value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	cfg, _ := cm.Load()
	ptr := cfg.field(key)
	if ptr == nil {
		return "", errors.Errorf("unknown configuration key: %s", key)
	}
	return strconv.Itoa(*ptr), nil
}

// List returns all configuration keys and their effective values
func (cm *ConfigManager) List() (map[string]string, error) {
	cfg, err := cm.Load()
	result := make(map[string]string, len(Keys()))
	for _, key := range Keys() {
		result[key] = strconv.Itoa(*cfg.field(key))
	}
	return result, err
}

// Set writes key=value into the config file, replacing an existing
// assignment of the same key or appending a new line. Comments and
// unrelated lines are kept as they are.
func (cm *ConfigManager) Set(key, value string) error {
	if DefaultConfig().field(key) == nil {
		return errors.Errorf("unknown configuration key: %s", key)
	}
	if _, ok := positiveInt(value); !ok {
		return errors.Errorf("%s must be a positive integer, got %q", key, value)
	}

	data, err := os.ReadFile(cm.configPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Errorf("failed to read config file: %w", err)
	}

	var out bytes.Buffer
	replaced := false
	if len(data) > 0 {
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			if k, _, ok := parseLine(line); ok && k == key {
				if replaced {
					continue
				}
				line = fmt.Sprintf("%s=%s", key, value)
				replaced = true
			}
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}
	if !replaced {
		fmt.Fprintf(&out, "%s=%s\n", key, value)
	}

	if err := clipfs.WriteFile(cm.configPath, out.Bytes(), 0o600); err != nil {
		return errors.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MarshalYAML renders the effective configuration for display.
func MarshalYAML(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, errors.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}
