// Package config provides configuration management for dcrvault.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/dcrvault/internal/chain"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// Storage drivers.
const (
	StoreFile   = "file"
	StoreBadger = "badger"
)

// Config represents the application configuration.
type Config struct {
	Version    int              `yaml:"version"`
	Home       string           `yaml:"home"`
	Network    string           `yaml:"network"`
	Derivation DerivationConfig `yaml:"derivation"`
	Fees       FeesConfig       `yaml:"fees"`
	Sync       SyncConfig       `yaml:"sync"`
	Storage    StorageConfig    `yaml:"storage"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DerivationConfig defines key derivation settings.
type DerivationConfig struct {
	CoinType uint32 `yaml:"coin_type"`
}

// FeesConfig defines fee settings, all in atoms.
type FeesConfig struct {
	DefaultRate int64 `yaml:"default_rate"` // atoms per kB
	MinRate     int64 `yaml:"min_rate"`     // atoms per kB
	DustLimit   int64 `yaml:"dust_limit"`
}

// SyncConfig bounds the first-sync scan and new-address probing.
type SyncConfig struct {
	Accounts        int `yaml:"accounts"`
	Changes         int `yaml:"changes"`
	Indices         int `yaml:"indices"`
	NewAddressLimit int `yaml:"new_address_limit"`
	FetchAttempts   int `yaml:"fetch_attempts"`
}

// StorageConfig selects where the wallet collection is persisted.
type StorageConfig struct {
	Driver        string `yaml:"driver"`
	Path          string `yaml:"path"`
	Encrypt       bool   `yaml:"encrypt"`
	PassphraseEnv string `yaml:"passphrase_env"`
}

// MetricsConfig defines where metrics are exported after each command.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, vaulterr.WithDetails(vaulterr.ErrConfigNotFound, map[string]string{"path": path})
		}
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, vaulterr.WrapAs(vaulterr.ErrConfigInvalid, err, "parsing %s", path)
	}

	return cfg, nil
}

// LoadOrDefault loads the config at path, falling back to defaults when the
// file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if vaulterr.Is(err, vaulterr.ErrConfigNotFound) {
		return Defaults(), nil
	}
	return cfg, err
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	invalid := func(field, value string) error {
		return vaulterr.WithDetails(vaulterr.ErrConfigInvalid, map[string]string{field: value})
	}

	if _, err := chain.ParseNetwork(c.Network); err != nil {
		return err
	}
	if c.Derivation.CoinType != chain.CoinTypeDCR {
		return invalid("derivation.coin_type", itoa(int64(c.Derivation.CoinType)))
	}
	if c.Fees.MinRate <= 0 {
		return invalid("fees.min_rate", itoa(c.Fees.MinRate))
	}
	if c.Fees.DefaultRate < c.Fees.MinRate {
		return invalid("fees.default_rate", itoa(c.Fees.DefaultRate))
	}
	if c.Fees.DustLimit < 0 {
		return invalid("fees.dust_limit", itoa(c.Fees.DustLimit))
	}
	if c.Sync.Accounts <= 0 || c.Sync.Changes <= 0 || c.Sync.Indices <= 0 {
		return invalid("sync", "accounts, changes and indices must be positive")
	}
	if c.Sync.NewAddressLimit <= 0 {
		return invalid("sync.new_address_limit", itoa(int64(c.Sync.NewAddressLimit)))
	}
	if c.Sync.FetchAttempts <= 0 {
		return invalid("sync.fetch_attempts", itoa(int64(c.Sync.FetchAttempts)))
	}
	switch c.Storage.Driver {
	case StoreFile, StoreBadger:
	default:
		return invalid("storage.driver", c.Storage.Driver)
	}
	switch c.Output.DefaultFormat {
	case "text", "json":
	default:
		return invalid("output.default_format", c.Output.DefaultFormat)
	}
	return nil
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// ExpandHome resolves a leading "~/" against the user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}

// GetHome returns the dcrvault home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetNetwork returns the configured network. An invalid value yields testnet.
func (c *Config) GetNetwork() chain.Network {
	n, err := chain.ParseNetwork(c.Network)
	if err != nil {
		return chain.TestNet
	}
	return n
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// StorePath returns the storage location, defaulting to a driver specific
// entry under the home directory.
func (c *Config) StorePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	if c.Storage.Driver == StoreBadger {
		return filepath.Join(c.Home, "db")
	}
	return filepath.Join(c.Home, "store")
}

// DefaultHome returns the default dcrvault home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dcrvault"
	}
	return filepath.Join(home, ".dcrvault")
}
