package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/dcrvault/internal/chain"
	"github.com/mrz1836/dcrvault/internal/config"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

func TestLoadSave_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := config.Defaults()
	cfg.Network = "mainnet"
	cfg.Fees.DefaultRate = 5000
	cfg.Storage.Driver = config.StoreBadger
	cfg.Output.Verbose = true

	require.NoError(t, config.Save(cfg, path))

	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Version, loaded.Version)
	assert.Equal(t, "mainnet", loaded.Network)
	assert.Equal(t, int64(5000), loaded.Fees.DefaultRate)
	assert.Equal(t, config.StoreBadger, loaded.Storage.Driver)
	assert.True(t, loaded.Output.Verbose)
	assert.Equal(t, chain.MainNet, loaded.GetNetwork())
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "~/.dcrvault", cfg.Home)
	assert.Equal(t, chain.TestNet, cfg.GetNetwork())
	assert.Equal(t, uint32(42), cfg.Derivation.CoinType)
	assert.Equal(t, int64(2010), cfg.Fees.DefaultRate)
	assert.Equal(t, int64(1000), cfg.Fees.MinRate)
	assert.Equal(t, int64(546), cfg.Fees.DustLimit)
	assert.Equal(t, 20, cfg.Sync.Accounts)
	assert.Equal(t, 4, cfg.Sync.Changes)
	assert.Equal(t, 200, cfg.Sync.Indices)
	assert.Equal(t, 1000, cfg.Sync.NewAddressLimit)
	assert.Equal(t, 4, cfg.Sync.FetchAttempts)
	assert.Equal(t, config.StoreFile, cfg.Storage.Driver)
	assert.Equal(t, "DCRVAULT_PASSPHRASE", cfg.Storage.PassphraseEnv)
	assert.Equal(t, "text", cfg.GetOutputFormat())
	assert.Equal(t, "error", cfg.GetLoggingLevel())
	assert.Equal(t, "~/.dcrvault/dcrvault.log", cfg.GetLoggingFile())
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, vaulterr.ErrConfigNotFound)
}

func TestLoadOrDefault_Missing(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fees: [unclosed"), 0o600))

	_, err := config.Load(path)
	require.ErrorIs(t, err, vaulterr.ErrConfigInvalid)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: mainnet\nfees:\n  default_rate: 3000\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), cfg.Fees.DefaultRate)
	assert.Equal(t, int64(1000), cfg.Fees.MinRate)
	assert.Equal(t, 200, cfg.Sync.Indices)
}

func TestSave_CreatesDirectory(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	require.NoError(t, config.Save(config.Defaults(), path))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"bad network", func(c *config.Config) { c.Network = "regtest" }, "network"},
		{"foreign coin type", func(c *config.Config) { c.Derivation.CoinType = 0 }, "derivation.coin_type"},
		{"zero min rate", func(c *config.Config) { c.Fees.MinRate = 0 }, "fees.min_rate"},
		{"default below min", func(c *config.Config) { c.Fees.DefaultRate = 999 }, "fees.default_rate"},
		{"negative dust", func(c *config.Config) { c.Fees.DustLimit = -1 }, "fees.dust_limit"},
		{"zero indices", func(c *config.Config) { c.Sync.Indices = 0 }, "sync"},
		{"zero new address limit", func(c *config.Config) { c.Sync.NewAddressLimit = 0 }, "sync.new_address_limit"},
		{"zero fetch attempts", func(c *config.Config) { c.Sync.FetchAttempts = 0 }, "sync.fetch_attempts"},
		{"unknown driver", func(c *config.Config) { c.Storage.Driver = "sqlite" }, "storage.driver"},
		{"unknown format", func(c *config.Config) { c.Output.DefaultFormat = "xml" }, "output.default_format"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Defaults()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, vaulterr.ErrConfigInvalid)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestStorePath(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.Home = "/data/vault"
	assert.Equal(t, filepath.Join("/data/vault", "store"), cfg.StorePath())

	cfg.Storage.Driver = config.StoreBadger
	assert.Equal(t, filepath.Join("/data/vault", "db"), cfg.StorePath())

	cfg.Storage.Path = "/elsewhere"
	assert.Equal(t, "/elsewhere", cfg.StorePath())
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := config.ExpandHome("~/vault/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "vault", "config.yaml"), got)

	got, err = config.ExpandHome("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

func TestConfigPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, filepath.Join("/home/user/.dcrvault", "config.yaml"), config.Path("/home/user/.dcrvault"))
}

func TestDefaultHome(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ".dcrvault", filepath.Base(config.DefaultHome()))
}
