package config

import "github.com/mrz1836/dcrvault/internal/chain"

// Fee and scan defaults, in atoms where applicable.
const (
	DefaultFeeRate         int64 = 2010
	DefaultMinFeeRate      int64 = 1000
	DefaultDustLimit       int64 = 546
	DefaultScanAccounts          = 20
	DefaultScanChanges           = 4
	DefaultScanIndices           = 200
	DefaultNewAddressLimit       = 1000
	DefaultFetchAttempts         = 4
)

// DefaultPassphraseEnv names the variable holding the storage passphrase.
const DefaultPassphraseEnv = "DCRVAULT_PASSPHRASE" // #nosec G101 -- variable name, not a credential

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.dcrvault",
		Network: string(chain.TestNet),
		Derivation: DerivationConfig{
			CoinType: chain.CoinTypeDCR,
		},
		Fees: FeesConfig{
			DefaultRate: DefaultFeeRate,
			MinRate:     DefaultMinFeeRate,
			DustLimit:   DefaultDustLimit,
		},
		Sync: SyncConfig{
			Accounts:        DefaultScanAccounts,
			Changes:         DefaultScanChanges,
			Indices:         DefaultScanIndices,
			NewAddressLimit: DefaultNewAddressLimit,
			FetchAttempts:   DefaultFetchAttempts,
		},
		Storage: StorageConfig{
			Driver:        StoreFile,
			Encrypt:       false,
			PassphraseEnv: DefaultPassphraseEnv,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.dcrvault/dcrvault.log",
		},
	}
}
