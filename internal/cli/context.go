package cli

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/dcrvault/internal/config"
	"github.com/mrz1836/dcrvault/internal/discovery"
	"github.com/mrz1836/dcrvault/internal/metrics"
	"github.com/mrz1836/dcrvault/internal/output"
	"github.com/mrz1836/dcrvault/internal/service/transaction"
	"github.com/mrz1836/dcrvault/internal/store"
	"github.com/mrz1836/dcrvault/internal/vaultcrypto"
	"github.com/mrz1836/dcrvault/internal/wallet"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// CommandContext holds dependencies for CLI commands.
type CommandContext struct {
	Config    *config.Config
	Logger    *config.Logger
	Formatter *output.Formatter
	Metrics   *metrics.Metrics
	Locks     *wallet.Locks
}

// newCommandContext collects the process state set up by initGlobals.
func newCommandContext() *CommandContext {
	return &CommandContext{
		Config:    cfg,
		Logger:    logger,
		Formatter: formatter,
		Metrics:   recorder,
		Locks:     walletLocks,
	}
}

// component returns a zerolog logger tagged for one subsystem.
func (c *CommandContext) component(name string) *zerolog.Logger {
	l := c.Logger.Component(name)
	return &l
}

// openStore opens the configured wallet store, resolving the storage
// passphrase when encryption is enabled. release closes the store and wipes
// the passphrase.
func (c *CommandContext) openStore() (s *store.Store, release func(), err error) {
	var pass *vaultcrypto.SecureBytes
	if c.Config.Storage.Encrypt {
		if pass, err = c.storagePassphrase(); err != nil {
			return nil, nil, err
		}
	}
	wipe := func() {
		if pass != nil {
			pass.Destroy()
		}
	}

	s, err = store.Open(c.Config, pass, c.component("store"))
	if err != nil {
		wipe()
		return nil, nil, err
	}
	return s, func() {
		if closeErr := s.Close(); closeErr != nil {
			c.Logger.Warn("closing store: %v", closeErr)
		}
		wipe()
	}, nil
}

// storagePassphrase reads the passphrase from the configured environment
// variable, prompting on a terminal when it is unset.
func (c *CommandContext) storagePassphrase() (*vaultcrypto.SecureBytes, error) {
	if v := os.Getenv(c.Config.Storage.PassphraseEnv); v != "" {
		return vaultcrypto.SecureBytesFromSlice([]byte(v))
	}
	raw, err := promptPasswordFn("Store passphrase: ")
	if err != nil {
		return nil, err
	}
	defer vaultcrypto.Zero(raw)
	if len(raw) == 0 {
		return nil, vaulterr.WithSuggestion(vaulterr.ErrInvalidInput,
			"set "+c.Config.Storage.PassphraseEnv+" or enter the store passphrase")
	}
	return vaultcrypto.SecureBytesFromSlice(raw)
}

// loadWallets reads the stored collection.
func (c *CommandContext) loadWallets(ctx context.Context, s *store.Store) ([]wallet.Wallet, error) {
	return s.Load(ctx, discovery.PersistKey)
}

// saveWallets replaces the stored collection.
func (c *CommandContext) saveWallets(ctx context.Context, s *store.Store, wallets []wallet.Wallet) error {
	return s.Persist(ctx, discovery.PersistKey, wallets)
}

// activeWallet returns the first wallet of the collection.
func activeWallet(wallets []wallet.Wallet) (wallet.Wallet, error) {
	if len(wallets) == 0 {
		return wallet.Wallet{}, vaulterr.WithSuggestion(vaulterr.ErrWalletNotFound,
			"create one with 'dcrvault wallet create' or import one with 'dcrvault wallet import'")
	}
	return wallets[0], nil
}

// transactionService builds the fee and send engine from configuration.
func (c *CommandContext) transactionService() *transaction.Service {
	return transaction.NewService(&transaction.Config{
		DefaultFeeRate: c.Config.Fees.DefaultRate,
		DustLimit:      c.Config.Fees.DustLimit,
		Locks:          c.Locks,
		Metrics:        c.Metrics,
		Logger:         c.component("transaction"),
	})
}

// commandContext returns a context rooted in the command context, with a
// deadline when d is positive.
func commandContext(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	if d <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, d)
}
