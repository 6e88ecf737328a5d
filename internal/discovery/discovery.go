// Package discovery synchronizes wallets with chain data. A first sync
// derives a fixed grid of candidate addresses and hands them to a history
// fetcher; later syncs only refresh the addresses already known to be active.
package discovery

import (
	"context"

	"github.com/mrz1836/dcrvault/internal/chain"
	"github.com/mrz1836/dcrvault/internal/wallet"
)

// Default scanning parameters.
const (
	// DefaultAccounts is the number of accounts derived on a first sync.
	DefaultAccounts = 20

	// DefaultChanges is the number of change branches derived per account.
	DefaultChanges = 4

	// DefaultIndices is the number of addresses derived per branch.
	DefaultIndices = 200

	// DefaultNewAddressLimit bounds the index probed when creating a new
	// receive address.
	DefaultNewAddressLimit = 1000

	// ScanProgressCeiling is the sync percentage reached once every
	// candidate has been derived. The remainder covers the history fetch.
	ScanProgressCeiling = 40.0

	// PersistKey is the storage key of the wallet collection.
	PersistKey = "wallets"
)

// Sync phases reported to progress callbacks.
const (
	PhaseScanning  = "scanning"
	PhaseFetching  = "fetching"
	PhaseRefreshed = "refreshed"
	PhaseSynced    = "synced"
)

// FetchRequest describes one history fetch.
type FetchRequest struct {
	// FullSync is true for a first sync over every derived candidate.
	FullSync bool

	// Addresses are the records whose history is requested.
	Addresses []wallet.AddressRecord

	// Wallet is the wallet being synchronized.
	Wallet wallet.Wallet

	// Wallets is the whole collection, active wallet first.
	Wallets []wallet.Wallet

	// Persist lets the fetcher store intermediate collection state.
	Persist func(ctx context.Context, wallets []wallet.Wallet) error
}

// ChainData is the authoritative chain view returned by a fetch.
type ChainData struct {
	Balance         int64
	Utxos           []wallet.Utxo
	TxList          []wallet.Transaction
	ActiveAddresses []wallet.AddressRecord
}

// HistoryFetcher retrieves chain data for a set of addresses.
type HistoryFetcher interface {
	FetchAddressHistories(ctx context.Context, req FetchRequest) (*ChainData, error)
}

// Persister writes the wallet collection to durable storage.
type Persister interface {
	Persist(ctx context.Context, key string, wallets []wallet.Wallet) error
}

// ProgressUpdate provides feedback during a sync.
type ProgressUpdate struct {
	// Wallet is the name of the wallet being synchronized.
	Wallet string

	// Phase is one of the Phase constants.
	Phase string

	// Account and Change identify the batch just completed while scanning.
	Account uint32
	Change  uint32

	// AddressesDerived counts candidates derived so far.
	AddressesDerived int

	// Percent is the wallet's sync percentage after this update.
	Percent float64
}

// ProgressCallback is called during syncing to report progress.
type ProgressCallback func(ProgressUpdate)

// MetricsRecorder receives sync measurements.
type MetricsRecorder interface {
	SyncProgress(wallet string, percent float64)
	AddressesDerived(n int)
	SyncCompleted(full bool)
	SyncFailed(stage string)
}

type nopRecorder struct{}

func (nopRecorder) SyncProgress(string, float64) {}
func (nopRecorder) AddressesDerived(int)         {}
func (nopRecorder) SyncCompleted(bool)           {}
func (nopRecorder) SyncFailed(string)            {}

// DeriverFunc builds the key deriver for a wallet.
type DeriverFunc func(mnemonic string, seedType wallet.SeedType, net chain.Network) (wallet.Deriver, error)
