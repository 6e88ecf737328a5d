package wallet

import (
	"fmt"
	"time"

	"github.com/mrz1836/dcrvault/internal/chain"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// NewWallet creates a wallet for mnemonic. The default address is derived
// and stored under DefaultPathKey, seeds the active addresses and names
// the wallet. Imported wallets still need a full sync; freshly generated
// ones have no history to discover.
func NewWallet(mnemonic string, seedType SeedType, isImport bool, net chain.Network, now time.Time) (Wallet, error) {
	if mnemonic == "" {
		return Wallet{}, vaulterr.ErrInvalidMnemonic
	}

	deriver, err := NewDeriver(mnemonic, seedType, net)
	if err != nil {
		return Wallet{}, err
	}
	record, err := DeriveDefault(deriver)
	if err != nil {
		return Wallet{}, fmt.Errorf("deriving default address: %w", err)
	}

	return Wallet{
		Name:     NamePrefix(record.Address),
		Mnemonic: mnemonic,
		SeedType: seedType,
		Network:  net,
		Paths: map[string]PathInfo{
			DefaultPathKey: record.PathInfo(),
		},
		State: State{
			Utxos:           []Utxo{},
			ParsedTxHistory: []Transaction{},
			ActiveAddresses: []AddressRecord{record},
		},
		SyncWallet: !isImport,
		CreatedAt:  now.UTC(),
	}, nil
}
