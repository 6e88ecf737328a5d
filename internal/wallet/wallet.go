// Package wallet holds the wallet data model and the deterministic key
// derivation that produces every address a wallet controls.
package wallet

import (
	"encoding/hex"
	"slices"
	"time"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/chaincfg/v3"
	"github.com/shopspring/decimal"

	"github.com/mrz1836/dcrvault/internal/chain"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

const (
	// DefaultPathKey is the only key stored in Wallet.Paths.
	DefaultPathKey = "m/44'/42'/0'/0/0"

	// NamePrefixLength is how many address characters make up a derived
	// wallet name.
	NamePrefixLength = 6
)

// Wallet is one deterministic wallet. Values are treated as immutable
// snapshots: every transition returns a new Wallet.
type Wallet struct {
	Name        string              `json:"name"`
	Mnemonic    string              `json:"mnemonic"`
	SeedType    SeedType            `json:"seedType"`
	Network     chain.Network       `json:"network"`
	Paths       map[string]PathInfo `json:"paths"`
	State       State               `json:"state"`
	SyncWallet  bool                `json:"syncWallet"`
	SyncPercent float64             `json:"syncPercent"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// State is the chain-derived part of a wallet, replaced wholesale by sync.
type State struct {
	BalanceAtoms    int64           `json:"balanceAtoms"`
	Utxos           []Utxo          `json:"utxos"`
	ParsedTxHistory []Transaction   `json:"parsedTxHistory"`
	ActiveAddresses []AddressRecord `json:"activeAddresses"`
}

// AddressRecord is a derived address with its key material and coordinates.
type AddressRecord struct {
	Address      string `json:"address"`
	PrivateKey   string `json:"privateKey"`
	PublicKey    string `json:"publicKey"`
	WIF          string `json:"wif"`
	AccountIndex uint32 `json:"accountIndex"`
	ChangeIndex  uint32 `json:"changeIndex"`
	AddressIndex uint32 `json:"addressIndex"`
}

// PathInfo is an AddressRecord without its coordinates.
type PathInfo struct {
	Address    string `json:"address"`
	PrivateKey string `json:"privateKey"`
	PublicKey  string `json:"publicKey"`
	WIF        string `json:"wif"`
}

// PathInfo drops the coordinates of the record.
func (r AddressRecord) PathInfo() PathInfo {
	return PathInfo{
		Address:    r.Address,
		PrivateKey: r.PrivateKey,
		PublicKey:  r.PublicKey,
		WIF:        r.WIF,
	}
}

// Utxo is an unspent output owned by one of the wallet's addresses.
type Utxo struct {
	TxID          string `json:"txid"`
	Vout          uint32 `json:"vout"`
	Address       string `json:"address"`
	Atoms         int64  `json:"atoms"`
	Confirmations int64  `json:"confirmations"`
}

// Transaction is a raw chain transaction as reported by the history source.
type Transaction struct {
	Txid          string     `json:"txid"`
	Vin           []TxInput  `json:"vin"`
	Vout          []TxOutput `json:"vout"`
	Confirmations int64      `json:"confirmations"`
	Time          int64      `json:"time"`
}

// TxInput references the output a transaction spends.
type TxInput struct {
	Txid     string          `json:"txid"`
	Vout     uint32          `json:"vout"`
	AmountIn decimal.Decimal `json:"amountin"`
}

// TxOutput is one transaction output. Value is in coins.
type TxOutput struct {
	Value        decimal.Decimal `json:"value"`
	N            uint32          `json:"n"`
	ScriptPubKey ScriptPubKey    `json:"scriptPubKey"`
}

// ScriptPubKey lists the addresses an output pays.
type ScriptPubKey struct {
	Addresses []string `json:"addresses"`
}

// ID returns a stable fingerprint of the wallet's mnemonic.
func (w Wallet) ID() string {
	return hex.EncodeToString(chainhash.HashB([]byte(w.Mnemonic)))
}

// Params returns the chain parameters of the wallet's network.
func (w Wallet) Params() *chaincfg.Params {
	return w.Network.Params()
}

// DefaultPath returns the record stored for the default derivation path.
func (w Wallet) DefaultPath() (PathInfo, bool) {
	p, ok := w.Paths[DefaultPathKey]
	return p, ok
}

// DefaultAddress returns the address at the default derivation path.
func (w Wallet) DefaultAddress() string {
	return w.Paths[DefaultPathKey].Address
}

// Addresses returns the wallet's active addresses, falling back to the
// default path address when no address is active yet.
func (w Wallet) Addresses() []string {
	if len(w.State.ActiveAddresses) > 0 {
		out := make([]string, 0, len(w.State.ActiveAddresses))
		for _, r := range w.State.ActiveAddresses {
			out = append(out, r.Address)
		}
		return out
	}
	out := make([]string, 0, len(w.Paths))
	for _, p := range w.Paths {
		out = append(out, p.Address)
	}
	slices.Sort(out)
	return out
}

// AddressSet returns Addresses as a set.
func (w Wallet) AddressSet() map[string]struct{} {
	addrs := w.Addresses()
	set := make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		set[a] = struct{}{}
	}
	return set
}

// IsActive reports whether address is one of the wallet's active addresses.
func (w Wallet) IsActive(address string) bool {
	return slices.ContainsFunc(w.State.ActiveAddresses, func(r AddressRecord) bool {
		return r.Address == address
	})
}

// PrivateKeyFor returns the hex private key controlling address, looked up
// in the active addresses first and then in the stored paths.
func (w Wallet) PrivateKeyFor(address string) (string, error) {
	for _, r := range w.State.ActiveAddresses {
		if r.Address == address && r.PrivateKey != "" {
			return r.PrivateKey, nil
		}
	}
	for _, p := range w.Paths {
		if p.Address == address && p.PrivateKey != "" {
			return p.PrivateKey, nil
		}
	}
	return "", vaulterr.WithDetails(vaulterr.ErrSigningKeyNotFound, map[string]string{"address": address})
}

// Clone returns a deep copy of the wallet.
func (w Wallet) Clone() Wallet {
	out := w
	if w.Paths != nil {
		out.Paths = make(map[string]PathInfo, len(w.Paths))
		for k, v := range w.Paths {
			out.Paths[k] = v
		}
	}
	out.State = w.State.Clone()
	return out
}

// WithState returns a copy of the wallet carrying state.
func (w Wallet) WithState(s State) Wallet {
	out := w.Clone()
	out.State = s.Clone()
	return out
}

// WithName returns a copy of the wallet renamed to name.
func (w Wallet) WithName(name string) Wallet {
	out := w.Clone()
	out.Name = name
	return out
}

// WithSyncPercent returns a copy of the wallet reporting percent progress.
func (w Wallet) WithSyncPercent(percent float64) Wallet {
	out := w.Clone()
	out.SyncPercent = percent
	return out
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{BalanceAtoms: s.BalanceAtoms}
	if s.Utxos != nil {
		out.Utxos = slices.Clone(s.Utxos)
	}
	if s.ActiveAddresses != nil {
		out.ActiveAddresses = slices.Clone(s.ActiveAddresses)
	}
	if s.ParsedTxHistory != nil {
		out.ParsedTxHistory = make([]Transaction, len(s.ParsedTxHistory))
		for i, tx := range s.ParsedTxHistory {
			out.ParsedTxHistory[i] = tx.Clone()
		}
	}
	return out
}

// UtxoTotal returns the sum of all unspent output values.
func (s State) UtxoTotal() int64 {
	var total int64
	for _, u := range s.Utxos {
		total += u.Atoms
	}
	return total
}

// Clone returns a deep copy of the transaction.
func (tx Transaction) Clone() Transaction {
	out := tx
	out.Vin = slices.Clone(tx.Vin)
	if tx.Vout != nil {
		out.Vout = make([]TxOutput, len(tx.Vout))
		for i, o := range tx.Vout {
			o.ScriptPubKey.Addresses = slices.Clone(o.ScriptPubKey.Addresses)
			out.Vout[i] = o
		}
	}
	return out
}

// NamePrefix returns the display name derived from an address.
func NamePrefix(address string) string {
	if len(address) <= NamePrefixLength {
		return address
	}
	return address[:NamePrefixLength]
}
