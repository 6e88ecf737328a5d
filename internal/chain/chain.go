// Package chain provides Decred network selection, derivation path helpers
// and atom/coin amount conversion shared by the wallet engine.
package chain

import (
	"fmt"
	"strings"

	"github.com/decred/dcrd/chaincfg/v3"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// Network identifies the Decred network the wallet operates on.
type Network string

// Supported networks.
const (
	MainNet Network = "mainnet"
	TestNet Network = "testnet"
	SimNet  Network = "simnet"
)

// CoinTypeDCR is the SLIP-44 coin type used by the wallet's derivation path.
const CoinTypeDCR uint32 = 42

// BIP44Purpose is the purpose field of every derivation path.
const BIP44Purpose uint32 = 44

// Ticker is the display unit for amounts.
const Ticker = "DCR"

// ParseNetwork parses a network name. An empty string selects testnet,
// the application default.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "main", "mainnet":
		return MainNet, nil
	case "", "test", "testnet", "testnet3":
		return TestNet, nil
	case "sim", "simnet":
		return SimNet, nil
	default:
		return "", vaulterr.WithDetails(vaulterr.ErrConfigInvalid, map[string]string{"network": s})
	}
}

// Params returns the dcrd chain parameters for the network.
func (n Network) Params() *chaincfg.Params {
	switch n {
	case MainNet:
		return chaincfg.MainNetParams()
	case SimNet:
		return chaincfg.SimNetParams()
	default:
		return chaincfg.TestNet3Params()
	}
}

// String returns the network name.
func (n Network) String() string {
	return string(n)
}

// DerivationPath returns the full BIP44 path for the given coordinates.
func DerivationPath(account, change, index uint32) string {
	return fmt.Sprintf("m/%d'/%d'/%d'/%d/%d", BIP44Purpose, CoinTypeDCR, account, change, index)
}

// DefaultPath is the single supported path key of a wallet's Paths map.
func DefaultPath() string {
	return DerivationPath(0, 0, 0)
}
