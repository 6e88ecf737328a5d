package transaction

import (
	"github.com/shopspring/decimal"

	"github.com/mrz1836/dcrvault/internal/chain/dcr"
)

// Transaction kinds reported to the metrics recorder.
const (
	KindSingle = "single"
	KindMulti  = "multi"
)

// Settings are the user's fee preferences.
type Settings struct {
	// CustomFeeRate selects FeeRate over the configured default.
	CustomFeeRate bool `json:"customFeeRate" yaml:"custom_fee_rate"`

	// FeeRate is the per-kilobyte rate in coins.
	FeeRate decimal.Decimal `json:"feeRate" yaml:"fee_rate"`
}

// Output is a payment destination with its amount in atoms.
type Output struct {
	Address string `json:"address"`
	Atoms   int64  `json:"atoms"`
}

// MaxSend is the largest amount the wallet can send and the fee for it.
type MaxSend struct {
	MaxAmount int64 `json:"maxAmount"`
	Fee       int64 `json:"fee"`
}

// BuiltTx is a signed transaction ready for broadcast.
type BuiltTx struct {
	Hex string     `json:"hex"`
	Tx  dcr.TxJSON `json:"tx"`
}
