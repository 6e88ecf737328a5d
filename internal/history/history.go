// Package history turns raw chain transactions into wallet-relative
// entries: direction, net amount and fee.
package history

import (
	"fmt"

	"github.com/mrz1836/dcrvault/internal/chain"
	"github.com/mrz1836/dcrvault/internal/wallet"
)

// Entry is a transaction seen from one wallet. Amounts are in atoms.
type Entry struct {
	Txid          string   `json:"txid"`
	Confirmations int64    `json:"confirmations"`
	Time          int64    `json:"time"`
	IsSend        bool     `json:"isSend"`
	Amount        int64    `json:"amount"`
	Fee           int64    `json:"fee"`
	Vin           []Input  `json:"vin"`
	Vout          []Output `json:"vout"`
}

// Input is a spent output with its value in atoms.
type Input struct {
	Txid  string `json:"txid"`
	Value int64  `json:"value"`
	Vout  uint32 `json:"vout"`
}

// Output is a created output with its first address and value in atoms.
type Output struct {
	Address string `json:"address"`
	Value   int64  `json:"value"`
	N       uint32 `json:"n"`
}

// Parse classifies tx relative to w.
//
// A transaction is a send when one of its inputs spends an output of a
// transaction in w's cached history and that output pays one of w's
// addresses. The spent output is looked up by its position in the cached
// transaction's output list. Transactions whose funding outputs are not in
// the cache are classified as receives.
//
// Fee is inputs minus outputs. A send's amount is what left the wallet
// (inputs minus fee minus outputs coming back); a receive's amount is the
// total paid to the wallet.
func Parse(w wallet.Wallet, tx wallet.Transaction) (Entry, error) {
	entry := Entry{
		Txid:          tx.Txid,
		Confirmations: tx.Confirmations,
		Time:          tx.Time,
		Vin:           make([]Input, 0, len(tx.Vin)),
		Vout:          make([]Output, 0, len(tx.Vout)),
	}

	addresses := w.AddressSet()
	cached := indexByTxid(Dedup(w.State.ParsedTxHistory))
	entry.IsSend = isSend(tx, cached, addresses)

	var vinTotal, voutTotal, received int64
	for _, in := range tx.Vin {
		value, err := chain.ToAtoms(in.AmountIn)
		if err != nil {
			return Entry{}, fmt.Errorf("input %s:%d of %s: %w", in.Txid, in.Vout, tx.Txid, err)
		}
		vinTotal += value
		entry.Vin = append(entry.Vin, Input{Txid: in.Txid, Value: value, Vout: in.Vout})
	}

	for _, out := range tx.Vout {
		value, err := chain.ToAtoms(out.Value)
		if err != nil {
			return Entry{}, fmt.Errorf("output %d of %s: %w", out.N, tx.Txid, err)
		}
		voutTotal += value

		var address string
		if len(out.ScriptPubKey.Addresses) > 0 {
			address = out.ScriptPubKey.Addresses[0]
		}
		entry.Vout = append(entry.Vout, Output{Address: address, Value: value, N: out.N})

		if paysAny(out, addresses) {
			received += value
		}
	}

	entry.Fee = vinTotal - voutTotal
	if entry.IsSend {
		entry.Amount = vinTotal - entry.Fee - received
	} else {
		entry.Amount = received
	}
	return entry, nil
}

// ParseAll parses every distinct transaction of txs in order.
func ParseAll(w wallet.Wallet, txs []wallet.Transaction) ([]Entry, error) {
	unique := Dedup(txs)
	entries := make([]Entry, 0, len(unique))
	for _, tx := range unique {
		entry, err := Parse(w, tx)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func isSend(tx wallet.Transaction, cached map[string]wallet.Transaction, addresses map[string]struct{}) bool {
	for _, in := range tx.Vin {
		prev, ok := cached[in.Txid]
		if !ok {
			continue
		}
		if int(in.Vout) >= len(prev.Vout) {
			continue
		}
		if paysAny(prev.Vout[in.Vout], addresses) {
			return true
		}
	}
	return false
}

func paysAny(out wallet.TxOutput, addresses map[string]struct{}) bool {
	for _, addr := range out.ScriptPubKey.Addresses {
		if _, ok := addresses[addr]; ok {
			return true
		}
	}
	return false
}

func indexByTxid(txs []wallet.Transaction) map[string]wallet.Transaction {
	out := make(map[string]wallet.Transaction, len(txs))
	for _, tx := range txs {
		out[tx.Txid] = tx
	}
	return out
}
