// Package chaindata serves wallet history from an offline chain snapshot.
package chaindata

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"io"
	"slices"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/mrz1836/dcrvault/internal/discovery"
	"github.com/mrz1836/dcrvault/internal/fileutil"
	"github.com/mrz1836/dcrvault/internal/history"
	"github.com/mrz1836/dcrvault/internal/wallet"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// Snapshot is a point-in-time export of chain data.
type Snapshot struct {
	Utxos        []wallet.Utxo        `json:"utxos"`
	Transactions []wallet.Transaction `json:"transactions"`
}

// ErrInvalidSnapshot indicates a snapshot that cannot be decoded.
var ErrInvalidSnapshot = &vaulterr.VaultError{
	Code:     "INVALID_SNAPSHOT",
	Message:  "chain snapshot is not valid JSON",
	ExitCode: vaulterr.ExitInput,
}

// SnapshotSource answers history fetches from a Snapshot.
type SnapshotSource struct {
	snap     Snapshot
	prevouts map[string][]string
	logger   zerolog.Logger
}

var _ discovery.HistoryFetcher = (*SnapshotSource)(nil)

// NewSnapshotSource indexes snap. logger may be nil.
func NewSnapshotSource(snap Snapshot, logger *zerolog.Logger) *SnapshotSource {
	s := &SnapshotSource{
		snap:     snap,
		prevouts: make(map[string][]string),
		logger:   zerolog.Nop(),
	}
	if logger != nil {
		s.logger = logger.With().Str("component", "chaindata").Logger()
	}
	for _, tx := range snap.Transactions {
		for _, out := range tx.Vout {
			s.prevouts[outpoint(tx.Txid, out.N)] = out.ScriptPubKey.Addresses
		}
	}
	return s
}

// ReadSnapshot decodes a snapshot from r.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, vaulterr.WrapAs(ErrInvalidSnapshot, err, "decoding snapshot")
	}
	return snap, nil
}

// LoadSnapshot reads and indexes the snapshot file at path.
func LoadSnapshot(path string, logger *zerolog.Logger) (*SnapshotSource, error) {
	data, ok, err := fileutil.ReadIfExists(path)
	if err != nil {
		return nil, vaulterr.Wrap(err, "reading snapshot")
	}
	if !ok {
		return nil, vaulterr.WithDetails(vaulterr.ErrNotFound, map[string]string{"snapshot": path})
	}
	snap, err := ReadSnapshot(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return NewSnapshotSource(snap, logger), nil
}

// FetchAddressHistories implements discovery.HistoryFetcher.
//
// Unspent outputs are filtered to the requested addresses and summed into
// the balance. Transactions that pay or spend from a requested address are
// returned newest first. A requested record is active when the snapshot
// shows any activity for its address; a refresh keeps the wallet's
// previously active records.
func (s *SnapshotSource) FetchAddressHistories(ctx context.Context, req discovery.FetchRequest) (*discovery.ChainData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wanted := make(map[string]struct{}, len(req.Addresses))
	for _, r := range req.Addresses {
		wanted[r.Address] = struct{}{}
	}
	seen := make(map[string]struct{})

	data := &discovery.ChainData{
		Utxos:           []wallet.Utxo{},
		TxList:          []wallet.Transaction{},
		ActiveAddresses: []wallet.AddressRecord{},
	}

	for _, u := range history.DedupBy(s.snap.Utxos, func(u wallet.Utxo) string { return outpoint(u.TxID, u.Vout) }) {
		if _, ok := wanted[u.Address]; !ok {
			continue
		}
		data.Utxos = append(data.Utxos, u)
		data.Balance += u.Atoms
		seen[u.Address] = struct{}{}
	}

	for _, tx := range history.Dedup(s.snap.Transactions) {
		if s.touches(tx, wanted, seen) {
			data.TxList = append(data.TxList, tx)
		}
	}
	slices.SortStableFunc(data.TxList, func(a, b wallet.Transaction) int {
		return cmp.Compare(b.Time, a.Time)
	})

	included := make(map[string]struct{})
	if !req.FullSync {
		for _, r := range req.Wallet.State.ActiveAddresses {
			data.ActiveAddresses = append(data.ActiveAddresses, r)
			included[r.Address] = struct{}{}
		}
	}
	for _, r := range req.Addresses {
		if _, ok := seen[r.Address]; !ok {
			continue
		}
		if _, dup := included[r.Address]; dup {
			continue
		}
		data.ActiveAddresses = append(data.ActiveAddresses, r)
		included[r.Address] = struct{}{}
	}

	s.logger.Debug().
		Bool("full", req.FullSync).
		Int("requested", len(req.Addresses)).
		Int("utxos", len(data.Utxos)).
		Int("txs", len(data.TxList)).
		Int("active", len(data.ActiveAddresses)).
		Msg("history served from snapshot")
	return data, nil
}

// touches reports whether tx pays or spends from a wanted address, marking
// every wanted address it sees.
func (s *SnapshotSource) touches(tx wallet.Transaction, wanted, seen map[string]struct{}) bool {
	hit := false
	mark := func(addrs []string) {
		for _, a := range addrs {
			if _, ok := wanted[a]; ok {
				seen[a] = struct{}{}
				hit = true
			}
		}
	}
	for _, out := range tx.Vout {
		mark(out.ScriptPubKey.Addresses)
	}
	for _, in := range tx.Vin {
		mark(s.prevouts[outpoint(in.Txid, in.Vout)])
	}
	return hit
}

func outpoint(txid string, vout uint32) string {
	return txid + ":" + strconv.FormatUint(uint64(vout), 10)
}
