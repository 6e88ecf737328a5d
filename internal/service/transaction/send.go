package transaction

import (
	"strconv"

	"github.com/mrz1836/dcrvault/internal/wallet"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// SendAmount builds and signs a transaction paying amount atoms to
// address from all of w's UTXOs.
func (s *Service) SendAmount(w wallet.Wallet, amount int64, address string, settings Settings) (*BuiltTx, error) {
	return s.send(w, []Output{{Address: address, Atoms: amount}}, settings, KindSingle)
}

// SendToMany builds and signs a transaction paying every output from all
// of w's UTXOs. Each input is signed with the key of the wallet address it
// belongs to.
func (s *Service) SendToMany(w wallet.Wallet, outputs []Output, settings Settings) (*BuiltTx, error) {
	return s.send(w, outputs, settings, KindMulti)
}

func (s *Service) send(w wallet.Wallet, outputs []Output, settings Settings, kind string) (*BuiltTx, error) {
	if len(outputs) == 0 {
		return nil, vaulterr.WithSuggestion(vaulterr.ErrValidation, "at least one destination is required")
	}
	for _, out := range outputs {
		if out.Atoms <= 0 {
			return nil, vaulterr.WithDetails(vaulterr.ErrInvalidAmount, map[string]string{
				"address": out.Address,
				"atoms":   strconv.FormatInt(out.Atoms, 10),
			})
		}
	}

	release, err := s.lock(w)
	if err != nil {
		return nil, err
	}
	defer release()

	b, err := s.newBuilder(w, settings)
	if err != nil {
		return nil, err
	}
	for _, out := range outputs {
		if err = b.AddOutput(out.Address, out.Atoms); err != nil {
			return nil, err
		}
	}

	tx, err := b.Build()
	if err != nil {
		return nil, err
	}

	keys, err := keysForUtxos(w)
	if err != nil {
		return nil, err
	}
	defer zeroKeyMap(keys)

	if err = tx.Sign(lookup(keys)); err != nil {
		return nil, err
	}

	raw, err := tx.Hex()
	if err != nil {
		return nil, vaulterr.WrapAs(vaulterr.ErrInvalidTransaction, err, "serializing")
	}

	s.metrics.TxBuilt(kind, len(tx.Inputs))
	s.logger.Debug().
		Str("wallet", w.Name).
		Str("txid", tx.TxID()).
		Int("inputs", len(tx.Inputs)).
		Int("outputs", len(tx.Outputs)).
		Int64("fee", tx.Fee).
		Msg("transaction built")

	return &BuiltTx{Hex: raw, Tx: tx.JSON()}, nil
}
