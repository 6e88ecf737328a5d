// Package transaction estimates fees and builds signed spend transactions
// from a wallet's unspent outputs.
package transaction

import (
	"github.com/rs/zerolog"

	"github.com/mrz1836/dcrvault/internal/chain"
	"github.com/mrz1836/dcrvault/internal/chain/dcr"
	"github.com/mrz1836/dcrvault/internal/wallet"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// Service provides fee estimation and transaction building.
type Service struct {
	defaultFeeRate int64
	dustLimit      int64
	locks          *wallet.Locks
	metrics        MetricsRecorder
	logger         zerolog.Logger
}

// Config holds dependencies for the transaction service.
type Config struct {
	// DefaultFeeRate is the per-kilobyte rate in atoms used without a
	// custom rate. Zero selects dcr.DefaultFeeRate.
	DefaultFeeRate int64

	// DustLimit is the largest change folded into the fee. Zero selects
	// dcr.DustLimit.
	DustLimit int64

	// Locks, when set, rejects concurrent sends from one wallet.
	Locks *wallet.Locks

	Metrics MetricsRecorder

	// Logger defaults to a disabled logger.
	Logger *zerolog.Logger
}

// NewService creates a new transaction service.
func NewService(cfg *Config) *Service {
	s := &Service{
		defaultFeeRate: cfg.DefaultFeeRate,
		dustLimit:      cfg.DustLimit,
		locks:          cfg.Locks,
		metrics:        cfg.Metrics,
		logger:         zerolog.Nop(),
	}
	if cfg.Logger != nil {
		s.logger = *cfg.Logger
	}
	if s.defaultFeeRate <= 0 {
		s.defaultFeeRate = dcr.DefaultFeeRate
	}
	if s.dustLimit <= 0 {
		s.dustLimit = dcr.DustLimit
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	return s
}

// feeRate resolves the per-kilobyte rate in atoms for settings.
func (s *Service) feeRate(settings Settings) (int64, error) {
	if !settings.CustomFeeRate {
		return s.defaultFeeRate, nil
	}
	rate, err := chain.ToAtoms(settings.FeeRate)
	if err != nil {
		return 0, vaulterr.Wrap(err, "custom fee rate %s", settings.FeeRate)
	}
	if rate <= 0 {
		return 0, vaulterr.WithDetails(vaulterr.ErrInvalidAmount, map[string]string{
			"fee_rate": settings.FeeRate.String(),
		})
	}
	return rate, nil
}

// newBuilder returns a builder spending every UTXO of w with change going
// to the wallet's default address.
func (s *Service) newBuilder(w wallet.Wallet, settings Settings) (*dcr.TxBuilder, error) {
	rate, err := s.feeRate(settings)
	if err != nil {
		return nil, err
	}

	b := dcr.NewTxBuilder(w.Params())
	b.FeeRate = rate
	b.DustLimit = s.dustLimit

	for _, utxo := range w.State.Utxos {
		err = b.AddInput(dcr.Input{
			TxID:    utxo.TxID,
			Vout:    utxo.Vout,
			Atoms:   utxo.Atoms,
			Address: utxo.Address,
		})
		if err != nil {
			return nil, vaulterr.Wrap(err, "adding input %s:%d", utxo.TxID, utxo.Vout)
		}
	}

	change := w.DefaultAddress()
	if change == "" {
		return nil, vaulterr.WithSuggestion(vaulterr.ErrInvalidInput, "wallet has no default address")
	}
	if err = b.SetChangeAddress(change); err != nil {
		return nil, err
	}
	return b, nil
}

// lock marks w busy for the duration of a send.
func (s *Service) lock(w wallet.Wallet) (func(), error) {
	if s.locks == nil {
		return func() {}, nil
	}
	return s.locks.TryLock(w)
}
