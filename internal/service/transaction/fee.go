package transaction

import (
	"strconv"

	"github.com/mrz1836/dcrvault/internal/chain/dcr"
	"github.com/mrz1836/dcrvault/internal/wallet"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// EstimateFee returns the fee for spending all of w's UTXOs with amount
// going to the network's burn address and change to the default address.
// It fails when the fee would consume the whole input value.
func (s *Service) EstimateFee(w wallet.Wallet, amount int64, settings Settings) (int64, error) {
	if amount < 0 {
		return 0, vaulterr.WithDetails(vaulterr.ErrInvalidAmount, map[string]string{
			"amount": strconv.FormatInt(amount, 10),
		})
	}

	b, err := s.newBuilder(w, settings)
	if err != nil {
		return 0, err
	}

	dump, err := dcr.DumpAddress(w.Params())
	if err != nil {
		return 0, vaulterr.WrapAs(vaulterr.ErrFeeCalculation, err, "dump address")
	}
	if err = b.AddOutput(dump, amount); err != nil {
		return 0, err
	}

	fee, err := b.CalculateFee()
	if err != nil {
		return 0, vaulterr.WrapAs(vaulterr.ErrFeeCalculation, err, "estimating size")
	}
	if fee <= 0 {
		return 0, vaulterr.WithDetails(vaulterr.ErrFeeCalculation, map[string]string{
			"fee": strconv.FormatInt(fee, 10),
		})
	}

	total := b.TotalInputAmount()
	if fee >= total {
		return 0, vaulterr.WithDetails(vaulterr.ErrInsufficientFunds, map[string]string{
			"fee":   strconv.FormatInt(fee, 10),
			"total": strconv.FormatInt(total, 10),
		})
	}

	s.metrics.FeeEstimated(fee)
	s.logger.Debug().
		Str("wallet", w.Name).
		Int64("amount", amount).
		Int64("fee", fee).
		Int64("rate", b.FeeRate).
		Msg("fee estimated")
	return fee, nil
}

// MaxSendAmount returns the whole balance less the fee for spending it.
func (s *Service) MaxSendAmount(w wallet.Wallet, settings Settings) (MaxSend, error) {
	total := w.State.UtxoTotal()
	fee, err := s.EstimateFee(w, total, settings)
	if err != nil {
		return MaxSend{}, err
	}
	return MaxSend{MaxAmount: total - fee, Fee: fee}, nil
}
