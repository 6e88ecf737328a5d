package discovery

import (
	"context"
	"slices"

	"github.com/mrz1836/dcrvault/internal/wallet"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// CreateNewAddress adds the next receive address to wallets[0]. It probes
// (0, 0, i) for i = 1..limit and takes the first address not yet active.
// The new address becomes the wallet's default path and names the wallet.
// The boolean is false when every probed index is already active; the
// collection is then returned unchanged.
func (s *Syncer) CreateNewAddress(ctx context.Context, wallets []wallet.Wallet) ([]wallet.Wallet, bool, error) {
	if len(wallets) == 0 {
		return nil, false, vaulterr.WithSuggestion(vaulterr.ErrWalletNotFound, "create or import a wallet first")
	}

	active := wallets[0]
	release, err := s.locks.TryLock(active)
	if err != nil {
		return nil, false, err
	}
	defer release()

	if active.Mnemonic == "" {
		return cloneCollection(wallets), false, nil
	}

	deriver, err := s.newDeriver(active.Mnemonic, active.SeedType, active.Network)
	if err != nil {
		return nil, false, err
	}

	known := make(map[string]struct{}, len(active.State.ActiveAddresses))
	for _, rec := range active.State.ActiveAddresses {
		known[rec.Address] = struct{}{}
	}

	for i := 1; i <= s.newAddressLimit; i++ {
		if err := ctx.Err(); err != nil {
			return nil, false, vaulterr.WrapAs(vaulterr.ErrSyncCanceled, err, "probing index %d", i)
		}

		rec, err := deriver.Derive(0, 0, uint32(i)) //nolint:gosec // bounded by newAddressLimit
		if err != nil {
			return nil, false, err
		}
		if _, ok := known[rec.Address]; ok {
			continue
		}

		next := active.Clone()
		next.State.ActiveAddresses = append(slices.Clone(active.State.ActiveAddresses), rec)
		next.Paths = map[string]wallet.PathInfo{wallet.DefaultPathKey: rec.PathInfo()}
		next.Name = wallet.NamePrefix(rec.Address)

		out := withActive(next, wallets)
		if err := s.persist(ctx, out); err != nil {
			return nil, false, err
		}

		s.logger.Info().
			Str("wallet", next.Name).
			Uint32("index", rec.AddressIndex).
			Msg("created new address")
		return out, true, nil
	}

	s.logger.Warn().
		Str("wallet", active.Name).
		Int("limit", s.newAddressLimit).
		Msg("no unused address within probe limit")
	return cloneCollection(wallets), false, nil
}
