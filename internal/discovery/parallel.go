package discovery

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/dcrvault/internal/wallet"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// DefaultParallelWorkers is the worker count used when a caller asks for
// concurrent derivation without choosing one.
const DefaultParallelWorkers = 3

// deriveBatch derives indices 0..n-1 of one branch. Results are ordered by
// index regardless of the worker count.
func deriveBatch(ctx context.Context, d wallet.Deriver, account, change uint32, n, workers int) ([]wallet.AddressRecord, error) {
	if workers <= 1 {
		out := make([]wallet.AddressRecord, n)
		for i := range n {
			rec, err := d.Derive(account, change, uint32(i)) //nolint:gosec // bounded by scanner grid
			if err != nil {
				return nil, fmt.Errorf("deriving %d/%d/%d: %w", account, change, i, err)
			}
			out[i] = rec
		}
		return out, nil
	}
	return deriveParallel(ctx, d, account, change, n, workers)
}

// deriveParallel derives the indices of one branch with at most workers
// derivations in flight. The first error cancels the rest.
func deriveParallel(parent context.Context, d wallet.Deriver, account, change uint32, n, workers int) ([]wallet.AddressRecord, error) {
	out := make([]wallet.AddressRecord, n)

	g, ctx := errgroup.WithContext(parent)
	g.SetLimit(workers)

	for i := range n {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			rec, err := d.Derive(account, change, uint32(i)) //nolint:gosec // bounded by scanner grid
			if err != nil {
				return fmt.Errorf("deriving %d/%d/%d: %w", account, change, i, err)
			}
			// each index is written by exactly one goroutine
			out[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := parent.Err(); err != nil {
		return nil, vaulterr.WrapAs(vaulterr.ErrSyncCanceled, err, "deriving account %d change %d", account, change)
	}
	return out, nil
}
