package discovery

import (
	"context"
	"fmt"

	"github.com/mrz1836/dcrvault/internal/wallet"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// Batch is one completed (account, change) branch of a scan.
type Batch struct {
	Account uint32
	Change  uint32

	// Done is the number of batches completed, including this one.
	Done int

	// Total is the number of batches in the scan.
	Total int

	// Derived counts candidates derived so far.
	Derived int
}

// Percent returns the sync percentage reached after this batch.
func (b Batch) Percent() float64 {
	if b.Total == 0 {
		return ScanProgressCeiling
	}
	return ScanProgressCeiling * float64(b.Done) / float64(b.Total)
}

// BatchFunc is called after every completed batch. Returning an error stops
// the scan.
type BatchFunc func(ctx context.Context, b Batch) error

// AddressScanner produces the candidate addresses of a first sync.
type AddressScanner interface {
	Scan(ctx context.Context, d wallet.Deriver, onBatch BatchFunc) ([]wallet.AddressRecord, error)
}

// BruteForceScanner derives every address of a fixed accounts × changes ×
// indices grid, in account, change, index order.
type BruteForceScanner struct {
	Accounts int
	Changes  int
	Indices  int

	// Workers derives each batch concurrently when greater than one.
	// Output order does not depend on it.
	Workers int
}

// NewBruteForceScanner returns a scanner over the default 20 × 4 × 200 grid.
func NewBruteForceScanner() *BruteForceScanner {
	return &BruteForceScanner{
		Accounts: DefaultAccounts,
		Changes:  DefaultChanges,
		Indices:  DefaultIndices,
		Workers:  1,
	}
}

// ErrInvalidScanGrid indicates a scanner with a non-positive dimension.
var ErrInvalidScanGrid = &vaulterr.VaultError{
	Code:     "INVALID_SCAN_GRID",
	Message:  "scan accounts, changes and indices must be positive",
	ExitCode: vaulterr.ExitInput,
}

// Candidates returns the number of addresses a scan derives.
func (s *BruteForceScanner) Candidates() int {
	return s.Accounts * s.Changes * s.Indices
}

// Validate checks the grid dimensions.
func (s *BruteForceScanner) Validate() error {
	if s.Accounts <= 0 || s.Changes <= 0 || s.Indices <= 0 {
		return vaulterr.WithDetails(ErrInvalidScanGrid, map[string]string{
			"grid": fmt.Sprintf("%dx%dx%d", s.Accounts, s.Changes, s.Indices),
		})
	}
	return nil
}

// Scan derives the full grid. The context is checked before every batch;
// a canceled scan returns ErrSyncCanceled.
func (s *BruteForceScanner) Scan(ctx context.Context, d wallet.Deriver, onBatch BatchFunc) ([]wallet.AddressRecord, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	total := s.Accounts * s.Changes
	records := make([]wallet.AddressRecord, 0, s.Candidates())
	done := 0

	for account := range uint32(s.Accounts) { //nolint:gosec // validated positive
		for change := range uint32(s.Changes) { //nolint:gosec // validated positive
			if err := ctx.Err(); err != nil {
				return nil, vaulterr.WrapAs(vaulterr.ErrSyncCanceled, err,
					"scanning account %d change %d", account, change)
			}

			batch, err := deriveBatch(ctx, d, account, change, s.Indices, s.Workers)
			if err != nil {
				return nil, err
			}
			records = append(records, batch...)
			done++

			if onBatch == nil {
				continue
			}
			if err := onBatch(ctx, Batch{
				Account: account,
				Change:  change,
				Done:    done,
				Total:   total,
				Derived: len(records),
			}); err != nil {
				return nil, err
			}
		}
	}

	return records, nil
}
