package discovery

import (
	"context"
	"slices"

	"github.com/rs/zerolog"

	"github.com/mrz1836/dcrvault/internal/history"
	"github.com/mrz1836/dcrvault/internal/wallet"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// Sync stages reported to MetricsRecorder.SyncFailed.
const (
	stageScan    = "scan"
	stageFetch   = "fetch"
	stagePersist = "persist"
)

// Config configures a Syncer.
type Config struct {
	Fetcher   HistoryFetcher
	Persister Persister

	// Scanner defaults to NewBruteForceScanner().
	Scanner AddressScanner

	// Locks defaults to a private lock set.
	Locks *wallet.Locks

	// NewDeriver defaults to wallet.NewDeriver.
	NewDeriver DeriverFunc

	// NewAddressLimit defaults to DefaultNewAddressLimit.
	NewAddressLimit int

	Progress ProgressCallback
	Metrics  MetricsRecorder
	Logger   *zerolog.Logger
}

// Syncer runs first syncs, refreshes and new-address creation against the
// active wallet of a collection.
type Syncer struct {
	fetcher         HistoryFetcher
	persister       Persister
	scanner         AddressScanner
	locks           *wallet.Locks
	newDeriver      DeriverFunc
	newAddressLimit int
	progress        ProgressCallback
	metrics         MetricsRecorder
	logger          zerolog.Logger
}

// NewSyncer creates a Syncer. Fetcher and Persister are required.
func NewSyncer(cfg Config) (*Syncer, error) {
	if cfg.Fetcher == nil || cfg.Persister == nil {
		return nil, vaulterr.WithSuggestion(vaulterr.ErrInvalidInput, "a history fetcher and a persister are required")
	}

	s := &Syncer{
		fetcher:         cfg.Fetcher,
		persister:       cfg.Persister,
		scanner:         cfg.Scanner,
		locks:           cfg.Locks,
		newDeriver:      cfg.NewDeriver,
		newAddressLimit: cfg.NewAddressLimit,
		progress:        cfg.Progress,
		metrics:         cfg.Metrics,
		logger:          zerolog.Nop(),
	}
	if s.scanner == nil {
		s.scanner = NewBruteForceScanner()
	}
	if s.locks == nil {
		s.locks = wallet.NewLocks()
	}
	if s.newDeriver == nil {
		s.newDeriver = wallet.NewDeriver
	}
	if s.newAddressLimit <= 0 {
		s.newAddressLimit = DefaultNewAddressLimit
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if cfg.Logger != nil {
		s.logger = *cfg.Logger
	}
	return s, nil
}

// Sync synchronizes wallets[0]. A wallet that has never completed a sync is
// scanned in full; otherwise its active addresses are refreshed. The
// returned collection carries the new state; on error the previously
// confirmed state is left as it was.
func (s *Syncer) Sync(ctx context.Context, wallets []wallet.Wallet) ([]wallet.Wallet, error) {
	if len(wallets) == 0 {
		return nil, vaulterr.WithSuggestion(vaulterr.ErrWalletNotFound, "create or import a wallet first")
	}

	active := wallets[0]
	release, err := s.locks.TryLock(active)
	if err != nil {
		return nil, err
	}
	defer release()

	if active.Mnemonic == "" {
		s.logger.Debug().Str("wallet", active.Name).Msg("wallet has no mnemonic, nothing to sync")
		return cloneCollection(wallets), nil
	}

	if !active.SyncWallet {
		return s.fullSync(ctx, wallets)
	}
	return s.refresh(ctx, wallets)
}

func (s *Syncer) fullSync(ctx context.Context, wallets []wallet.Wallet) ([]wallet.Wallet, error) {
	active := wallets[0].WithSyncPercent(0)
	log := s.logger.With().Str("wallet", active.Name).Logger()

	if err := s.persist(ctx, withActive(active, wallets)); err != nil {
		return nil, err
	}
	s.report(ProgressUpdate{Wallet: active.Name, Phase: PhaseScanning})

	deriver, err := s.newDeriver(active.Mnemonic, active.SeedType, active.Network)
	if err != nil {
		s.metrics.SyncFailed(stageScan)
		return nil, err
	}

	candidates, err := s.scanner.Scan(ctx, deriver, func(ctx context.Context, b Batch) error {
		active = active.WithSyncPercent(b.Percent())
		log.Debug().
			Uint32("account", b.Account).
			Uint32("change", b.Change).
			Int("derived", b.Derived).
			Float64("percent", active.SyncPercent).
			Msg("scan batch complete")

		if err := s.persist(ctx, withActive(active, wallets)); err != nil {
			return err
		}
		s.report(ProgressUpdate{
			Wallet:           active.Name,
			Phase:            PhaseScanning,
			Account:          b.Account,
			Change:           b.Change,
			AddressesDerived: b.Derived,
			Percent:          active.SyncPercent,
		})
		return nil
	})
	if err != nil {
		if !vaulterr.Is(err, vaulterr.ErrCollaborator) {
			s.metrics.SyncFailed(stageScan)
		}
		return nil, err
	}
	s.metrics.AddressesDerived(len(candidates))
	s.report(ProgressUpdate{
		Wallet:           active.Name,
		Phase:            PhaseFetching,
		AddressesDerived: len(candidates),
		Percent:          active.SyncPercent,
	})

	if err = ctx.Err(); err != nil {
		return nil, vaulterr.WrapAs(vaulterr.ErrSyncCanceled, err, "before history fetch")
	}

	data, err := s.fetch(ctx, FetchRequest{
		FullSync:  true,
		Addresses: candidates,
		Wallet:    active,
		Wallets:   withActive(active, wallets),
		Persist:   s.persistFunc(),
	})
	if err != nil {
		return nil, err
	}

	synced := active.WithState(s.stateFrom(data, log))
	synced.SyncWallet = true
	synced.SyncPercent = 100

	out := withActive(synced, wallets)
	if err := s.persist(ctx, out); err != nil {
		return nil, err
	}

	log.Info().
		Int("candidates", len(candidates)).
		Int("active", len(synced.State.ActiveAddresses)).
		Int64("balance", synced.State.BalanceAtoms).
		Msg("first sync complete")
	s.metrics.SyncCompleted(true)
	s.report(ProgressUpdate{Wallet: synced.Name, Phase: PhaseSynced, AddressesDerived: len(candidates), Percent: 100})
	return out, nil
}

func (s *Syncer) refresh(ctx context.Context, wallets []wallet.Wallet) ([]wallet.Wallet, error) {
	active := wallets[0]
	log := s.logger.With().Str("wallet", active.Name).Logger()

	if len(active.State.ActiveAddresses) == 0 {
		log.Debug().Msg("no active addresses, nothing to refresh")
		return cloneCollection(wallets), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, vaulterr.WrapAs(vaulterr.ErrSyncCanceled, err, "before refresh")
	}

	data, err := s.fetch(ctx, FetchRequest{
		FullSync:  false,
		Addresses: slices.Clone(active.State.ActiveAddresses),
		Wallet:    active.Clone(),
		Wallets:   cloneCollection(wallets),
		Persist:   s.persistFunc(),
	})
	if err != nil {
		return nil, err
	}

	out := withActive(active.WithState(s.stateFrom(data, log)), wallets)
	if err := s.persist(ctx, out); err != nil {
		return nil, err
	}

	log.Debug().
		Int("utxos", len(out[0].State.Utxos)).
		Int64("balance", out[0].State.BalanceAtoms).
		Msg("refresh complete")
	s.metrics.SyncCompleted(false)
	s.report(ProgressUpdate{Wallet: active.Name, Phase: PhaseRefreshed, Percent: out[0].SyncPercent})
	return out, nil
}

// stateFrom builds a wallet state from fetched chain data. The balance is
// always recomputed from the unspent outputs and the history deduplicated.
func (s *Syncer) stateFrom(data *ChainData, log zerolog.Logger) wallet.State {
	state := wallet.State{
		Utxos:           nonNil(slices.Clone(data.Utxos)),
		ParsedTxHistory: nonNil(history.Dedup(data.TxList)),
		ActiveAddresses: nonNil(slices.Clone(data.ActiveAddresses)),
	}
	state.BalanceAtoms = state.UtxoTotal()

	if data.Balance != state.BalanceAtoms {
		log.Warn().
			Int64("reported", data.Balance).
			Int64("computed", state.BalanceAtoms).
			Msg("fetched balance disagrees with unspent outputs, using computed value")
	}
	return state
}

func (s *Syncer) fetch(ctx context.Context, req FetchRequest) (*ChainData, error) {
	data, err := s.fetcher.FetchAddressHistories(ctx, req)
	if err != nil {
		s.metrics.SyncFailed(stageFetch)
		return nil, vaulterr.WrapAs(vaulterr.ErrCollaborator, err, "fetching address histories")
	}
	if data == nil {
		s.metrics.SyncFailed(stageFetch)
		return nil, vaulterr.WithSuggestion(vaulterr.ErrCollaborator, "history fetcher returned no data")
	}
	return data, nil
}

func (s *Syncer) persist(ctx context.Context, wallets []wallet.Wallet) error {
	if err := s.persister.Persist(ctx, PersistKey, wallets); err != nil {
		s.metrics.SyncFailed(stagePersist)
		return vaulterr.WrapAs(vaulterr.ErrCollaborator, err, "persisting %s", PersistKey)
	}
	if len(wallets) > 0 {
		s.metrics.SyncProgress(wallets[0].Name, wallets[0].SyncPercent)
	}
	return nil
}

func (s *Syncer) persistFunc() func(context.Context, []wallet.Wallet) error {
	return func(ctx context.Context, wallets []wallet.Wallet) error {
		return s.persist(ctx, cloneCollection(wallets))
	}
}

func (s *Syncer) report(u ProgressUpdate) {
	if s.progress != nil {
		s.progress(u)
	}
}

// withActive returns a new collection with active in place of wallets[0].
func withActive(active wallet.Wallet, wallets []wallet.Wallet) []wallet.Wallet {
	out := make([]wallet.Wallet, 0, len(wallets))
	out = append(out, active.Clone())
	for _, w := range wallets[1:] {
		out = append(out, w.Clone())
	}
	return out
}

func cloneCollection(wallets []wallet.Wallet) []wallet.Wallet {
	out := make([]wallet.Wallet, len(wallets))
	for i, w := range wallets {
		out[i] = w.Clone()
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
