package cli

import (
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/dcrvault/internal/chaindata"
	"github.com/mrz1836/dcrvault/internal/config"
	"github.com/mrz1836/dcrvault/internal/discovery"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	syncSnapshot string
	syncParallel int
	syncTimeout  time.Duration
	syncQuiet    bool
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the active wallet with chain data",
	Long: `Synchronize the active wallet against a chain snapshot file.

A wallet that has never been synchronized (every imported wallet) is
scanned in full: every address of the configured accounts x changes x
indices grid is derived and matched against the snapshot. Later syncs only
refresh the addresses already known to be active.

Progress is saved after every scanned branch, so an interrupted scan
leaves the stored wallet in a consistent state.

Example:
  dcrvault sync --snapshot chain.json
  dcrvault sync --snapshot chain.json --parallel
  dcrvault sync --snapshot chain.json --parallel 8 --timeout 10m`,
	Args: cobra.NoArgs,
	RunE: withOp("sync", runSync),
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncSnapshot, "snapshot", "", "chain snapshot file (JSON)")
	syncCmd.Flags().IntVar(&syncParallel, "parallel", 1, "derive addresses with N workers")
	syncCmd.Flags().Lookup("parallel").NoOptDefVal = strconv.Itoa(discovery.DefaultParallelWorkers)
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 0, "abort the sync after this duration")
	syncCmd.Flags().BoolVarP(&syncQuiet, "quiet", "q", false, "suppress progress output")
	_ = syncCmd.MarkFlagRequired("snapshot")
}

// syncResult is the JSON form of a completed sync.
type syncResult struct {
	WalletSummary

	Utxos        int `json:"utxos"`
	Transactions int `json:"transactions"`
}

func runSync(cmd *cobra.Command, _ []string) error {
	c := newCommandContext()
	ctx, cancel := commandContext(cmd, syncTimeout)
	defer cancel()

	path, err := config.ExpandHome(syncSnapshot)
	if err != nil {
		return err
	}
	source, err := chaindata.LoadSnapshot(path, c.component("chaindata"))
	if err != nil {
		return err
	}

	s, release, err := c.openStore()
	if err != nil {
		return err
	}
	defer release()

	wallets, err := c.loadWallets(ctx, s)
	if err != nil {
		return err
	}
	if _, err = activeWallet(wallets); err != nil {
		return err
	}

	var progress discovery.ProgressCallback
	if !syncQuiet && !formatter.IsJSON() {
		progress = progressPrinter(cmd.ErrOrStderr())
	}

	policy := chaindata.DefaultRetryPolicy()
	policy.MaxAttempts = c.Config.Sync.FetchAttempts
	fetcher := chaindata.NewResilientFetcher(source, chaindata.ResilientOptions{
		Retry:  policy,
		Logger: c.component("chaindata"),
	})

	syncer, err := c.newSyncer(fetcher, s, syncParallel, progress)
	if err != nil {
		return err
	}
	synced, err := syncer.Sync(ctx, wallets)
	if err != nil {
		return err
	}

	active := synced[0]
	res := syncResult{
		WalletSummary: summarize(active, true),
		Utxos:         len(active.State.Utxos),
		Transactions:  len(active.State.ParsedTxHistory),
	}
	return formatter.Result(res, func(w io.Writer) error {
		out(w, "Wallet %s synchronized\n", res.Name)
		out(w, "Balance:          %s DCR\n", res.Balance)
		out(w, "Active addresses: %d\n", res.ActiveAddresses)
		out(w, "Unspent outputs:  %d\n", res.Utxos)
		out(w, "Transactions:     %d\n", res.Transactions)
		return nil
	})
}

// progressPrinter writes one line per sync progress update.
func progressPrinter(w io.Writer) discovery.ProgressCallback {
	return func(u discovery.ProgressUpdate) {
		switch u.Phase {
		case discovery.PhaseScanning:
			if u.AddressesDerived == 0 {
				out(w, "Scanning addresses for %s...\n", u.Wallet)
				return
			}
			out(w, "  account %d change %d: %d addresses (%.1f%%)\n",
				u.Account, u.Change, u.AddressesDerived, u.Percent)
		case discovery.PhaseFetching:
			out(w, "Matching %d addresses against chain data...\n", u.AddressesDerived)
		case discovery.PhaseRefreshed, discovery.PhaseSynced:
			out(w, "Done (%.0f%%)\n", u.Percent)
		}
	}
}

// newSyncer wires the sync engine to the configured scan grid, the metrics
// recorder and the shared wallet locks.
func (c *CommandContext) newSyncer(fetcher discovery.HistoryFetcher, persister discovery.Persister,
	workers int, progress discovery.ProgressCallback,
) (*discovery.Syncer, error) {
	if workers <= 0 {
		workers = discovery.DefaultParallelWorkers
	}
	return discovery.NewSyncer(discovery.Config{
		Fetcher:   fetcher,
		Persister: persister,
		Scanner: &discovery.BruteForceScanner{
			Accounts: c.Config.Sync.Accounts,
			Changes:  c.Config.Sync.Changes,
			Indices:  c.Config.Sync.Indices,
			Workers:  workers,
		},
		Locks:           c.Locks,
		NewAddressLimit: c.Config.Sync.NewAddressLimit,
		Progress:        progress,
		Metrics:         c.Metrics,
		Logger:          c.component("discovery"),
	})
}
