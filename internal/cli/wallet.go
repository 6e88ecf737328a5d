package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/dcrvault/internal/chain"
	"github.com/mrz1836/dcrvault/internal/chaindata"
	"github.com/mrz1836/dcrvault/internal/output"
	"github.com/mrz1836/dcrvault/internal/wallet"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func out(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func outln(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	createSeedType  int
	importSeedType  int
	walletName      string
	deleteConfirmed bool
	addressNew      bool
	addressQR       bool
	addressAmount   string
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var (
	walletCmd = &cobra.Command{
		Use:   "wallet",
		Short: "Manage wallets",
		Long:  `Create, import, list and organize deterministic wallets. The first wallet in the collection is the active one.`,
	}

	walletCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a new wallet",
		Long: `Create a wallet from a freshly generated mnemonic and make it active.

The mnemonic is shown once. Write it down; it is the only way to restore
the wallet.

Seed types 12 and 24 are standard BIP39 wallets. 17 and 33 use the
alternate derivation scheme with 128 and 256 bits of entropy.

Example:
  dcrvault wallet create
  dcrvault wallet create --seed-type 24 --name savings`,
		Args: cobra.NoArgs,
		RunE: withOp("wallet.create", runWalletCreate),
	}

	walletImportCmd = &cobra.Command{
		Use:   "import",
		Short: "Import a wallet from its mnemonic",
		Long: `Import an existing wallet. The mnemonic is read from stdin.

The seed type defaults to the word count (12 or 24); pass 17 or 33 for
wallets that use the alternate scheme. Imported wallets are fully scanned
on their next sync.

Example:
  echo "abandon ... about" | dcrvault wallet import
  dcrvault wallet import --seed-type 17 --name legacy`,
		Args: cobra.NoArgs,
		RunE: withOp("wallet.import", runWalletImport),
	}

	walletListCmd = &cobra.Command{
		Use:   "list",
		Short: "List wallets",
		Args:  cobra.NoArgs,
		RunE:  withOp("wallet.list", runWalletList),
	}

	walletActivateCmd = &cobra.Command{
		Use:   "activate <name>",
		Short: "Make a wallet the active one",
		Args:  cobra.ExactArgs(1),
		RunE:  withOp("wallet.activate", runWalletActivate),
	}

	walletRenameCmd = &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename a wallet",
		Args:  cobra.ExactArgs(2),
		RunE:  withOp("wallet.rename", runWalletRename),
	}

	walletDeleteCmd = &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a wallet",
		Long: `Remove a wallet from the collection. Deleting the active wallet
activates the next one by name. Without its mnemonic the wallet cannot be
recovered.`,
		Args: cobra.ExactArgs(1),
		RunE: withOp("wallet.delete", runWalletDelete),
	}

	walletAddressCmd = &cobra.Command{
		Use:   "address",
		Short: "Show or create the receive address",
		Long: `Show the receive address of the active wallet.

With --new the next unused address on the external branch of account 0
becomes the receive address and the wallet is renamed after it.

Example:
  dcrvault wallet address --qr
  dcrvault wallet address --new`,
		Args: cobra.NoArgs,
		RunE: withOp("wallet.address", runWalletAddress),
	}
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletCreateCmd, walletImportCmd, walletListCmd,
		walletActivateCmd, walletRenameCmd, walletDeleteCmd, walletAddressCmd)

	walletCreateCmd.Flags().IntVar(&createSeedType, "seed-type", int(wallet.SeedType12), "seed type: 12, 17, 24 or 33")
	walletCreateCmd.Flags().StringVar(&walletName, "name", "", "wallet name (default: address prefix)")
	walletImportCmd.Flags().IntVar(&importSeedType, "seed-type", 0, "seed type: 12, 17, 24 or 33 (default: word count)")
	walletImportCmd.Flags().StringVar(&walletName, "name", "", "wallet name (default: address prefix)")
	walletDeleteCmd.Flags().BoolVarP(&deleteConfirmed, "yes", "y", false, "skip confirmation")
	walletAddressCmd.Flags().BoolVar(&addressNew, "new", false, "create the next receive address")
	walletAddressCmd.Flags().BoolVar(&addressQR, "qr", false, "render a QR code on the terminal")
	walletAddressCmd.Flags().StringVar(&addressAmount, "amount", "", "amount to request in the QR payment URI")
}

// withOp records the outcome of a command in the metrics recorder.
func withOp(op string, run func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if recorder != nil {
			recorder.RecordWalletOp(op, err)
		}
		return err
	}
}

// collectionFunc mutates a collection. Returning a nil collection skips
// the write.
type collectionFunc func(ctx context.Context, c *CommandContext, wallets []wallet.Wallet) ([]wallet.Wallet, error)

// updateCollection loads the stored collection, applies fn, and persists
// the result.
func updateCollection(cmd *cobra.Command, fn collectionFunc) error {
	c := newCommandContext()
	ctx, cancel := commandContext(cmd, 0)
	defer cancel()

	s, release, err := c.openStore()
	if err != nil {
		return err
	}
	defer release()

	wallets, err := c.loadWallets(ctx, s)
	if err != nil {
		return err
	}
	next, err := fn(ctx, c, wallets)
	if err != nil || next == nil {
		return err
	}
	return c.saveWallets(ctx, s, next)
}

// readCollection loads the stored collection for read-only commands.
func readCollection(cmd *cobra.Command) (*CommandContext, []wallet.Wallet, error) {
	c := newCommandContext()
	ctx, cancel := commandContext(cmd, 0)
	defer cancel()

	s, release, err := c.openStore()
	if err != nil {
		return nil, nil, err
	}
	defer release()

	wallets, err := c.loadWallets(ctx, s)
	return c, wallets, err
}

// WalletSummary is the displayable part of a wallet. It never carries keys.
type WalletSummary struct {
	Name            string    `json:"name"`
	ID              string    `json:"id"`
	Active          bool      `json:"active"`
	Address         string    `json:"address"`
	Network         string    `json:"network"`
	SeedType        int       `json:"seedType"`
	BalanceAtoms    int64     `json:"balanceAtoms"`
	Balance         string    `json:"balance"`
	Synced          bool      `json:"synced"`
	SyncPercent     float64   `json:"syncPercent"`
	ActiveAddresses int       `json:"activeAddresses"`
	CreatedAt       time.Time `json:"createdAt"`
}

func summarize(w wallet.Wallet, active bool) WalletSummary {
	return WalletSummary{
		Name:            w.Name,
		ID:              w.ID()[:16],
		Active:          active,
		Address:         w.DefaultAddress(),
		Network:         w.Network.String(),
		SeedType:        int(w.SeedType),
		BalanceAtoms:    w.State.BalanceAtoms,
		Balance:         chain.FormatCoin(w.State.BalanceAtoms),
		Synced:          w.SyncWallet,
		SyncPercent:     w.SyncPercent,
		ActiveAddresses: len(w.State.ActiveAddresses),
		CreatedAt:       w.CreatedAt,
	}
}

// createdWallet is the result of create and import.
type createdWallet struct {
	WalletSummary

	Mnemonic string `json:"mnemonic,omitempty"`
}

func runWalletCreate(cmd *cobra.Command, _ []string) error {
	seedType := wallet.SeedType(createSeedType)
	if !seedType.IsValid() {
		return vaulterr.WithDetails(vaulterr.ErrUnsupportedSeedType, map[string]string{"seed_type": strconv.Itoa(createSeedType)})
	}

	mnemonic, err := wallet.GenerateMnemonic(seedType)
	if err != nil {
		return err
	}
	return addWallet(cmd, mnemonic, seedType, false)
}

func runWalletImport(cmd *cobra.Command, _ []string) error {
	mnemonic, err := readMnemonicFn()
	if err != nil {
		return err
	}

	seedType := wallet.SeedType(importSeedType)
	if importSeedType == 0 {
		seedType = wallet.SeedType(len(strings.Fields(mnemonic)))
	}
	if !seedType.IsValid() {
		return vaulterr.WithSuggestion(
			vaulterr.WithDetails(vaulterr.ErrUnsupportedSeedType, map[string]string{"seed_type": seedType.String()}),
			"mnemonics have 12 or 24 words; pass --seed-type 17 or 33 for the alternate scheme")
	}
	if err := wallet.ValidateMnemonic(mnemonic, seedType); err != nil {
		return err
	}
	return addWallet(cmd, mnemonic, seedType, true)
}

func addWallet(cmd *cobra.Command, mnemonic string, seedType wallet.SeedType, isImport bool) error {
	var created wallet.Wallet
	err := updateCollection(cmd, func(_ context.Context, c *CommandContext, wallets []wallet.Wallet) ([]wallet.Wallet, error) {
		w, err := wallet.NewWallet(mnemonic, seedType, isImport, c.Config.GetNetwork(), appClock.Now())
		if err != nil {
			return nil, err
		}
		if walletName != "" {
			name := strings.TrimSpace(walletName)
			if err := wallet.ValidateWalletName(name, wallets); err != nil {
				return nil, err
			}
			w = w.WithName(name)
		}

		next, err := wallet.Add(w, wallets)
		if err != nil {
			return nil, err
		}
		c.Logger.Info("wallet %s added (import=%t, seed type %d)", w.Name, isImport, seedType)
		created = w
		return next, nil
	})
	if err != nil {
		return err
	}

	result := createdWallet{WalletSummary: summarize(created, true)}
	if !isImport {
		result.Mnemonic = created.Mnemonic
	}
	return formatter.Result(result, func(w io.Writer) error {
		if isImport {
			out(w, "Imported wallet %s\n", created.Name)
			out(w, "Address: %s\n", created.DefaultAddress())
			outln(w, "Run 'dcrvault sync' to discover its addresses and balance.")
			return nil
		}
		out(w, "Created wallet %s\n", created.Name)
		out(w, "Address: %s\n\n", created.DefaultAddress())
		outln(w, "Mnemonic (write it down, it will not be shown again):")
		outln(w, "  "+created.Mnemonic)
		return nil
	})
}

func runWalletList(cmd *cobra.Command, _ []string) error {
	_, wallets, err := readCollection(cmd)
	if err != nil {
		return err
	}

	summaries := make([]WalletSummary, 0, len(wallets))
	for i, w := range wallets {
		summaries = append(summaries, summarize(w, i == 0))
	}

	return formatter.Result(summaries, func(w io.Writer) error {
		if len(summaries) == 0 {
			outln(w, "No wallets. Create one with 'dcrvault wallet create'.")
			return nil
		}
		tbl := output.NewTable("", "NAME", "ADDRESS", "BALANCE", "SYNC")
		tbl.AlignRight(3, 4)
		for _, s := range summaries {
			marker := ""
			if s.Active {
				marker = "*"
			}
			tbl.AddRow(marker, s.Name, s.Address, s.Balance, strconv.FormatFloat(s.SyncPercent, 'f', 0, 64)+"%")
		}
		return tbl.Render(w)
	})
}

func runWalletActivate(cmd *cobra.Command, args []string) error {
	var name string
	err := updateCollection(cmd, func(_ context.Context, _ *CommandContext, wallets []wallet.Wallet) ([]wallet.Wallet, error) {
		w, err := wallet.Find(wallets, args[0])
		if err != nil {
			return nil, err
		}
		name = w.Name
		return wallet.Activate(w, wallets)
	})
	if err != nil {
		return err
	}
	return output.FormatSuccess(formatter.Writer(), "Active wallet: "+name, formatter.Format())
}

func runWalletRename(cmd *cobra.Command, args []string) error {
	err := updateCollection(cmd, func(_ context.Context, _ *CommandContext, wallets []wallet.Wallet) ([]wallet.Wallet, error) {
		w, err := wallet.Find(wallets, args[0])
		if err != nil {
			return nil, err
		}
		return wallet.Rename(w, args[1], wallets)
	})
	if err != nil {
		return err
	}
	return output.FormatSuccess(formatter.Writer(), fmt.Sprintf("Renamed %s to %s", args[0], strings.TrimSpace(args[1])), formatter.Format())
}

func runWalletDelete(cmd *cobra.Command, args []string) error {
	var remaining []wallet.Wallet
	err := updateCollection(cmd, func(_ context.Context, c *CommandContext, wallets []wallet.Wallet) ([]wallet.Wallet, error) {
		w, err := wallet.Find(wallets, args[0])
		if err != nil {
			return nil, err
		}
		if !deleteConfirmed && !promptConfirmFn(fmt.Sprintf("Delete wallet %s? Its mnemonic is the only way back", w.Name)) {
			return nil, vaulterr.WithSuggestion(vaulterr.ErrInvalidInput, "deletion not confirmed")
		}
		if c.Locks.Busy(w) {
			return nil, vaulterr.WithDetails(vaulterr.ErrWalletBusy, map[string]string{"name": w.Name})
		}
		remaining, err = wallet.Delete(w, wallets)
		return remaining, err
	})
	if err != nil {
		return err
	}

	msg := "Deleted " + args[0]
	if len(remaining) > 0 {
		msg += "; active wallet: " + remaining[0].Name
	}
	return output.FormatSuccess(formatter.Writer(), msg, formatter.Format())
}

// addressResult is the JSON form of the address command.
type addressResult struct {
	Wallet  string `json:"wallet"`
	Address string `json:"address"`
	URI     string `json:"uri"`
	Created bool   `json:"created"`
}

func runWalletAddress(cmd *cobra.Command, _ []string) error {
	var atoms int64
	if addressAmount != "" {
		coins, err := chain.ParseCoin(addressAmount)
		if err != nil {
			return err
		}
		if atoms, err = chain.ToAtoms(coins); err != nil {
			return err
		}
	}

	var (
		active  wallet.Wallet
		created bool
		err     error
	)
	if addressNew {
		active, err = createAddress(cmd)
		created = true
	} else {
		var wallets []wallet.Wallet
		if _, wallets, err = readCollection(cmd); err == nil {
			active, err = activeWallet(wallets)
		}
	}
	if err != nil {
		return err
	}

	res := addressResult{
		Wallet:  active.Name,
		Address: active.DefaultAddress(),
		URI:     output.PaymentURI(active.DefaultAddress(), atoms),
		Created: created,
	}
	return formatter.Result(res, func(w io.Writer) error {
		if created {
			out(w, "New address for %s\n", res.Wallet)
		}
		outln(w, res.Address)
		if addressQR {
			return output.RenderQR(w, res.URI, output.DefaultQRConfig())
		}
		return nil
	})
}

// createAddress derives the next unused receive address of the active
// wallet and stores the updated collection.
func createAddress(cmd *cobra.Command) (wallet.Wallet, error) {
	c := newCommandContext()
	ctx, cancel := commandContext(cmd, 0)
	defer cancel()

	s, release, err := c.openStore()
	if err != nil {
		return wallet.Wallet{}, err
	}
	defer release()

	wallets, err := c.loadWallets(ctx, s)
	if err != nil {
		return wallet.Wallet{}, err
	}
	if _, err = activeWallet(wallets); err != nil {
		return wallet.Wallet{}, err
	}

	// probing needs no chain data; only the known active addresses matter
	syncer, err := c.newSyncer(chaindata.NewSnapshotSource(chaindata.Snapshot{}, nil), s, 1, nil)
	if err != nil {
		return wallet.Wallet{}, err
	}
	next, ok, err := syncer.CreateNewAddress(ctx, wallets)
	if err != nil {
		return wallet.Wallet{}, err
	}
	if !ok {
		return wallet.Wallet{}, vaulterr.WithSuggestion(vaulterr.ErrGeneral,
			"every address in the probe range is already active")
	}
	return next[0], nil
}
