package cli

import (
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/dcrvault/internal/chain"
	"github.com/mrz1836/dcrvault/internal/history"
	"github.com/mrz1836/dcrvault/internal/output"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var historyLimit int

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the active wallet's transaction history",
	Long: `Show the transactions recorded by the last sync, newest first, with
their direction, net amount and fee relative to the active wallet.

Example:
  dcrvault history
  dcrvault history --limit 10 -o json`,
	Args: cobra.NoArgs,
	RunE: withOp("history", runHistory),
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show at most N transactions (0 for all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	_, wallets, err := readCollection(cmd)
	if err != nil {
		return err
	}
	w, err := activeWallet(wallets)
	if err != nil {
		return err
	}

	entries, err := history.ParseAll(w, w.State.ParsedTxHistory)
	if err != nil {
		return err
	}
	if historyLimit > 0 && len(entries) > historyLimit {
		entries = entries[:historyLimit]
	}

	return formatter.Result(entries, func(tw io.Writer) error {
		if len(entries) == 0 {
			outln(tw, "No transactions. Run 'dcrvault sync' to fetch history.")
			return nil
		}
		tbl := output.NewTable("TXID", "TIME", "TYPE", "AMOUNT", "FEE", "CONF")
		tbl.AlignRight(3, 4, 5)
		for _, e := range entries {
			kind, sign := "receive", "+"
			if e.IsSend {
				kind, sign = "send", "-"
			}
			tbl.AddRow(
				shortTxid(e.Txid),
				formatTxTime(e.Time),
				kind,
				sign+chain.FormatCoin(e.Amount),
				chain.FormatCoin(e.Fee),
				strconv.FormatInt(e.Confirmations, 10),
			)
		}
		return tbl.Render(tw)
	})
}

// shortTxid abbreviates a transaction hash for table output.
func shortTxid(txid string) string {
	if len(txid) <= 16 {
		return txid
	}
	return txid[:8] + ".." + txid[len(txid)-6:]
}

// formatTxTime renders a block time; unconfirmed transactions carry none.
func formatTxTime(unix int64) string {
	if unix <= 0 {
		return "pending"
	}
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}
