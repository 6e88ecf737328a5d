package cli

import (
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mrz1836/dcrvault/internal/chain"
	"github.com/mrz1836/dcrvault/internal/output"
	"github.com/mrz1836/dcrvault/internal/service/transaction"
	"github.com/mrz1836/dcrvault/internal/wallet"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	feeAmount string
	feeRate   string
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var (
	feeCmd = &cobra.Command{
		Use:   "fee",
		Short: "Estimate transaction fees",
		Long: `Estimate the fee of a send from the active wallet.

Fees are computed from the size of the signed transaction at the
configured rate, or at --fee-rate (DCR per kB) when given.`,
	}

	feeEstimateCmd = &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the fee for sending an amount",
		Long: `Estimate the fee for sending an amount from the active wallet.

Example:
  dcrvault fee estimate --amount 1.5
  dcrvault fee estimate --amount 1.5 --fee-rate 0.0002`,
		Args: cobra.NoArgs,
		RunE: withOp("fee.estimate", runFeeEstimate),
	}

	feeMaxCmd = &cobra.Command{
		Use:   "max",
		Short: "Show the largest amount the wallet can send",
		Args:  cobra.NoArgs,
		RunE:  withOp("fee.max", runFeeMax),
	}
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(feeCmd)
	feeCmd.AddCommand(feeEstimateCmd, feeMaxCmd)

	feeCmd.PersistentFlags().StringVar(&feeRate, "fee-rate", "", "custom fee rate in DCR per kB")
	feeEstimateCmd.Flags().StringVar(&feeAmount, "amount", "", "amount to send in DCR")
	_ = feeEstimateCmd.MarkFlagRequired("amount")
}

// feeSettings turns a --fee-rate value into transaction settings. An empty
// value selects the configured default rate.
func feeSettings(rate string) (transaction.Settings, error) {
	if rate == "" {
		return transaction.Settings{}, nil
	}
	coins, err := chain.ParseCoin(rate)
	if err != nil {
		return transaction.Settings{}, err
	}
	return transaction.Settings{CustomFeeRate: true, FeeRate: coins}, nil
}

// parseAmount converts a DCR amount flag to atoms.
func parseAmount(s string) (int64, error) {
	coins, err := chain.ParseCoin(s)
	if err != nil {
		return 0, err
	}
	return chain.ToAtoms(coins)
}

// feeResult is the JSON form of the fee commands.
type feeResult struct {
	Wallet      string          `json:"wallet"`
	AmountAtoms int64           `json:"amountAtoms"`
	FeeAtoms    int64           `json:"feeAtoms"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
}

func newFeeResult(w wallet.Wallet, amount, fee int64) feeResult {
	return feeResult{
		Wallet:      w.Name,
		AmountAtoms: amount,
		FeeAtoms:    fee,
		Amount:      chain.ToCoin(amount),
		Fee:         chain.ToCoin(fee),
	}
}

func runFeeEstimate(cmd *cobra.Command, _ []string) error {
	amount, err := parseAmount(feeAmount)
	if err != nil {
		return err
	}
	settings, err := feeSettings(feeRate)
	if err != nil {
		return err
	}

	c, wallets, err := readCollection(cmd)
	if err != nil {
		return err
	}
	w, err := activeWallet(wallets)
	if err != nil {
		return err
	}

	fee, err := c.transactionService().EstimateFee(w, amount, settings)
	if err != nil {
		return err
	}

	res := newFeeResult(w, amount, fee)
	return formatter.Result(res, func(tw io.Writer) error {
		tbl := output.NewTable("", "DCR")
		tbl.AlignRight(1)
		tbl.AddRow("Amount", chain.FormatCoin(amount))
		tbl.AddRow("Fee", chain.FormatCoin(fee))
		tbl.AddRow("Total", chain.FormatCoin(amount+fee))
		return tbl.Render(tw)
	})
}

func runFeeMax(cmd *cobra.Command, _ []string) error {
	settings, err := feeSettings(feeRate)
	if err != nil {
		return err
	}

	c, wallets, err := readCollection(cmd)
	if err != nil {
		return err
	}
	w, err := activeWallet(wallets)
	if err != nil {
		return err
	}

	maxSend, err := c.transactionService().MaxSendAmount(w, settings)
	if err != nil {
		return err
	}

	res := newFeeResult(w, maxSend.MaxAmount, maxSend.Fee)
	return formatter.Result(res, func(tw io.Writer) error {
		outln(tw, "Max amount: "+chain.FormatCoin(maxSend.MaxAmount)+" DCR")
		outln(tw, "Fee:        "+chain.FormatCoin(maxSend.Fee)+" DCR")
		return nil
	})
}
