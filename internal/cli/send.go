package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/dcrvault/internal/chain"
	"github.com/mrz1836/dcrvault/internal/config"
	"github.com/mrz1836/dcrvault/internal/fileutil"
	"github.com/mrz1836/dcrvault/internal/output"
	"github.com/mrz1836/dcrvault/internal/service/transaction"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// amountMax selects the whole spendable balance.
const amountMax = "max"

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	sendTo      string
	sendAmount  string
	sendFeeRate string
	sendOutFile string
	sendYes     bool

	multisendFile string
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var (
	sendCmd = &cobra.Command{
		Use:   "send",
		Short: "Build and sign a payment",
		Long: `Build a signed transaction paying one address from the active wallet.

Every unspent output of the wallet is spent; change above the dust limit
returns to the wallet's default address. The signed transaction is printed
as hex and is not broadcast.

Use --amount max to send the whole balance less the fee.

Example:
  dcrvault send --to TsXYZ... --amount 0.5
  dcrvault send --to TsXYZ... --amount max --fee-rate 0.0002 --out tx.hex`,
		Args: cobra.NoArgs,
		RunE: withOp("send", runSend),
	}

	multisendCmd = &cobra.Command{
		Use:   "multisend",
		Short: "Build and sign a payment to many addresses",
		Long: `Build a signed transaction paying several addresses at once.

The input has one "address,amount" pair per line, amounts in DCR. Blank
lines are ignored. Use --file - to read from stdin.

Example:
  dcrvault multisend --file payouts.csv
  printf 'TsA...,0.1\nTsB...,0.2\n' | dcrvault multisend --file -`,
		Args: cobra.NoArgs,
		RunE: withOp("multisend", runMultisend),
	}
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(sendCmd, multisendCmd)

	sendCmd.Flags().StringVar(&sendTo, "to", "", "destination address")
	sendCmd.Flags().StringVar(&sendAmount, "amount", "", "amount in DCR, or 'max'")
	_ = sendCmd.MarkFlagRequired("to")
	_ = sendCmd.MarkFlagRequired("amount")

	multisendCmd.Flags().StringVar(&multisendFile, "file", "", "file of address,amount lines ('-' for stdin)")
	_ = multisendCmd.MarkFlagRequired("file")

	for _, c := range []*cobra.Command{sendCmd, multisendCmd} {
		c.Flags().StringVar(&sendFeeRate, "fee-rate", "", "custom fee rate in DCR per kB")
		c.Flags().StringVar(&sendOutFile, "out", "", "also write the signed transaction hex to this file")
		c.Flags().BoolVarP(&sendYes, "yes", "y", false, "skip confirmation")
	}
}

// sendResult is the JSON form of a built transaction.
type sendResult struct {
	Wallet  string               `json:"wallet"`
	Txid    string               `json:"txid"`
	Fee     int64                `json:"fee"`
	Outputs []transaction.Output `json:"outputs"`
	Hex     string               `json:"hex"`
}

func runSend(cmd *cobra.Command, _ []string) error {
	settings, err := feeSettings(sendFeeRate)
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
	svc := c.transactionService()

	var amount int64
	if strings.EqualFold(strings.TrimSpace(sendAmount), amountMax) {
		maxSend, maxErr := svc.MaxSendAmount(w, settings)
		if maxErr != nil {
			return maxErr
		}
		amount = maxSend.MaxAmount
	} else if amount, err = parseAmount(sendAmount); err != nil {
		return err
	}

	outputs := []transaction.Output{{Address: strings.TrimSpace(sendTo), Atoms: amount}}
	if err = confirmSend(w.Name, outputs); err != nil {
		return err
	}

	built, err := svc.SendAmount(w, amount, outputs[0].Address, settings)
	if err != nil {
		return err
	}
	return reportBuilt(w.Name, outputs, built)
}

func runMultisend(cmd *cobra.Command, _ []string) error {
	settings, err := feeSettings(sendFeeRate)
	if err != nil {
		return err
	}
	input, err := readMultisendInput(multisendFile)
	if err != nil {
		return err
	}
	outputs, err := transaction.ParseMultiSendInput(input)
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
	if err = confirmSend(w.Name, outputs); err != nil {
		return err
	}

	built, err := c.transactionService().SendToMany(w, outputs, settings)
	if err != nil {
		return err
	}
	return reportBuilt(w.Name, outputs, built)
}

// readMultisendInput reads the multi-send block from a file or stdin.
func readMultisendInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	path, err := config.ExpandHome(path)
	if err != nil {
		return "", err
	}
	data, ok, err := fileutil.ReadIfExists(path)
	if err != nil {
		return "", vaulterr.Wrap(err, "reading %s", path)
	}
	if !ok {
		return "", vaulterr.WithDetails(vaulterr.ErrNotFound, map[string]string{"file": path})
	}
	return string(data), nil
}

// confirmSend asks before signing unless --yes or JSON output is in effect.
func confirmSend(walletName string, outputs []transaction.Output) error {
	if sendYes || formatter.IsJSON() {
		return nil
	}
	var total int64
	for _, o := range outputs {
		total += o.Atoms
	}
	question := fmt.Sprintf("Sign a payment of %s DCR to %d address(es) from %s?",
		chain.FormatCoin(total), len(outputs), walletName)
	if !promptConfirmFn(question) {
		return vaulterr.WithSuggestion(vaulterr.ErrInvalidInput, "payment not confirmed")
	}
	return nil
}

func reportBuilt(walletName string, outputs []transaction.Output, built *transaction.BuiltTx) error {
	if sendOutFile != "" {
		path, err := config.ExpandHome(sendOutFile)
		if err != nil {
			return err
		}
		if err = fileutil.WriteAtomic(path, []byte(built.Hex+"\n"), 0o600); err != nil {
			return vaulterr.Wrap(err, "writing %s", path)
		}
	}

	res := sendResult{
		Wallet:  walletName,
		Txid:    built.Tx.Hash,
		Fee:     built.Tx.Fee,
		Outputs: outputs,
		Hex:     built.Hex,
	}
	return formatter.Result(res, func(w io.Writer) error {
		tbl := output.NewTable("ADDRESS", "AMOUNT")
		tbl.AlignRight(1)
		for _, o := range outputs {
			tbl.AddRow(o.Address, chain.FormatCoin(o.Atoms))
		}
		if err := tbl.Render(w); err != nil {
			return err
		}
		out(w, "\nFee:  %s DCR\n", chain.FormatCoin(res.Fee))
		out(w, "Txid: %s\n\n", res.Txid)
		outln(w, res.Hex)
		if sendOutFile != "" {
			output.Infof(os.Stderr, "signed transaction written to %s", sendOutFile)
		}
		return nil
	})
}
