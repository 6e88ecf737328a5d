package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/dcrvault/internal/chaindata"
	"github.com/mrz1836/dcrvault/internal/history"
	"github.com/mrz1836/dcrvault/internal/wallet"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// cliHarness drives rootCmd against a temporary home directory.
// Commands share package state, so these tests do not run in parallel.
type cliHarness struct {
	t    *testing.T
	home string
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()

	t.Setenv("DCRVAULT_HOME", "")
	t.Setenv("DCRVAULT_NETWORK", "")
	t.Setenv("DCRVAULT_STORE", "")
	t.Setenv("DCRVAULT_OUTPUT_FORMAT", "")

	prevClock, prevMnemonic, prevConfirm := appClock, readMnemonicFn, promptConfirmFn
	appClock = clock.NewTestClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	promptConfirmFn = func(string) bool { return false }
	t.Cleanup(func() {
		appClock, readMnemonicFn, promptConfirmFn = prevClock, prevMnemonic, prevConfirm
	})

	h := &cliHarness{t: t, home: t.TempDir()}
	// a small scan grid keeps full syncs fast
	h.mustRun("config", "set", "sync.accounts", "1")
	h.mustRun("config", "set", "sync.changes", "2")
	h.mustRun("config", "set", "sync.indices", "3")
	return h
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func (h *cliHarness) run(args ...string) (string, error) {
	h.t.Helper()

	resetFlags(rootCmd)
	cfg, logger, formatter, recorder = nil, nil, nil, nil
	walletLocks = wallet.NewLocks()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--home", h.home}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "dcrvault %s", strings.Join(args, " "))
	return out
}

func (h *cliHarness) runJSON(v any, args ...string) {
	h.t.Helper()
	out := h.mustRun(append(args, "-o", "json")...)
	require.NoError(h.t, json.Unmarshal([]byte(out), v), out)
}

func (h *cliHarness) importWallet(mnemonic string) createdWallet {
	h.t.Helper()
	readMnemonicFn = func() (string, error) { return mnemonic, nil }
	var w createdWallet
	h.runJSON(&w, "wallet", "import")
	return w
}

func (h *cliHarness) writeSnapshot(snap chaindata.Snapshot) string {
	h.t.Helper()
	data, err := json.Marshal(snap)
	require.NoError(h.t, err)
	path := filepath.Join(h.home, "chain.json")
	require.NoError(h.t, os.WriteFile(path, data, 0o600))
	return path
}

func fundingSnapshot(address string) chaindata.Snapshot {
	txid := strings.Repeat("ab", 32)
	return chaindata.Snapshot{
		Utxos: []wallet.Utxo{{TxID: txid, Vout: 0, Address: address, Atoms: 100_000_000, Confirmations: 6}},
		Transactions: []wallet.Transaction{{
			Txid:          txid,
			Confirmations: 6,
			Time:          1_700_000_000,
			Vin:           []wallet.TxInput{{Txid: strings.Repeat("cd", 32), Vout: 1, AmountIn: decimal.RequireFromString("1.5")}},
			Vout: []wallet.TxOutput{
				{Value: decimal.RequireFromString("1"), N: 0, ScriptPubKey: wallet.ScriptPubKey{Addresses: []string{address}}},
				{Value: decimal.RequireFromString("0.4999"), N: 1, ScriptPubKey: wallet.ScriptPubKey{Addresses: []string{"TsSomebodyElse"}}},
			},
		}},
	}
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "dev (commit: unknown, built: unknown)", FormatVersion(BuildInfo{}))
	assert.Equal(t, "1.2.0 (commit: abc123, built: 2024-03-01)",
		FormatVersion(BuildInfo{Version: "1.2.0", Commit: "abc123", Date: "2024-03-01"}))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, vaulterr.ExitAuth, ExitCode(vaulterr.ErrDecryptionFailed))
	assert.Equal(t, vaulterr.ExitCode(vaulterr.ErrWalletNotFound), ExitCode(vaulterr.Wrap(vaulterr.ErrWalletNotFound, "loading")))
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.mustRun("version"), "dcrvault dev")
}

func TestWalletLifecycle(t *testing.T) {
	h := newHarness(t)

	var created createdWallet
	h.runJSON(&created, "wallet", "create")
	require.NotEmpty(t, created.Mnemonic)
	assert.Len(t, strings.Fields(created.Mnemonic), 12)
	assert.True(t, created.Active)
	assert.True(t, created.Synced)
	assert.Equal(t, "testnet", created.Network)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), created.CreatedAt)

	imported := h.importWallet(testMnemonic)
	assert.Empty(t, imported.Mnemonic, "imported mnemonics are never echoed")
	assert.False(t, imported.Synced)
	assert.Equal(t, wallet.NamePrefix(imported.Address), imported.Name)

	var list []WalletSummary
	h.runJSON(&list, "wallet", "list")
	require.Len(t, list, 2)
	assert.Equal(t, imported.Name, list[0].Name)
	assert.True(t, list[0].Active)
	assert.False(t, list[1].Active)

	h.mustRun("wallet", "activate", created.Name)
	h.runJSON(&list, "wallet", "list")
	assert.Equal(t, created.Name, list[0].Name)

	h.mustRun("wallet", "rename", imported.Name, "savings")
	h.runJSON(&list, "wallet", "list")
	assert.Equal(t, "savings", list[1].Name)

	_, err := h.run("wallet", "rename", "savings", created.Name)
	require.ErrorIs(t, err, vaulterr.ErrInvalidInput)

	_, err = h.run("wallet", "delete", "savings")
	require.Error(t, err, "deletion needs confirmation")

	h.mustRun("wallet", "delete", created.Name, "--yes")
	h.runJSON(&list, "wallet", "list")
	require.Len(t, list, 1)
	assert.Equal(t, "savings", list[0].Name)
	assert.True(t, list[0].Active)

	_, err = h.run("wallet", "activate", "nope")
	require.ErrorIs(t, err, vaulterr.ErrWalletNotFound)
}

func TestWalletCreate_SeedTypes(t *testing.T) {
	h := newHarness(t)

	var w createdWallet
	h.runJSON(&w, "wallet", "create", "--seed-type", "33", "--name", "alt")
	assert.Equal(t, "alt", w.Name)
	assert.Equal(t, 33, w.SeedType)
	assert.Len(t, strings.Fields(w.Mnemonic), 24)

	_, err := h.run("wallet", "create", "--seed-type", "15")
	require.ErrorIs(t, err, vaulterr.ErrUnsupportedSeedType)

	_, err = h.run("wallet", "create", "--name", "alt")
	require.ErrorIs(t, err, wallet.ErrInvalidWalletName)
}

func TestWalletImport_Rejects(t *testing.T) {
	h := newHarness(t)

	readMnemonicFn = func() (string, error) {
		return strings.Replace(testMnemonic, "about", "abandon", 1), nil
	}
	_, err := h.run("wallet", "import")
	require.ErrorIs(t, err, vaulterr.ErrInvalidMnemonic)

	readMnemonicFn = func() (string, error) { return "abandon abandon abandon", nil }
	_, err = h.run("wallet", "import")
	require.ErrorIs(t, err, vaulterr.ErrUnsupportedSeedType)

	h.importWallet(testMnemonic)
	_, err = h.run("wallet", "import")
	require.ErrorIs(t, err, vaulterr.ErrWalletExists)
}

func TestWalletText(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.mustRun("wallet", "list"), "No wallets")

	out := h.mustRun("wallet", "create", "--name", "main")
	assert.Contains(t, out, "Created wallet main")
	assert.Contains(t, out, "will not be shown again")

	out = h.mustRun("wallet", "list")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "0.00000000")
}

func TestWalletAddress(t *testing.T) {
	h := newHarness(t)
	imported := h.importWallet(testMnemonic)

	var res addressResult
	h.runJSON(&res, "wallet", "address", "--amount", "1.5")
	assert.Equal(t, imported.Address, res.Address)
	assert.Equal(t, "decred:"+imported.Address+"?amount=1.50000000", res.URI)
	assert.False(t, res.Created)

	h.runJSON(&res, "wallet", "address", "--new")
	assert.True(t, res.Created)
	assert.NotEqual(t, imported.Address, res.Address)
	assert.Equal(t, wallet.NamePrefix(res.Address), res.Wallet)

	var list []WalletSummary
	h.runJSON(&list, "wallet", "list")
	require.Len(t, list, 1)
	assert.Equal(t, res.Address, list[0].Address)
	assert.Equal(t, 2, list[0].ActiveAddresses)
}

func TestSyncHistoryFeeSend(t *testing.T) {
	h := newHarness(t)
	imported := h.importWallet(testMnemonic)
	snapshot := h.writeSnapshot(fundingSnapshot(imported.Address))

	var synced syncResult
	h.runJSON(&synced, "sync", "--snapshot", snapshot, "--parallel")
	assert.True(t, synced.Synced)
	assert.InDelta(t, 100, synced.SyncPercent, 0)
	assert.Equal(t, int64(100_000_000), synced.BalanceAtoms)
	assert.Equal(t, 1, synced.Utxos)
	assert.Equal(t, 1, synced.Transactions)
	assert.Equal(t, 1, synced.ActiveAddresses)

	// a second sync refreshes the known addresses
	h.runJSON(&synced, "sync", "--snapshot", snapshot)
	assert.Equal(t, int64(100_000_000), synced.BalanceAtoms)

	var entries []history.Entry
	h.runJSON(&entries, "history")
	require.Len(t, entries, 1)
	assert.False(t, entries[0].IsSend)
	assert.Equal(t, int64(100_000_000), entries[0].Amount)
	assert.Equal(t, int64(10_000), entries[0].Fee)

	var fee feeResult
	h.runJSON(&fee, "fee", "estimate", "--amount", "0.5")
	assert.Equal(t, int64(50_000_000), fee.AmountAtoms)
	assert.Positive(t, fee.FeeAtoms)

	var custom feeResult
	h.runJSON(&custom, "fee", "estimate", "--amount", "0.5", "--fee-rate", "0.001")
	assert.Greater(t, custom.FeeAtoms, fee.FeeAtoms)

	var maxFee feeResult
	h.runJSON(&maxFee, "fee", "max")
	assert.Equal(t, int64(100_000_000), maxFee.AmountAtoms+maxFee.FeeAtoms)

	var sent sendResult
	h.runJSON(&sent, "send", "--to", imported.Address, "--amount", "0.5")
	assert.Len(t, sent.Txid, 64)
	assert.NotEmpty(t, sent.Hex)
	assert.Positive(t, sent.Fee)

	outFile := filepath.Join(h.home, "tx.hex")
	h.runJSON(&sent, "send", "--to", imported.Address, "--amount", "max", "--out", outFile)
	written, err := os.ReadFile(outFile) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Equal(t, sent.Hex+"\n", string(written))

	_, err = h.run("send", "--to", imported.Address, "--amount", "5")
	require.ErrorIs(t, err, vaulterr.ErrInsufficientFunds)

	payouts := filepath.Join(h.home, "payouts.csv")
	require.NoError(t, os.WriteFile(payouts, []byte(imported.Address+",0.1\n\n"+imported.Address+",0.2\n"), 0o600))
	h.runJSON(&sent, "multisend", "--file", payouts)
	require.Len(t, sent.Outputs, 2)
	assert.Equal(t, int64(20_000_000), sent.Outputs[1].Atoms)
}

func TestSync_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("sync", "--snapshot", filepath.Join(h.home, "missing.json"))
	require.ErrorIs(t, err, vaulterr.ErrNotFound)

	snapshot := h.writeSnapshot(chaindata.Snapshot{})
	_, err = h.run("sync", "--snapshot", snapshot)
	require.ErrorIs(t, err, vaulterr.ErrWalletNotFound)

	_, err = h.run("history")
	require.ErrorIs(t, err, vaulterr.ErrWalletNotFound)
}

func TestCodecCommands(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "qpzl\n", h.mustRun("codec", "encode", "0", "1", "2,31"))
	assert.Equal(t, "0 1 2 31\n", h.mustRun("codec", "decode", "qpzl"))

	var res codecResult
	h.runJSON(&res, "codec", "decode", "qpzl")
	assert.Equal(t, []int{0, 1, 2, 31}, res.Values)

	_, err := h.run("codec", "encode", "32")
	require.ErrorIs(t, err, vaulterr.ErrValidation)
	_, err = h.run("codec", "decode", "qpzb")
	require.ErrorIs(t, err, vaulterr.ErrValidation)
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "3\n", h.mustRun("config", "get", "sync.indices"))
	assert.Equal(t, h.home+"\n", h.mustRun("config", "get", "home"))

	h.mustRun("config", "set", "network", "simnet")
	assert.Equal(t, "simnet\n", h.mustRun("config", "get", "network"))

	_, err := h.run("config", "set", "network", "regtest")
	require.Error(t, err)
	_, err = h.run("config", "set", "nope", "1")
	require.ErrorIs(t, err, ErrUnknownConfigKey)
	_, err = h.run("config", "set", "sync.indices", "many")
	require.ErrorIs(t, err, vaulterr.ErrValidation)

	var values map[string]string
	h.runJSON(&values, "config", "show")
	assert.Equal(t, "simnet", values["network"])
	assert.Equal(t, "file", values["storage.driver"])

	_, err = h.run("config", "init")
	require.Error(t, err, "existing config is kept without --force")
	h.mustRun("config", "init", "--force")
	assert.Equal(t, "testnet\n", h.mustRun("config", "get", "network"))
}

func TestBadgerStore(t *testing.T) {
	h := newHarness(t)
	h.mustRun("config", "set", "storage.driver", "badger")

	imported := h.importWallet(testMnemonic)

	var list []WalletSummary
	h.runJSON(&list, "wallet", "list")
	require.Len(t, list, 1)
	assert.Equal(t, imported.Name, list[0].Name)
	assert.DirExists(t, filepath.Join(h.home, "db"))
}

func TestEncryptedStore(t *testing.T) {
	h := newHarness(t)
	h.mustRun("config", "set", "storage.encrypt", "true")

	t.Setenv("DCRVAULT_PASSPHRASE", "correct horse battery staple")
	imported := h.importWallet(testMnemonic)

	data, err := os.ReadFile(filepath.Join(h.home, "store", "wallets.json")) //nolint:gosec // test path
	require.NoError(t, err)
	assert.NotContains(t, string(data), "abandon")

	t.Setenv("DCRVAULT_PASSPHRASE", "wrong")
	_, err = h.run("wallet", "list")
	require.ErrorIs(t, err, vaulterr.ErrDecryptionFailed)

	t.Setenv("DCRVAULT_PASSPHRASE", "correct horse battery staple")
	var list []WalletSummary
	h.runJSON(&list, "wallet", "list")
	require.Len(t, list, 1)
	assert.Equal(t, imported.Name, list[0].Name)
}

func TestCompletion(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.mustRun("completion", "bash"), "dcrvault")
}

func TestMetricsTextfile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.home, "dcrvault.prom")
	h.mustRun("config", "set", "metrics.textfile", path)

	h.mustRun("codec", "encode", "1")

	data, err := os.ReadFile(path) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Contains(t, string(data), `dcrvault_wallet_operations_total{op="codec.encode",result="true"} 1`)
}

func TestEnrichParentLong(t *testing.T) {
	root := &cobra.Command{Use: "dcrvault", Long: "root text"}
	group := &cobra.Command{Use: "wallet", Long: "Manage wallets.\n"}
	run := func(*cobra.Command, []string) error { return nil }
	group.AddCommand(
		&cobra.Command{Use: "create", Short: "Create a wallet", RunE: run},
		&cobra.Command{Use: "activate", Short: "Switch wallets", RunE: run},
		&cobra.Command{Use: "secret", Short: "Hidden", Hidden: true, RunE: run},
	)
	root.AddCommand(group)

	walkCommands(root, enrichParentLong)

	assert.Equal(t, "root text", root.Long)
	assert.Equal(t, "Manage wallets.\n\nSubcommands:\n"+
		"  activate  Switch wallets\n"+
		"  create    Create a wallet\n"+
		"\nRun 'dcrvault wallet <subcommand> --help' for details.", group.Long)
}
