package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

func namedWallet(name, mnemonic string) Wallet {
	return Wallet{Name: name, Mnemonic: mnemonic, SeedType: SeedType12}
}

func names(wallets []Wallet) []string {
	out := make([]string, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, w.Name)
	}
	return out
}

func TestActivate(t *testing.T) {
	t.Parallel()

	wallets := []Wallet{
		namedWallet("delta", "m1"),
		namedWallet("alpha", "m2"),
		namedWallet("charlie", "m3"),
		namedWallet("bravo", "m4"),
	}

	out, err := Activate(wallets[2], wallets)
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie", "alpha", "bravo", "delta"}, names(out))

	// input is untouched
	assert.Equal(t, []string{"delta", "alpha", "charlie", "bravo"}, names(wallets))

	_, err = Activate(namedWallet("ghost", "m9"), wallets)
	require.ErrorIs(t, err, vaulterr.ErrWalletNotFound)
}

func TestActivate_MixedCaseNames(t *testing.T) {
	t.Parallel()

	wallets := []Wallet{
		namedWallet("Tsabcd", "m1"),
		namedWallet("savings", "m2"),
		namedWallet("Business", "m3"),
		namedWallet("apple", "m4"),
	}

	out, err := Activate(wallets[0], wallets)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tsabcd", "apple", "Business", "savings"}, names(out))

	out, err = Delete(wallets[0], wallets)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "Business", "savings"}, names(out))
}

func TestActivate_MatchesByMnemonic(t *testing.T) {
	t.Parallel()

	wallets := []Wallet{namedWallet("alpha", "m1"), namedWallet("bravo", "m2")}
	renamed := namedWallet("renamed", "m2")

	out, err := Activate(renamed, wallets)
	require.NoError(t, err)
	assert.Equal(t, []string{"renamed", "alpha"}, names(out))
}

func TestAdd(t *testing.T) {
	t.Parallel()

	wallets := []Wallet{namedWallet("bravo", "m1"), namedWallet("alpha", "m2")}
	out, err := Add(namedWallet("zulu", "m3"), wallets)
	require.NoError(t, err)
	assert.Equal(t, []string{"zulu", "alpha", "bravo"}, names(out))

	_, err = Add(namedWallet("copy", "m1"), wallets)
	require.ErrorIs(t, err, vaulterr.ErrWalletExists)
}

func TestFind(t *testing.T) {
	t.Parallel()

	wallets := []Wallet{namedWallet("alpha", "m1"), namedWallet("bravo", "m2")}

	w, err := Find(wallets, "bravo")
	require.NoError(t, err)
	assert.Equal(t, "m2", w.Mnemonic)

	w, err = Find(wallets, wallets[0].ID())
	require.NoError(t, err)
	assert.Equal(t, "alpha", w.Name)

	_, err = Find(wallets, "nope")
	require.ErrorIs(t, err, vaulterr.ErrWalletNotFound)
}

func TestRename(t *testing.T) {
	t.Parallel()

	wallets := []Wallet{namedWallet("alpha", "m1"), namedWallet("bravo", "m2")}

	out, err := Rename(wallets[1], "  savings ", wallets)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "savings"}, names(out))
	assert.Equal(t, "bravo", wallets[1].Name)

	// keeping the same name is allowed
	_, err = Rename(wallets[0], "alpha", wallets)
	require.NoError(t, err)

	_, err = Rename(wallets[0], "bravo", wallets)
	require.ErrorIs(t, err, vaulterr.ErrInvalidInput)

	_, err = Rename(wallets[0], strings.Repeat("x", MaxWalletNameLength+1), wallets)
	require.ErrorIs(t, err, vaulterr.ErrInvalidInput)

	_, err = Rename(namedWallet("ghost", "m9"), "x", wallets)
	require.ErrorIs(t, err, vaulterr.ErrWalletNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	wallets := []Wallet{
		namedWallet("charlie", "m1"),
		namedWallet("bravo", "m2"),
		namedWallet("alpha", "m3"),
	}

	out, err := Delete(wallets[1], wallets)
	require.NoError(t, err)
	assert.Equal(t, []string{"charlie", "alpha"}, names(out))

	// removing the active wallet promotes the next one by name
	out, err = Delete(wallets[0], wallets)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "bravo"}, names(out))

	out, err = Delete(wallets[0], wallets[:1])
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = Delete(namedWallet("ghost", "m9"), wallets)
	require.ErrorIs(t, err, vaulterr.ErrWalletNotFound)
}

func TestReplace(t *testing.T) {
	t.Parallel()

	wallets := []Wallet{namedWallet("alpha", "m1"), namedWallet("bravo", "m2")}
	updated := wallets[1].WithSyncPercent(50)

	out, err := Replace(updated, wallets)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, out[1].SyncPercent, 0)
	assert.Zero(t, wallets[1].SyncPercent)

	_, err = Replace(namedWallet("ghost", "m9"), wallets)
	require.ErrorIs(t, err, vaulterr.ErrWalletNotFound)
}

func TestValidateWalletName(t *testing.T) {
	t.Parallel()

	taken := []Wallet{namedWallet("alpha", "m1")}
	require.NoError(t, ValidateWalletName("beta", taken))
	require.NoError(t, ValidateWalletName(strings.Repeat("é", MaxWalletNameLength)))

	require.ErrorIs(t, ValidateWalletName("", taken), vaulterr.ErrInvalidInput)
	require.ErrorIs(t, ValidateWalletName("alpha", taken), vaulterr.ErrInvalidInput)
	require.ErrorIs(t, ValidateWalletName(strings.Repeat("a", 25)), vaulterr.ErrInvalidInput)
}

func TestLocks(t *testing.T) {
	t.Parallel()

	locks := NewLocks()
	w := namedWallet("alpha", "m1")

	release, err := locks.TryLock(w)
	require.NoError(t, err)
	assert.True(t, locks.Busy(w))

	_, err = locks.TryLock(w.WithName("renamed"))
	require.ErrorIs(t, err, vaulterr.ErrWalletBusy)

	other, err := locks.TryLock(namedWallet("bravo", "m2"))
	require.NoError(t, err)
	other()

	release()
	release()
	assert.False(t, locks.Busy(w))

	again, err := locks.TryLock(w)
	require.NoError(t, err)
	again()
}
