package wallet

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/dcrvault/internal/chain"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

const (
	testMnemonic12 = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	testMnemonic24 = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon " +
		"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art"
	testMnemonicAlt = "legal winner thank year wave sausage worth useful legal winner thank yellow"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestWallet(t *testing.T, mnemonic string, seedType SeedType) Wallet {
	t.Helper()
	w, err := NewWallet(mnemonic, seedType, true, chain.TestNet, testNow)
	require.NoError(t, err)
	return w
}

func TestDefaultPathKey(t *testing.T) {
	t.Parallel()
	assert.Equal(t, chain.DefaultPath(), DefaultPathKey)
}

func TestNewWallet(t *testing.T) {
	t.Parallel()

	imported := newTestWallet(t, testMnemonic12, SeedType12)
	assert.False(t, imported.SyncWallet)
	assert.Len(t, imported.Paths, 1)

	def, ok := imported.DefaultPath()
	require.True(t, ok)
	assert.Equal(t, def.Address[:NamePrefixLength], imported.Name)
	assert.True(t, strings.HasPrefix(def.Address, "Ts"))
	require.Len(t, imported.State.ActiveAddresses, 1)
	assert.Equal(t, def, imported.State.ActiveAddresses[0].PathInfo())
	assert.Zero(t, imported.State.BalanceAtoms)
	assert.Equal(t, testNow, imported.CreatedAt)

	generated, err := NewWallet(testMnemonic12, SeedType12, false, chain.TestNet, testNow)
	require.NoError(t, err)
	assert.True(t, generated.SyncWallet)
	assert.Equal(t, imported.DefaultAddress(), generated.DefaultAddress())

	_, err = NewWallet("", SeedType12, true, chain.TestNet, testNow)
	require.ErrorIs(t, err, vaulterr.ErrInvalidMnemonic)

	_, err = NewWallet(testMnemonic12, SeedType(15), true, chain.TestNet, testNow)
	require.ErrorIs(t, err, vaulterr.ErrUnsupportedSeedType)
}

func TestWallet_ID(t *testing.T) {
	t.Parallel()

	a := newTestWallet(t, testMnemonic12, SeedType12)
	b := newTestWallet(t, testMnemonic24, SeedType24)
	assert.Len(t, a.ID(), 64)
	assert.Equal(t, a.ID(), a.WithName("other").ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestWallet_CloneIsDeep(t *testing.T) {
	t.Parallel()

	w := newTestWallet(t, testMnemonic12, SeedType12)
	w.State.Utxos = []Utxo{{TxID: "aa", Atoms: 5}}

	c := w.Clone()
	c.State.Utxos[0].Atoms = 99
	c.State.ActiveAddresses[0].Address = "changed"
	c.Paths[DefaultPathKey] = PathInfo{Address: "changed"}

	assert.Equal(t, int64(5), w.State.Utxos[0].Atoms)
	assert.NotEqual(t, "changed", w.State.ActiveAddresses[0].Address)
	assert.NotEqual(t, "changed", w.DefaultAddress())
}

func TestWallet_Addresses(t *testing.T) {
	t.Parallel()

	w := newTestWallet(t, testMnemonic12, SeedType12)
	assert.Equal(t, []string{w.DefaultAddress()}, w.Addresses())
	assert.True(t, w.IsActive(w.DefaultAddress()))

	bare := w.WithState(State{})
	assert.Equal(t, []string{w.DefaultAddress()}, bare.Addresses())
	assert.False(t, bare.IsActive(w.DefaultAddress()))

	_, ok := bare.AddressSet()[w.DefaultAddress()]
	assert.True(t, ok)
}

func TestWallet_PrivateKeyFor(t *testing.T) {
	t.Parallel()

	w := newTestWallet(t, testMnemonic12, SeedType12)
	key, err := w.PrivateKeyFor(w.DefaultAddress())
	require.NoError(t, err)
	assert.Equal(t, w.State.ActiveAddresses[0].PrivateKey, key)

	// the default path still resolves once no address is active
	key, err = w.WithState(State{}).PrivateKeyFor(w.DefaultAddress())
	require.NoError(t, err)
	assert.Len(t, key, 64)

	_, err = w.PrivateKeyFor("TsUnknown")
	require.ErrorIs(t, err, vaulterr.ErrSigningKeyNotFound)
}

func TestState_UtxoTotal(t *testing.T) {
	t.Parallel()

	s := State{Utxos: []Utxo{{Atoms: 10}, {Atoms: 32}}}
	assert.Equal(t, int64(42), s.UtxoTotal())
	assert.Zero(t, State{}.UtxoTotal())
}

func TestNamePrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "TsabcD", NamePrefix("TsabcDef"))
	assert.Equal(t, "Ts", NamePrefix("Ts"))
}

func TestSeedType_Scheme(t *testing.T) {
	t.Parallel()
	tests := []struct {
		seedType SeedType
		expected MnemonicScheme
		bits     int
	}{
		{SeedType12, MnemonicScheme{Kind: SchemeStandard, WordCount: 12}, 128},
		{SeedType24, MnemonicScheme{Kind: SchemeStandard, WordCount: 24}, 256},
		{SeedType17, MnemonicScheme{Kind: SchemeAlternate, EntropyBits: 128}, 128},
		{SeedType33, MnemonicScheme{Kind: SchemeAlternate, EntropyBits: 256}, 256},
	}
	for _, tt := range tests {
		t.Run(tt.seedType.String(), func(t *testing.T) {
			t.Parallel()
			scheme, err := tt.seedType.Scheme()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, scheme)

			bits, err := tt.seedType.EntropyBits()
			require.NoError(t, err)
			assert.Equal(t, tt.bits, bits)
		})
	}

	_, err := SeedType(0).Scheme()
	require.ErrorIs(t, err, vaulterr.ErrUnsupportedSeedType)
	assert.False(t, SeedType(13).IsValid())
}

func TestParseSeedType(t *testing.T) {
	t.Parallel()

	st, err := ParseSeedType("33")
	require.NoError(t, err)
	assert.Equal(t, SeedType33, st)

	_, err = ParseSeedType("18")
	require.ErrorIs(t, err, vaulterr.ErrUnsupportedSeedType)
	_, err = ParseSeedType("twelve")
	require.ErrorIs(t, err, vaulterr.ErrUnsupportedSeedType)
}
