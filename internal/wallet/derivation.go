package wallet

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/decred/dcrd/chaincfg/v3"
	"github.com/decred/dcrd/hdkeychain/v3"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"

	"github.com/mrz1836/dcrvault/internal/chain"
	"github.com/mrz1836/dcrvault/internal/chain/dcr"
	"github.com/mrz1836/dcrvault/internal/vaultcrypto"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

const (
	// seedIterations and seedSize follow BIP39 seed stretching.
	seedIterations = 2048
	seedSize       = 64
	seedSaltPrefix = "mnemonic"

	privKeySize = 32
)

var errUnsupportedSeedType = vaulterr.ErrUnsupportedSeedType

// Deriver derives address records along m/44'/42'/account'/change/index.
// Implementations are safe for concurrent use.
type Deriver interface {
	Derive(account, change, index uint32) (AddressRecord, error)
}

// NewDeriver computes the master key material for mnemonic once. The
// returned Deriver yields the same records for the same inputs on every
// call and every run.
func NewDeriver(mnemonic string, seedType SeedType, net chain.Network) (Deriver, error) {
	scheme, err := seedType.Scheme()
	if err != nil {
		return nil, err
	}
	params := net.Params()

	switch scheme.Kind {
	case SchemeStandard:
		return newStandardDeriver(mnemonic, params)
	case SchemeAlternate:
		return newAlternateDeriver(mnemonic, scheme.EntropyBits, params)
	}
	return nil, fmt.Errorf("%w: got %d", errUnsupportedSeedType, int(seedType))
}

// DeriveDefault derives the record at the default path m/44'/42'/0'/0/0.
func DeriveDefault(d Deriver) (AddressRecord, error) {
	return d.Derive(0, 0, 0)
}

type branch struct {
	account, change uint32
}

// standardDeriver walks the path with the dcrd HD key chain using BIP32
// standard child derivation.
type standardDeriver struct {
	params *chaincfg.Params
	master *hdkeychain.ExtendedKey

	mu       sync.Mutex
	branches map[branch]*hdkeychain.ExtendedKey
}

func newStandardDeriver(mnemonic string, params *chaincfg.Params) (*standardDeriver, error) {
	seed := bip39.NewSeed(mnemonic, "")
	defer vaultcrypto.Zero(seed)

	master, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	return &standardDeriver{
		params:   params,
		master:   master,
		branches: make(map[branch]*hdkeychain.ExtendedKey),
	}, nil
}

func (d *standardDeriver) Derive(account, change, index uint32) (AddressRecord, error) {
	branchKey, err := d.branch(account, change)
	if err != nil {
		return AddressRecord{}, err
	}

	key, err := branchKey.ChildBIP32Std(index)
	if err != nil {
		return AddressRecord{}, fmt.Errorf("failed to derive index key: %w", err)
	}
	serialized, err := key.SerializedPrivKey()
	if err != nil {
		return AddressRecord{}, fmt.Errorf("failed to serialize private key: %w", err)
	}
	priv := padPrivKey(serialized)
	defer vaultcrypto.Zero(priv)

	return newAddressRecord(priv, d.params, account, change, index)
}

// branch returns the key at m/44'/42'/account'/change, deriving it once.
func (d *standardDeriver) branch(account, change uint32) (*hdkeychain.ExtendedKey, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b := branch{account: account, change: change}
	if key, ok := d.branches[b]; ok {
		return key, nil
	}

	path := []uint32{
		hdkeychain.HardenedKeyStart + chain.BIP44Purpose,
		hdkeychain.HardenedKeyStart + chain.CoinTypeDCR,
		hdkeychain.HardenedKeyStart + account,
		change,
	}
	key := d.master
	for _, child := range path {
		var err error
		key, err = key.ChildBIP32Std(child)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", child, err)
		}
	}
	d.branches[b] = key
	return key, nil
}

// alternateDeriver walks the path with BIP32 from a seed stretched out of
// the validated mnemonic.
type alternateDeriver struct {
	params *chaincfg.Params
	master *bip32.Key

	mu       sync.Mutex
	branches map[branch]*bip32.Key
}

func newAlternateDeriver(mnemonic string, entropyBits int, params *chaincfg.Params) (*alternateDeriver, error) {
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, vaulterr.WrapAs(vaulterr.ErrInvalidMnemonic, err, "alternate seed")
	}
	defer vaultcrypto.Zero(entropy)
	if len(entropy)*8 != entropyBits {
		return nil, vaulterr.WithDetails(vaulterr.ErrInvalidMnemonic, map[string]string{
			"expected_bits": fmt.Sprint(entropyBits),
			"actual_bits":   fmt.Sprint(len(entropy) * 8),
		})
	}

	seed := alternateSeed(mnemonic)
	defer vaultcrypto.Zero(seed)

	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	return &alternateDeriver{
		params:   params,
		master:   master,
		branches: make(map[branch]*bip32.Key),
	}, nil
}

// alternateSeed stretches the NFKD form of the phrase with an empty
// passphrase.
func alternateSeed(mnemonic string) []byte {
	phrase := norm.NFKD.Bytes([]byte(mnemonic))
	salt := norm.NFKD.Bytes([]byte(seedSaltPrefix))
	return pbkdf2.Key(phrase, salt, seedIterations, seedSize, sha512.New)
}

func (d *alternateDeriver) Derive(account, change, index uint32) (AddressRecord, error) {
	branchKey, err := d.branch(account, change)
	if err != nil {
		return AddressRecord{}, err
	}

	key, err := branchKey.NewChildKey(index)
	if err != nil {
		return AddressRecord{}, fmt.Errorf("failed to derive index key: %w", err)
	}
	priv := padPrivKey(key.Key)
	defer vaultcrypto.Zero(priv)

	return newAddressRecord(priv, d.params, account, change, index)
}

func (d *alternateDeriver) branch(account, change uint32) (*bip32.Key, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b := branch{account: account, change: change}
	if key, ok := d.branches[b]; ok {
		return key, nil
	}

	path := []uint32{
		bip32.FirstHardenedChild + chain.BIP44Purpose,
		bip32.FirstHardenedChild + chain.CoinTypeDCR,
		bip32.FirstHardenedChild + account,
		change,
	}
	key := d.master
	for _, child := range path {
		var err error
		key, err = key.NewChildKey(child)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", child, err)
		}
	}
	d.branches[b] = key
	return key, nil
}

// padPrivKey copies a big-endian scalar into a fresh 32 byte buffer,
// restoring leading zero bytes that go-bip32 drops from derived keys.
func padPrivKey(key []byte) []byte {
	out := make([]byte, privKeySize)
	copy(out[privKeySize-len(key):], key)
	return out
}

// newAddressRecord encodes the key material of a derived private key.
func newAddressRecord(priv []byte, params *chaincfg.Params, account, change, index uint32) (AddressRecord, error) {
	pub, err := dcr.PubKeyFromPrivKey(priv)
	if err != nil {
		return AddressRecord{}, err
	}
	address, err := dcr.AddressFromPubKey(pub, params)
	if err != nil {
		return AddressRecord{}, err
	}
	wif, err := dcr.EncodeWIF(priv, params)
	if err != nil {
		return AddressRecord{}, err
	}

	return AddressRecord{
		Address:      address,
		PrivateKey:   hex.EncodeToString(priv),
		PublicKey:    hex.EncodeToString(pub),
		WIF:          wif,
		AccountIndex: account,
		ChangeIndex:  change,
		AddressIndex: index,
	}, nil
}
