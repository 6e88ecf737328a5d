// Package dcr builds, signs and serializes Decred transactions and encodes
// the keys and addresses the wallet derives.
package dcr

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/chaincfg/v3"
	"github.com/decred/dcrd/dcrec"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/decred/dcrd/txscript/v4/stdaddr"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

const (
	// privKeySize is the length of a serialized secp256k1 private key.
	privKeySize = 32

	// hash160Size is the length of a public key hash.
	hash160Size = 20
)

// AddressFromPubKey encodes a compressed secp256k1 public key as a
// version 0 pay-to-pubkey-hash address.
func AddressFromPubKey(pubKey []byte, params *chaincfg.Params) (string, error) {
	addr, err := stdaddr.NewAddressPubKeyHashEcdsaSecp256k1V0(dcrutil.Hash160(pubKey), params)
	if err != nil {
		return "", fmt.Errorf("encoding address: %w", err)
	}
	return addr.String(), nil
}

// DumpAddress returns the network's burn address: a pay-to-pubkey-hash
// address over the all-zero hash. Nobody holds a key for it, so it is only
// used to produce realistic fee estimates.
func DumpAddress(params *chaincfg.Params) (string, error) {
	addr, err := stdaddr.NewAddressPubKeyHashEcdsaSecp256k1V0(make([]byte, hash160Size), params)
	if err != nil {
		return "", fmt.Errorf("encoding dump address: %w", err)
	}
	return addr.String(), nil
}

// DecodeAddress parses addr and checks it belongs to the network.
func DecodeAddress(addr string, params *chaincfg.Params) (stdaddr.Address, error) {
	decoded, err := stdaddr.DecodeAddress(addr, params)
	if err != nil {
		return nil, vaulterr.WithDetails(
			vaulterr.WrapAs(vaulterr.ErrInvalidAddress, err, "decoding %s", addr),
			map[string]string{"network": params.Name},
		)
	}
	return decoded, nil
}

// ValidateAddress reports whether addr is a valid address for the network.
func ValidateAddress(addr string, params *chaincfg.Params) error {
	_, err := DecodeAddress(addr, params)
	return err
}

// PaymentScript returns the script version and public key script paying addr.
func PaymentScript(addr string, params *chaincfg.Params) (uint16, []byte, error) {
	decoded, err := DecodeAddress(addr, params)
	if err != nil {
		return 0, nil, err
	}
	version, script := decoded.PaymentScript()
	return version, script, nil
}

// PubKeyFromPrivKey returns the compressed public key for a raw private key.
func PubKeyFromPrivKey(privKey []byte) ([]byte, error) {
	if len(privKey) != privKeySize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d",
			vaulterr.ErrInvalidInput, privKeySize, len(privKey))
	}
	return secp256k1.PrivKeyFromBytes(privKey).PubKey().SerializeCompressed(), nil
}

// EncodeWIF encodes a raw secp256k1 private key in wallet import format.
func EncodeWIF(privKey []byte, params *chaincfg.Params) (string, error) {
	wif, err := dcrutil.NewWIF(privKey, params.PrivateKeyID, dcrec.STEcdsaSecp256k1)
	if err != nil {
		return "", fmt.Errorf("encoding WIF: %w", err)
	}
	return wif.String(), nil
}

// DecodeWIF returns the raw private key held by a WIF string.
func DecodeWIF(wif string, params *chaincfg.Params) ([]byte, error) {
	decoded, err := dcrutil.DecodeWIF(wif, params.PrivateKeyID)
	if err != nil {
		return nil, vaulterr.WrapAs(vaulterr.ErrInvalidInput, err, "decoding WIF")
	}
	return decoded.PrivKey(), nil
}

// DecodePrivKeyHex parses a hex encoded 32-byte private key.
func DecodePrivKeyHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, vaulterr.WrapAs(vaulterr.ErrInvalidInput, err, "decoding private key")
	}
	if len(b) != privKeySize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d",
			vaulterr.ErrInvalidInput, privKeySize, len(b))
	}
	return b, nil
}
