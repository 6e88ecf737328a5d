package vaultcrypto

import (
	"crypto/rand"
	"io"
	"strconv"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// Reader is the random source for all key material.
//
//nolint:gochecknoglobals // Package-level RNG is required for testability
var Reader io.Reader = rand.Reader

// RandomBytes generates cryptographically secure random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// SecureRandomBytes generates random bytes in a SecureBytes container.
func SecureRandomBytes(n int) (*SecureBytes, error) {
	sb, err := NewSecureBytes(n)
	if err != nil {
		return nil, err
	}

	if _, err := io.ReadFull(Reader, sb.Bytes()); err != nil {
		sb.Destroy()
		return nil, err
	}

	return sb, nil
}

// MnemonicEntropy returns fresh entropy for a mnemonic of the given bit
// size: a multiple of 32 between 128 and 256.
func MnemonicEntropy(bits int) (*SecureBytes, error) {
	if bits < 128 || bits > 256 || bits%32 != 0 {
		return nil, vaulterr.WithDetails(vaulterr.ErrInvalidInput, map[string]string{
			"entropy_bits": strconv.Itoa(bits),
		})
	}
	return SecureRandomBytes(bits / 8)
}
