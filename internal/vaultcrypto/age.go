package vaultcrypto

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// sealedHeader starts every age file.
var sealedHeader = []byte("age-encryption.org/v1\n")

// IsSealed reports whether data looks like an age encrypted payload.
func IsSealed(data []byte) bool {
	return bytes.HasPrefix(data, sealedHeader)
}

// Encrypt encrypts plaintext using age with a passphrase-based recipient.
func Encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, vaulterr.WrapAs(vaulterr.ErrInvalidInput, err, "creating scrypt recipient")
	}

	buf := &bytes.Buffer{}
	w, err := age.Encrypt(buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing encryption: %w", err)
	}

	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing encrypted data: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}

	return buf.Bytes(), nil
}

// Decrypt decrypts an age payload. A wrong passphrase or a damaged payload
// yields ErrDecryptionFailed.
func Decrypt(ciphertext []byte, passphrase string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, vaulterr.WrapAs(vaulterr.ErrInvalidInput, err, "creating scrypt identity")
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, vaulterr.WithSuggestion(
				vaulterr.WrapAs(vaulterr.ErrDecryptionFailed, err, "opening wallet store"),
				"check the passphrase")
		}
		return nil, vaulterr.WrapAs(vaulterr.ErrDecryptionFailed, err, "opening wallet store")
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, vaulterr.WrapAs(vaulterr.ErrDecryptionFailed, err, "reading decrypted data")
	}

	return plaintext, nil
}

// EncryptSecure encrypts plaintext with a passphrase held in SecureBytes.
func EncryptSecure(plaintext []byte, passphrase *SecureBytes) ([]byte, error) {
	pass := passphrase.Bytes()
	if len(pass) == 0 {
		return nil, vaulterr.WithSuggestion(vaulterr.ErrInvalidInput, "passphrase is empty")
	}
	return Encrypt(plaintext, string(pass))
}

// DecryptSecure decrypts ciphertext into SecureBytes using a passphrase held
// in SecureBytes. The intermediate plaintext is zeroed.
func DecryptSecure(ciphertext []byte, passphrase *SecureBytes) (*SecureBytes, error) {
	pass := passphrase.Bytes()
	if len(pass) == 0 {
		return nil, vaulterr.WithSuggestion(vaulterr.ErrInvalidInput, "passphrase is empty")
	}

	plaintext, err := Decrypt(ciphertext, string(pass))
	if err != nil {
		return nil, err
	}
	defer Zero(plaintext)

	return SecureBytesFromSlice(plaintext)
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
