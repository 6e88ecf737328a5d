// Package store persists wallet collections. A Store encodes the collection
// into a versioned snapshot, optionally seals it with a passphrase, and hands
// the bytes to a Backend.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/rs/zerolog"

	"github.com/mrz1836/dcrvault/internal/vaultcrypto"
	"github.com/mrz1836/dcrvault/internal/wallet"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// SnapshotVersion is the envelope version written by Persist.
const SnapshotVersion = 1

// Backend stores opaque blobs by key.
type Backend interface {
	// Get returns the blob for key. ok is false when nothing is stored.
	Get(key string) (data []byte, ok bool, err error)
	Put(key string, data []byte) error
	Close() error
}

// Snapshot is the stored envelope around a wallet collection.
type Snapshot struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"savedAt"`
	Wallets []wallet.Wallet `json:"wallets"`
}

var (
	// ErrInvalidKey indicates a storage key outside [a-z0-9_-].
	ErrInvalidKey = &vaulterr.VaultError{
		Code:     "INVALID_STORE_KEY",
		Message:  "storage key must be lowercase letters, digits, '-' or '_'",
		ExitCode: vaulterr.ExitInput,
	}

	// ErrUnsupportedSnapshot indicates stored data this build cannot read.
	ErrUnsupportedSnapshot = &vaulterr.VaultError{
		Code:       "UNSUPPORTED_SNAPSHOT",
		Message:    "stored wallet data has an unsupported format",
		Suggestion: "upgrade dcrvault or restore the wallets from their mnemonics",
		ExitCode:   vaulterr.ExitGeneral,
	}
)

var keyPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Options configures a Store.
type Options struct {
	// Passphrase seals persisted snapshots when set. The Store does not
	// take ownership; the caller destroys it.
	Passphrase *vaultcrypto.SecureBytes

	// Clock stamps Snapshot.SavedAt. Defaults to the system clock.
	Clock clock.Clock

	Logger *zerolog.Logger
}

// Store reads and writes wallet collections through a Backend. It is safe
// for concurrent use.
type Store struct {
	mu         sync.Mutex
	backend    Backend
	passphrase *vaultcrypto.SecureBytes
	clock      clock.Clock
	logger     zerolog.Logger
}

// New creates a Store over backend.
func New(backend Backend, opts Options) *Store {
	s := &Store{
		backend:    backend,
		passphrase: opts.Passphrase,
		clock:      opts.Clock,
		logger:     zerolog.Nop(),
	}
	if s.clock == nil {
		s.clock = clock.NewDefaultClock()
	}
	if opts.Logger != nil {
		s.logger = opts.Logger.With().Str("component", "store").Logger()
	}
	return s
}

// Sealed reports whether persisted snapshots are encrypted.
func (s *Store) Sealed() bool {
	return s.passphrase != nil && s.passphrase.Len() > 0
}

// Persist replaces the collection stored under key.
func (s *Store) Persist(ctx context.Context, key string, wallets []wallet.Wallet) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return vaulterr.Wrap(err, "persisting %s", key)
	}

	snap := Snapshot{
		Version: SnapshotVersion,
		SavedAt: s.clock.Now().UTC(),
		Wallets: wallets,
	}
	if snap.Wallets == nil {
		snap.Wallets = []wallet.Wallet{}
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return vaulterr.Wrap(err, "encoding %s", key)
	}

	if s.Sealed() {
		sealed, sealErr := vaultcrypto.EncryptSecure(data, s.passphrase)
		vaultcrypto.Zero(data)
		if sealErr != nil {
			return sealErr
		}
		data = sealed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Put(key, data); err != nil {
		return vaulterr.Wrap(err, "writing %s", key)
	}
	s.logger.Debug().
		Str("key", key).
		Int("wallets", len(snap.Wallets)).
		Bool("sealed", s.Sealed()).
		Msg("collection persisted")
	return nil
}

// Load returns the collection stored under key, or an empty collection when
// nothing has been stored yet.
func (s *Store) Load(ctx context.Context, key string) ([]wallet.Wallet, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, vaulterr.Wrap(err, "loading %s", key)
	}

	s.mu.Lock()
	data, ok, err := s.backend.Get(key)
	s.mu.Unlock()
	if err != nil {
		return nil, vaulterr.Wrap(err, "reading %s", key)
	}
	if !ok {
		return []wallet.Wallet{}, nil
	}

	if vaultcrypto.IsSealed(data) {
		if !s.Sealed() {
			return nil, vaulterr.WithSuggestion(vaulterr.ErrDecryptionFailed,
				"wallet data is encrypted; provide the store passphrase")
		}
		plain, openErr := vaultcrypto.DecryptSecure(data, s.passphrase)
		if openErr != nil {
			return nil, openErr
		}
		defer plain.Destroy()
		return decode(plain.Bytes())
	}

	if s.Sealed() {
		s.logger.Warn().Str("key", key).Msg("stored collection is not encrypted, it will be sealed on next write")
	}
	return decode(data)
}

// Close closes the backend.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}

// decode accepts a Snapshot envelope or a bare JSON array of wallets.
func decode(data []byte) ([]wallet.Wallet, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var wallets []wallet.Wallet
		if err := json.Unmarshal(trimmed, &wallets); err != nil {
			return nil, vaulterr.WrapAs(ErrUnsupportedSnapshot, err, "decoding wallet list")
		}
		return nonNil(wallets), nil
	}

	var snap Snapshot
	if err := json.Unmarshal(trimmed, &snap); err != nil {
		return nil, vaulterr.WrapAs(ErrUnsupportedSnapshot, err, "decoding snapshot")
	}
	if snap.Version != SnapshotVersion {
		return nil, vaulterr.WithDetails(ErrUnsupportedSnapshot, map[string]string{
			"version": strconv.Itoa(snap.Version),
		})
	}
	return nonNil(snap.Wallets), nil
}

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return vaulterr.WithDetails(ErrInvalidKey, map[string]string{"key": key})
	}
	return nil
}

func nonNil(wallets []wallet.Wallet) []wallet.Wallet {
	if wallets == nil {
		return []wallet.Wallet{}
	}
	return wallets
}
