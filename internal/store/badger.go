package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// keyPrefix namespaces dcrvault entries inside the database.
const keyPrefix = "dcrvault/"

// BadgerBackend stores blobs in a Badger database.
type BadgerBackend struct {
	db *badger.DB
}

// OpenBadger opens or creates a Badger database at path.
func OpenBadger(path string) (*BadgerBackend, error) {
	return openBadger(badger.DefaultOptions(path))
}

// OpenBadgerInMemory opens a Badger database that lives only in memory.
func OpenBadgerInMemory() (*BadgerBackend, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true))
}

func openBadger(opts badger.Options) (*BadgerBackend, error) {
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "Cannot acquire directory lock") ||
			strings.Contains(msg, "resource temporarily unavailable") {
			return nil, vaulterr.WithSuggestion(
				vaulterr.WrapAs(vaulterr.ErrWalletBusy, err, "database at %s is locked", opts.Dir),
				"is another dcrvault process running?")
		}
		return nil, fmt.Errorf("open database at %s: %w", opts.Dir, err)
	}
	return &BadgerBackend{db: db}, nil
}

// Get implements Backend.
func (b *BadgerBackend) Get(key string) ([]byte, bool, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger get: %w", err)
	}
	return val, true, nil
}

// Put implements Backend.
func (b *BadgerBackend) Put(key string, data []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), data)
	})
	if err != nil {
		return fmt.Errorf("badger put: %w", err)
	}
	return nil
}

// Keys lists the stored keys without their namespace prefix.
func (b *BadgerBackend) Keys() ([]string, error) {
	var keys []string
	prefix := []byte(keyPrefix)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger keys: %w", err)
	}
	return keys, nil
}

// Close implements Backend.
func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
