package wallet

import (
	"sync"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// Locks serializes mutating operations per wallet. A second operation on a
// wallet that is already busy fails instead of waiting.
type Locks struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

// NewLocks creates an empty lock table.
func NewLocks() *Locks {
	return &Locks{busy: make(map[string]struct{})}
}

// TryLock marks the wallet busy and returns the function releasing it.
func (l *Locks) TryLock(w Wallet) (func(), error) {
	id := w.ID()

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.busy[id]; ok {
		return nil, vaulterr.WithDetails(vaulterr.ErrWalletBusy, map[string]string{"name": w.Name})
	}
	l.busy[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.busy, id)
			l.mu.Unlock()
		})
	}, nil
}

// Busy reports whether an operation currently holds the wallet.
func (l *Locks) Busy(w Wallet) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.busy[w.ID()]
	return ok
}
