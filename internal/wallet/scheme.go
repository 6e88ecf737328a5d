package wallet

import (
	"fmt"
	"strconv"
)

// SeedType identifies how a mnemonic turns into a master key. The values
// are the identifiers persisted with each wallet.
type SeedType int

// Supported seed types.
const (
	SeedType12 SeedType = 12
	SeedType24 SeedType = 24
	SeedType17 SeedType = 17
	SeedType33 SeedType = 33
)

// SchemeKind tags a MnemonicScheme.
type SchemeKind int

// Mnemonic scheme kinds.
const (
	// SchemeStandard derives the seed with BIP39 and the master key with
	// the dcrd HD key chain. The mnemonic checksum is not enforced.
	SchemeStandard SchemeKind = iota + 1

	// SchemeAlternate requires the mnemonic to encode exactly the scheme's
	// entropy size and derives the master key with BIP32.
	SchemeAlternate
)

// MnemonicScheme is the resolved derivation scheme of a seed type.
// WordCount is set for SchemeStandard and EntropyBits for SchemeAlternate.
type MnemonicScheme struct {
	Kind        SchemeKind
	WordCount   int
	EntropyBits int
}

// Scheme resolves the seed type.
func (s SeedType) Scheme() (MnemonicScheme, error) {
	switch s {
	case SeedType12:
		return MnemonicScheme{Kind: SchemeStandard, WordCount: 12}, nil
	case SeedType24:
		return MnemonicScheme{Kind: SchemeStandard, WordCount: 24}, nil
	case SeedType17:
		return MnemonicScheme{Kind: SchemeAlternate, EntropyBits: 128}, nil
	case SeedType33:
		return MnemonicScheme{Kind: SchemeAlternate, EntropyBits: 256}, nil
	}
	return MnemonicScheme{}, fmt.Errorf("%w: got %d", errUnsupportedSeedType, int(s))
}

// EntropyBits returns the entropy size a fresh mnemonic of this type uses.
func (s SeedType) EntropyBits() (int, error) {
	scheme, err := s.Scheme()
	if err != nil {
		return 0, err
	}
	if scheme.Kind == SchemeAlternate {
		return scheme.EntropyBits, nil
	}
	if scheme.WordCount == 12 {
		return 128, nil
	}
	return 256, nil
}

// IsValid reports whether s is a supported seed type.
func (s SeedType) IsValid() bool {
	_, err := s.Scheme()
	return err == nil
}

func (s SeedType) String() string {
	return strconv.Itoa(int(s))
}

// ParseSeedType parses a seed type identifier.
func ParseSeedType(s string) (SeedType, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errUnsupportedSeedType, s)
	}
	st := SeedType(n)
	if !st.IsValid() {
		return 0, fmt.Errorf("%w: got %d", errUnsupportedSeedType, n)
	}
	return st, nil
}
