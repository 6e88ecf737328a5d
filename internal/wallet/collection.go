package wallet

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// MaxWalletNameLength is the longest accepted wallet name.
const MaxWalletNameLength = 24

// ErrInvalidWalletName indicates the wallet name is empty, too long or taken.
var ErrInvalidWalletName = vaulterr.WithSuggestion(vaulterr.ErrInvalidInput,
	"wallet name must be 1-"+strconv.Itoa(MaxWalletNameLength)+" characters and unique")

// Activate returns a new collection with w first and the remaining wallets
// sorted by name. Wallets are matched by mnemonic.
func Activate(w Wallet, wallets []Wallet) ([]Wallet, error) {
	idx := indexOf(wallets, w.Mnemonic)
	if idx < 0 {
		return nil, vaulterr.WithDetails(vaulterr.ErrWalletNotFound, map[string]string{"name": w.Name})
	}

	others := make([]Wallet, 0, len(wallets)-1)
	for i, other := range wallets {
		if i != idx {
			others = append(others, other.Clone())
		}
	}
	sortByName(others)

	return append([]Wallet{w.Clone()}, others...), nil
}

// Find returns the wallet with the given name or ID.
func Find(wallets []Wallet, nameOrID string) (Wallet, error) {
	for _, w := range wallets {
		if w.Name == nameOrID || w.ID() == nameOrID {
			return w.Clone(), nil
		}
	}
	return Wallet{}, vaulterr.WithDetails(vaulterr.ErrWalletNotFound, map[string]string{"name": nameOrID})
}

// Add appends w to the collection and makes it active.
func Add(w Wallet, wallets []Wallet) ([]Wallet, error) {
	if indexOf(wallets, w.Mnemonic) >= 0 {
		return nil, vaulterr.WithDetails(vaulterr.ErrWalletExists, map[string]string{"name": w.Name})
	}
	return Activate(w, append(slices.Clone(wallets), w))
}

// Rename returns a new collection where the wallet with w's mnemonic is
// called name. Order is preserved.
func Rename(w Wallet, name string, wallets []Wallet) ([]Wallet, error) {
	idx := indexOf(wallets, w.Mnemonic)
	if idx < 0 {
		return nil, vaulterr.WithDetails(vaulterr.ErrWalletNotFound, map[string]string{"name": w.Name})
	}
	name = strings.TrimSpace(name)
	if err := ValidateWalletName(name, wallets[:idx], wallets[idx+1:]); err != nil {
		return nil, err
	}

	out := cloneAll(wallets)
	out[idx] = out[idx].WithName(name)
	return out, nil
}

// Delete returns a new collection without the wallet with w's mnemonic.
// When the active wallet is removed the next one by name becomes active.
func Delete(w Wallet, wallets []Wallet) ([]Wallet, error) {
	idx := indexOf(wallets, w.Mnemonic)
	if idx < 0 {
		return nil, vaulterr.WithDetails(vaulterr.ErrWalletNotFound, map[string]string{"name": w.Name})
	}

	out := make([]Wallet, 0, len(wallets)-1)
	for i, other := range wallets {
		if i != idx {
			out = append(out, other.Clone())
		}
	}
	if idx != 0 || len(out) == 0 {
		return out, nil
	}
	sortByName(out)
	return out, nil
}

// ValidateWalletName checks a proposed name against length limits and the
// names already taken in the given groups of wallets.
func ValidateWalletName(name string, taken ...[]Wallet) error {
	if name == "" || utf8.RuneCountInString(name) > MaxWalletNameLength {
		return vaulterr.WithDetails(ErrInvalidWalletName, map[string]string{"name": name})
	}
	for _, group := range taken {
		for _, w := range group {
			if w.Name == name {
				return vaulterr.WithDetails(ErrInvalidWalletName, map[string]string{"name": name, "reason": "already used"})
			}
		}
	}
	return nil
}

// Replace returns a new collection with the wallet sharing w's mnemonic
// swapped for w.
func Replace(w Wallet, wallets []Wallet) ([]Wallet, error) {
	idx := indexOf(wallets, w.Mnemonic)
	if idx < 0 {
		return nil, vaulterr.WithDetails(vaulterr.ErrWalletNotFound, map[string]string{"name": w.Name})
	}
	out := cloneAll(wallets)
	out[idx] = w.Clone()
	return out, nil
}

// sortByName orders wallets alphabetically by name.
func sortByName(wallets []Wallet) {
	c := collate.New(language.Und)
	slices.SortStableFunc(wallets, func(a, b Wallet) int {
		return c.CompareString(a.Name, b.Name)
	})
}

func indexOf(wallets []Wallet, mnemonic string) int {
	return slices.IndexFunc(wallets, func(w Wallet) bool {
		return w.Mnemonic == mnemonic
	})
}

func cloneAll(wallets []Wallet) []Wallet {
	out := make([]Wallet, len(wallets))
	for i, w := range wallets {
		out[i] = w.Clone()
	}
	return out
}
