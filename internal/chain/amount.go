package chain

import (
	"strings"

	"github.com/shopspring/decimal"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// AtomsPerCoin is the number of atoms in one coin.
const AtomsPerCoin int64 = 1e8

// coinDecimals is the decimal exponent between coins and atoms.
const coinDecimals = 8

// ToAtoms converts a coin amount to atoms. The result must be a whole
// number of atoms; amounts with more than eight decimals are rejected.
func ToAtoms(coins decimal.Decimal) (int64, error) {
	atoms := coins.Shift(coinDecimals)
	if !atoms.IsInteger() {
		return 0, vaulterr.WithSuggestion(vaulterr.ErrInvalidAmount,
			"result not an integer, check input for a valid DCR amount")
	}
	if atoms.IsNegative() {
		return 0, vaulterr.WithSuggestion(vaulterr.ErrInvalidAmount, "amount must not be negative")
	}
	return atoms.IntPart(), nil
}

// FloorAtoms converts a coin amount to atoms, dropping any fraction of an atom.
func FloorAtoms(coins decimal.Decimal) int64 {
	return coins.Shift(coinDecimals).Floor().IntPart()
}

// ToCoin converts atoms to a coin amount.
func ToCoin(atoms int64) decimal.Decimal {
	return decimal.New(atoms, -coinDecimals)
}

// ToCoinDecimal converts an atom amount held as a decimal to coins. It fails
// when the atom amount is not a whole number.
func ToCoinDecimal(atoms decimal.Decimal) (decimal.Decimal, error) {
	if !atoms.IsInteger() {
		return decimal.Zero, vaulterr.WithSuggestion(vaulterr.ErrInvalidAmount,
			"atom amount must be an integer")
	}
	return atoms.Shift(-coinDecimals), nil
}

// ParseCoin parses a user supplied decimal coin amount.
func ParseCoin(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, vaulterr.WithDetails(vaulterr.ErrValidation, map[string]string{"amount": "empty"})
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, vaulterr.WithDetails(vaulterr.ErrValidation, map[string]string{"amount": s})
	}
	return d, nil
}

// ParseAtoms parses a decimal coin string straight to a whole atom amount.
func ParseAtoms(s string) (int64, error) {
	d, err := ParseCoin(s)
	if err != nil {
		return 0, err
	}
	return ToAtoms(d)
}

// FiatToAtoms converts a fiat amount at the given coin price to atoms,
// rounding down.
func FiatToAtoms(fiat, price decimal.Decimal) (int64, error) {
	if !price.IsPositive() {
		return 0, vaulterr.WithSuggestion(vaulterr.ErrInvalidAmount, "price must be positive")
	}
	return FloorAtoms(fiat.Div(price)), nil
}

// DivDecimals divides an integer amount by div, as used for token decimals.
func DivDecimals(value, div int64) (decimal.Decimal, error) {
	if div == 0 {
		return decimal.Zero, vaulterr.WithSuggestion(vaulterr.ErrInvalidAmount, "division by zero")
	}
	return decimal.NewFromInt(value).Div(decimal.NewFromInt(div)), nil
}

// FormatCoin renders atoms as a fixed eight-decimal coin string.
func FormatCoin(atoms int64) string {
	return ToCoin(atoms).StringFixed(coinDecimals)
}
