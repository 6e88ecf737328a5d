// Package codec implements the 32-symbol charset substitution used by
// Decred-style base32 address payloads.
//
// The mapping is a fixed bijection between the symbols of Charset and the
// integers 0-31. There is no padding and no checksum; checksum schemes built
// on top of the charset are a separate concern.
package codec

import (
	"fmt"
	"strings"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// Charset contains the 32 symbols used in the encoding, ordered by value.
const Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// invalidSymbol marks bytes that are not part of Charset.
const invalidSymbol = -1

//nolint:gochecknoglobals // Lookup table derived once from Charset
var charsetIndex = buildIndex()

func buildIndex() [256]int {
	var idx [256]int
	for i := range idx {
		idx[i] = invalidSymbol
	}
	for i := 0; i < len(Charset); i++ {
		idx[Charset[i]] = i
	}
	return idx
}

// Encode maps each value in [0, 32) to its charset symbol.
func Encode(data []int) (string, error) {
	var b strings.Builder
	b.Grow(len(data))
	for i, v := range data {
		if v < 0 || v >= len(Charset) {
			return "", vaulterr.WithDetails(vaulterr.ErrValidation, map[string]string{
				"position": fmt.Sprintf("%d", i),
				"value":    fmt.Sprintf("%d", v),
			})
		}
		b.WriteByte(Charset[v])
	}
	return b.String(), nil
}

// Decode maps each symbol of s back to its value.
func Decode(s string) ([]int, error) {
	out := make([]int, len(s))
	for i := 0; i < len(s); i++ {
		v := charsetIndex[s[i]]
		if v == invalidSymbol {
			return nil, vaulterr.WithDetails(vaulterr.ErrValidation, map[string]string{
				"position": fmt.Sprintf("%d", i),
				"symbol":   fmt.Sprintf("%q", s[i]),
			})
		}
		out[i] = v
	}
	return out, nil
}

// EncodeBytes is Encode for 5-bit groups held in a byte slice.
func EncodeBytes(data []byte) (string, error) {
	values := make([]int, len(data))
	for i, b := range data {
		values[i] = int(b)
	}
	return Encode(values)
}

// DecodeBytes is Decode returning 5-bit groups as bytes.
func DecodeBytes(s string) ([]byte, error) {
	values, err := Decode(s)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(values))
	for i, v := range values {
		out[i] = byte(v)
	}
	return out, nil
}

// IsValid reports whether every symbol of s belongs to Charset.
func IsValid(s string) bool {
	for i := 0; i < len(s); i++ {
		if charsetIndex[s[i]] == invalidSymbol {
			return false
		}
	}
	return true
}
