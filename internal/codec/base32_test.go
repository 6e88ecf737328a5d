package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

func TestCharsetIsBijection(t *testing.T) {
	t.Parallel()

	require.Len(t, Charset, 32)
	seen := make(map[byte]bool, len(Charset))
	for i := 0; i < len(Charset); i++ {
		assert.False(t, seen[Charset[i]], "duplicate symbol %q", Charset[i])
		seen[Charset[i]] = true
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []int
		want string
	}{
		{"empty", []int{}, ""},
		{"first and last", []int{0, 31}, "ql"},
		{"sequence", []int{1, 2, 3, 4, 5}, "pzry9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Encode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_OutOfRange(t *testing.T) {
	t.Parallel()

	for _, in := range [][]int{{32}, {-1}, {0, 1, 100}} {
		_, err := Encode(in)
		require.ErrorIs(t, err, vaulterr.ErrValidation)
	}
}

func TestDecode_InvalidSymbol(t *testing.T) {
	t.Parallel()

	// 'b', 'i', 'o' and '1' are excluded from the charset
	for _, in := range []string{"b", "qpi", "o", "1", "Q"} {
		_, err := Decode(in)
		require.ErrorIs(t, err, vaulterr.ErrValidation, "input %q", in)
		assert.False(t, IsValid(in))
	}
}

func TestBytesHelpers(t *testing.T) {
	t.Parallel()

	s, err := EncodeBytes([]byte{0, 1, 31})
	require.NoError(t, err)
	assert.Equal(t, "qpl", s)

	b, err := DecodeBytes(s)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 31}, b)

	_, err = EncodeBytes([]byte{32})
	require.ErrorIs(t, err, vaulterr.ErrValidation)
	_, err = DecodeBytes("b")
	require.ErrorIs(t, err, vaulterr.ErrValidation)
}

func TestRoundTrip_Values(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		values := rapid.SliceOf(rapid.IntRange(0, 31)).Draw(rt, "values")
		if values == nil {
			values = []int{}
		}

		encoded, err := Encode(values)
		require.NoError(rt, err)
		decoded, err := Decode(encoded)
		require.NoError(rt, err)
		assert.Equal(rt, values, decoded)
	})
}

func TestRoundTrip_Strings(t *testing.T) {
	t.Parallel()

	symbols := []rune(Charset)
	rapid.Check(t, func(rt *rapid.T) {
		runes := rapid.SliceOf(rapid.SampledFrom(symbols)).Draw(rt, "symbols")
		s := string(runes)

		decoded, err := Decode(s)
		require.NoError(rt, err)
		encoded, err := Encode(decoded)
		require.NoError(rt, err)
		assert.Equal(rt, s, encoded)
		assert.True(rt, IsValid(s))
	})
}
