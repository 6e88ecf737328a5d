package transaction

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

func TestParseMultiSendInput(t *testing.T) {
	t.Parallel()

	outputs, err := ParseMultiSendInput("addrX,1.5\naddrY,2.25")
	require.NoError(t, err)
	assert.Equal(t, []Output{
		{Address: "addrX", Atoms: 150_000_000},
		{Address: "addrY", Atoms: 225_000_000},
	}, outputs)
}

func TestParseMultiSendInput_Normalization(t *testing.T) {
	t.Parallel()

	outputs, err := ParseMultiSendInput("  addrX , 0.123456789 \r\n\naddrY,  2\n")
	require.NoError(t, err)
	assert.Equal(t, []Output{
		{Address: "addrX", Atoms: 12_345_678},
		{Address: "addrY", Atoms: 200_000_000},
	}, outputs)
}

func TestParseMultiSendInput_Malformed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		line  string
	}{
		{"no comma", "addrX 1.5", "1"},
		{"too many fields", "addrX,1.5,3", "1"},
		{"missing address", ",1.5", "1"},
		{"not numeric", "addrX,1.5\naddrY,abc", "2"},
		{"comma decimal", "addrX,1,5", "1"},
		{"zero", "addrX,0", "1"},
		{"below one atom", "addrX,0.000000001", "1"},
		{"negative", "addrX,-1", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseMultiSendInput(tt.input)
			require.ErrorIs(t, err, vaulterr.ErrValidation)
			assert.Contains(t, err.Error(), "(line: "+tt.line+")")
		})
	}

	_, err := ParseMultiSendInput("\n \n")
	require.ErrorIs(t, err, vaulterr.ErrValidation)
}

func TestSumMultiSend(t *testing.T) {
	t.Parallel()

	total, err := SumMultiSend("addrX,1.5\naddrY,2.25\n")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("3.75").Equal(total), total.String())

	_, err = SumMultiSend("addrX")
	require.ErrorIs(t, err, vaulterr.ErrValidation)
}
