package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

var (
	errInner = errors.New("inner")
	errPlain = errors.New("plain error")
)

func TestExitCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"success", nil, vaulterr.ExitSuccess},
		{"general error", vaulterr.ErrGeneral, vaulterr.ExitGeneral},
		{"input error", vaulterr.ErrInvalidInput, vaulterr.ExitInput},
		{"validation error", vaulterr.ErrValidation, vaulterr.ExitInput},
		{"not found error", vaulterr.ErrWalletNotFound, vaulterr.ExitNotFound},
		{"insufficient funds", vaulterr.ErrInsufficientFunds, vaulterr.ExitPermission},
		{"collaborator", vaulterr.ErrCollaborator, vaulterr.ExitUpstream},
		{"plain error", errPlain, vaulterr.ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, vaulterr.ExitCode(tt.err))
		})
	}
}

func TestWrapPreservesIdentity(t *testing.T) {
	t.Parallel()

	wrapped := vaulterr.Wrap(vaulterr.ErrInsufficientFunds, "sending %d atoms", 10)
	require.ErrorIs(t, wrapped, vaulterr.ErrInsufficientFunds)
	assert.Equal(t, vaulterr.ExitPermission, vaulterr.ExitCode(wrapped))
	assert.Contains(t, wrapped.Error(), "sending 10 atoms")

	assert.NoError(t, vaulterr.Wrap(nil, "nothing"))
}

func TestWrapPlainError(t *testing.T) {
	t.Parallel()

	wrapped := vaulterr.Wrap(errInner, "context")
	require.ErrorIs(t, wrapped, errInner)
	assert.Equal(t, "GENERAL_ERROR", vaulterr.Code(wrapped))
	assert.Equal(t, "context: inner", wrapped.Error())
}

func TestWrapAs(t *testing.T) {
	t.Parallel()

	err := vaulterr.WrapAs(vaulterr.ErrCollaborator, errInner, "fetching histories")
	require.ErrorIs(t, err, vaulterr.ErrCollaborator)
	require.ErrorIs(t, err, errInner)
	assert.Equal(t, "fetching histories: external collaborator failed: inner", err.Error())
	assert.NoError(t, vaulterr.WrapAs(vaulterr.ErrCollaborator, nil, "nothing"))
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	err := vaulterr.WithDetails(vaulterr.ErrValidation, map[string]string{
		"line": "2",
		"char": "b",
	})
	require.ErrorIs(t, err, vaulterr.ErrValidation)
	// details are rendered in key order
	assert.Equal(t, "validation failed (char: b) (line: 2)", err.Error())

	plain := vaulterr.WithDetails(errPlain, map[string]string{"k": "v"})
	assert.Equal(t, "GENERAL_ERROR", vaulterr.Code(plain))
	assert.NoError(t, vaulterr.WithDetails(nil, nil))
}

func TestWithSuggestion(t *testing.T) {
	t.Parallel()

	err := vaulterr.WithSuggestion(vaulterr.ErrWalletNotFound, "run 'dcrvault wallet list'")
	require.ErrorIs(t, err, vaulterr.ErrWalletNotFound)
	assert.Equal(t, "run 'dcrvault wallet list'", vaulterr.SuggestionOf(err))
	assert.Empty(t, vaulterr.SuggestionOf(errPlain))
	assert.NoError(t, vaulterr.WithSuggestion(nil, "x"))
}

func TestVaultError_Is(t *testing.T) {
	t.Parallel()

	a := vaulterr.New("SAME", "a")
	b := vaulterr.New("SAME", "b")
	c := vaulterr.New("OTHER", "c")

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
	assert.NotErrorIs(t, a, errPlain)
}

func TestAs(t *testing.T) {
	t.Parallel()

	var ve *vaulterr.VaultError
	require.True(t, vaulterr.As(vaulterr.Wrap(vaulterr.ErrNoUTXOs, "send"), &ve))
	assert.Equal(t, "NO_UTXOS", ve.Code)
	assert.False(t, vaulterr.As(errPlain, &ve))
	assert.True(t, vaulterr.Is(vaulterr.Wrap(vaulterr.ErrNoUTXOs, "send"), vaulterr.ErrNoUTXOs))
}
