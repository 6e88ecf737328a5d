package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mrz1836/dcrvault/internal/wallet"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// Prompt hooks, replaced in tests.
//
//nolint:gochecknoglobals // swapped by tests
var (
	promptPasswordFn = promptPassword
	promptConfirmFn  = promptConfirm
	readMnemonicFn   = readMnemonic

	stdin io.Reader = os.Stdin
)

// promptPassword reads a secret from the terminal without echo.
// The caller zeroes the returned bytes.
func promptPassword(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // G115: Fd() returns uintptr, safe conversion for term.ReadPassword
	if !term.IsTerminal(fd) {
		return nil, vaulterr.WithSuggestion(vaulterr.ErrInvalidInput,
			"no terminal available to read a passphrase; set it in the environment")
	}

	out(os.Stderr, "%s", prompt)
	secret, err := term.ReadPassword(fd)
	outln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	return secret, nil
}

// promptConfirm asks a yes/no question on stderr. Anything but y/yes is no.
func promptConfirm(question string) bool {
	out(os.Stderr, "%s [y/N]: ", question)
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// readMnemonic reads a mnemonic phrase from one line of stdin.
func readMnemonic() (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: see promptPassword
		out(os.Stderr, "Enter mnemonic (all words on one line): ")
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", vaulterr.WithSuggestion(vaulterr.ErrInvalidInput, "no mnemonic provided")
	}
	mnemonic := wallet.NormalizeMnemonicInput(line)
	if mnemonic == "" {
		return "", vaulterr.WithSuggestion(vaulterr.ErrInvalidInput, "no mnemonic provided")
	}
	return mnemonic, nil
}
