// Package errors provides structured error handling for dcrvault.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input
	ExitAuth       = 3 // Authentication failed
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Permission denied or insufficient funds
	ExitUpstream   = 6 // External collaborator failed
)

// VaultError is the structured error type for dcrvault.
type VaultError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *VaultError) Error() string {
	msg := e.Message

	// Details are sorted for deterministic output
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *VaultError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for VaultError. Two errors match when their codes match.
func (e *VaultError) Is(target error) bool {
	var t *VaultError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &VaultError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &VaultError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	// ErrValidation covers malformed codec input, malformed multi-send lines
	// and non-numeric amounts. It is never retried.
	ErrValidation = &VaultError{
		Code:     "VALIDATION_ERROR",
		Message:  "validation failed",
		ExitCode: ExitInput,
	}

	ErrNotFound = &VaultError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	ErrInsufficientFunds = &VaultError{
		Code:     "INSUFFICIENT_FUNDS",
		Message:  "insufficient funds for transaction",
		ExitCode: ExitPermission,
	}

	// ErrCollaborator wraps failures of the history fetcher or the persister.
	ErrCollaborator = &VaultError{
		Code:     "COLLABORATOR_FAILURE",
		Message:  "external collaborator failed",
		ExitCode: ExitUpstream,
	}

	// Wallet-specific errors.
	ErrWalletNotFound = &VaultError{
		Code:     "WALLET_NOT_FOUND",
		Message:  "wallet not found",
		ExitCode: ExitNotFound,
	}

	ErrWalletExists = &VaultError{
		Code:     "WALLET_EXISTS",
		Message:  "wallet already exists",
		ExitCode: ExitInput,
	}

	ErrWalletBusy = &VaultError{
		Code:     "WALLET_BUSY",
		Message:  "another operation is in progress for this wallet",
		ExitCode: ExitGeneral,
	}

	ErrInvalidMnemonic = &VaultError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	ErrUnsupportedSeedType = &VaultError{
		Code:     "UNSUPPORTED_SEED_TYPE",
		Message:  "seed type must be 12, 24, 17 or 33",
		ExitCode: ExitInput,
	}

	ErrDecryptionFailed = &VaultError{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong passphrase or corrupted file",
		ExitCode: ExitAuth,
	}

	// Sync-specific errors.
	ErrSyncCanceled = &VaultError{
		Code:     "SYNC_CANCELED",
		Message:  "wallet sync was canceled",
		ExitCode: ExitGeneral,
	}

	// Chain-specific errors.
	ErrInvalidAddress = &VaultError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrInvalidAmount = &VaultError{
		Code:     "INVALID_AMOUNT",
		Message:  "invalid amount format",
		ExitCode: ExitInput,
	}

	ErrFeeCalculation = &VaultError{
		Code:     "FEE_CALCULATION_FAILED",
		Message:  "calculate fee failed",
		ExitCode: ExitGeneral,
	}

	ErrNoUTXOs = &VaultError{
		Code:     "NO_UTXOS",
		Message:  "no UTXOs available",
		ExitCode: ExitInput,
	}

	ErrSigningKeyNotFound = &VaultError{
		Code:     "SIGNING_KEY_NOT_FOUND",
		Message:  "no wallet key found for input address",
		ExitCode: ExitGeneral,
	}

	ErrInvalidTransaction = &VaultError{
		Code:     "INVALID_TRANSACTION",
		Message:  "invalid transaction",
		ExitCode: ExitInput,
	}

	// Config-specific errors.
	ErrConfigNotFound = &VaultError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &VaultError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}
)

// New creates a new VaultError with the given code and message.
func New(code, message string) *VaultError {
	return &VaultError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var ve *VaultError
	if errors.As(err, &ve) {
		return &VaultError{
			Code:       ve.Code,
			Message:    fmt.Sprintf("%s: %s", msg, ve.Message),
			Details:    ve.Details,
			Suggestion: ve.Suggestion,
			Cause:      err,
			ExitCode:   ve.ExitCode,
		}
	}

	return &VaultError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WrapAs attaches cause to the sentinel kind so that errors.Is matches both
// the kind and the original cause.
func WrapAs(kind *VaultError, cause error, format string, args ...any) error {
	if cause == nil {
		return nil
	}
	return &VaultError{
		Code:       kind.Code,
		Message:    fmt.Sprintf("%s: %s", fmt.Sprintf(format, args...), kind.Message),
		Suggestion: kind.Suggestion,
		Cause:      cause,
		ExitCode:   kind.ExitCode,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var ve *VaultError
	if errors.As(err, &ve) {
		return &VaultError{
			Code:       ve.Code,
			Message:    ve.Message,
			Details:    details,
			Suggestion: ve.Suggestion,
			Cause:      ve.Cause,
			ExitCode:   ve.ExitCode,
		}
	}

	return &VaultError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var ve *VaultError
	if errors.As(err, &ve) {
		return &VaultError{
			Code:       ve.Code,
			Message:    ve.Message,
			Details:    ve.Details,
			Suggestion: suggestion,
			Cause:      ve.Cause,
			ExitCode:   ve.ExitCode,
		}
	}

	return &VaultError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ve *VaultError
	if errors.As(err, &ve) {
		return ve.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var ve *VaultError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return "GENERAL_ERROR"
}

// SuggestionOf returns the first suggestion found in the error chain.
func SuggestionOf(err error) string {
	var ve *VaultError
	if errors.As(err, &ve) {
		return ve.Suggestion
	}
	return ""
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
