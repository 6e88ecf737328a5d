package output

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// ErrorOutput is the JSON shape of a failed command.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// FormatError writes err for display. A nil error writes nothing.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}
	detail := detailOf(err)
	if format == FormatJSON {
		return WriteJSON(w, ErrorOutput{Error: detail})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", detail.Message)
	if len(detail.Details) > 0 {
		sb.WriteString("\nDetails:\n")
		keys := make([]string, 0, len(detail.Details))
		for k := range detail.Details {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %s\n", k, detail.Details[k])
		}
	}
	if detail.Suggestion != "" {
		fmt.Fprintf(&sb, "\nSuggestion: %s\n", detail.Suggestion)
	}
	_, writeErr := io.WriteString(w, sb.String())
	return writeErr
}

func detailOf(err error) ErrorDetail {
	var ve *vaulterr.VaultError
	if errors.As(err, &ve) {
		msg := ve.Message
		if ve.Cause != nil {
			msg += ": " + ve.Cause.Error()
		}
		return ErrorDetail{
			Code:       ve.Code,
			Message:    msg,
			Details:    ve.Details,
			Suggestion: vaulterr.SuggestionOf(err),
			ExitCode:   vaulterr.ExitCode(err),
		}
	}
	return ErrorDetail{
		Code:     vaulterr.ErrGeneral.Code,
		Message:  err.Error(),
		ExitCode: vaulterr.ExitGeneral,
	}
}

// FormatSuccess writes a one-line confirmation.
func FormatSuccess(w io.Writer, message string, format Format) error {
	if format == FormatJSON {
		return WriteJSON(w, map[string]string{"status": "success", "message": message})
	}
	_, err := fmt.Fprintln(w, message)
	return err
}
