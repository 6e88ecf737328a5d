package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rsc.io/qr"

	"github.com/mrz1836/dcrvault/internal/output"
	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed") //nolint:err113 // test error
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]output.Format{
		"json":  output.FormatJSON,
		" JSON": output.FormatJSON,
		"text":  output.FormatText,
		"auto":  output.FormatAuto,
		"":      output.FormatAuto,
		"yaml":  output.FormatAuto,
	}
	for in, want := range tests {
		assert.Equal(t, want, output.ParseFormat(in), in)
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.Equal(t, output.FormatText, output.DetectFormat(&buf, output.FormatText))
	assert.Equal(t, output.FormatJSON, output.DetectFormat(&buf, output.FormatAuto))
	assert.False(t, output.IsTerminal(&buf))
	assert.False(t, output.IsTerminal(nil))
}

func TestFormatter_Result(t *testing.T) {
	t.Parallel()

	v := map[string]int{"atoms": 42}
	render := func(w io.Writer) error {
		_, err := io.WriteString(w, "42 atoms\n")
		return err
	}

	var jsonBuf bytes.Buffer
	f := output.NewFormatter(output.FormatJSON, &jsonBuf)
	require.True(t, f.IsJSON())
	require.NoError(t, f.Result(v, render))
	assert.JSONEq(t, `{"atoms":42}`, jsonBuf.String())

	var textBuf bytes.Buffer
	f = output.NewFormatter(output.FormatText, &textBuf)
	require.NoError(t, f.Result(v, render))
	assert.Equal(t, "42 atoms\n", textBuf.String())
	assert.Equal(t, output.FormatText, f.Format())
}

func TestFormatError_Nil(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, nil, output.FormatJSON))
	assert.Empty(t, buf.String())
}

func TestFormatError_VaultErrorText(t *testing.T) {
	t.Parallel()

	err := vaulterr.WithSuggestion(
		vaulterr.WithDetails(vaulterr.ErrInsufficientFunds, map[string]string{"need": "5", "have": "3"}),
		"sync the wallet first")

	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, err, output.FormatText))

	text := buf.String()
	assert.True(t, strings.HasPrefix(text, "Error: "))
	assert.Less(t, strings.Index(text, "have: 3"), strings.Index(text, "need: 5"))
	assert.Contains(t, text, "Suggestion: sync the wallet first")
}

func TestFormatError_VaultErrorJSON(t *testing.T) {
	t.Parallel()

	err := vaulterr.WrapAs(vaulterr.ErrCollaborator, errors.New("timeout"), "fetching") //nolint:err113 // test error

	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, err, output.FormatJSON))

	var got output.ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, vaulterr.ErrCollaborator.Code, got.Error.Code)
	assert.Contains(t, got.Error.Message, "timeout")
	assert.Equal(t, vaulterr.ExitUpstream, got.Error.ExitCode)
}

func TestFormatError_PlainError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, errors.New("boom"), output.FormatJSON)) //nolint:err113 // test error

	var got output.ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "boom", got.Error.Message)
	assert.Equal(t, vaulterr.ExitGeneral, got.Error.ExitCode)

	require.Error(t, output.FormatError(failingWriter{}, errors.New("boom"), output.FormatText)) //nolint:err113 // test error
}

func TestFormatSuccess(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, output.FormatSuccess(&buf, "wallet renamed", output.FormatText))
	assert.Equal(t, "wallet renamed\n", buf.String())

	buf.Reset()
	require.NoError(t, output.FormatSuccess(&buf, "wallet renamed", output.FormatJSON))
	assert.JSONEq(t, `{"status":"success","message":"wallet renamed"}`, buf.String())
}

func TestTable(t *testing.T) {
	t.Parallel()

	tbl := output.NewTable("NAME", "BALANCE")
	tbl.AlignRight(1)
	tbl.AddRow("alpha", "1.00000000")
	tbl.AddRow("β", "12.50000000")

	assert.Equal(t,
		"NAME       BALANCE\n"+
			"-----  -----------\n"+
			"alpha   1.00000000\n"+
			"β      12.50000000\n",
		tbl.String())

	assert.Empty(t, output.NewTable().String())

	tbl.SetNoHeader(true)
	tbl.SetSeparator(" | ")
	assert.True(t, strings.HasPrefix(tbl.String(), "alpha |  1.00000000"))
}

func TestMessages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	output.Warnf(&buf, "store is %s", "unencrypted")
	output.Infof(&buf, "synced %d%%", 40)
	assert.Equal(t, "warning: store is unencrypted\nsynced 40%\n", buf.String())
}

func TestPaymentURI(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "decred:TsAddr", output.PaymentURI("TsAddr", 0))
	assert.Equal(t, "decred:TsAddr?amount=0.00150000", output.PaymentURI("TsAddr", 150_000))
}

func TestRenderQR_NonTerminal(t *testing.T) {
	t.Parallel()

	cfg := output.DefaultQRConfig()
	assert.Equal(t, qr.L, cfg.Level)

	var buf bytes.Buffer
	require.NoError(t, output.RenderQR(&buf, output.PaymentURI("TsAddr", 0), cfg))
	assert.Empty(t, buf.String())
}
