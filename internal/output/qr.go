package output

import (
	"io"

	"github.com/mdp/qrterminal/v3"
	"rsc.io/qr"

	"github.com/mrz1836/dcrvault/internal/chain"
)

// URIScheme prefixes payment URIs.
const URIScheme = "decred:"

// QRConfig configures QR code rendering.
type QRConfig struct {
	// Level is the error correction level.
	Level qr.Level
	// QuietZone is the number of empty blocks around the QR code.
	QuietZone int
	// HalfBlocks uses half-height blocks for a more compact display.
	HalfBlocks bool
}

// DefaultQRConfig returns compact low-redundancy settings; addresses are
// short and displayed on screen.
func DefaultQRConfig() QRConfig {
	return QRConfig{
		Level:      qr.L,
		QuietZone:  1,
		HalfBlocks: true,
	}
}

// PaymentURI returns a payment URI for address, with an amount when atoms
// is positive.
func PaymentURI(address string, atoms int64) string {
	uri := URIScheme + address
	if atoms > 0 {
		uri += "?amount=" + chain.FormatCoin(atoms)
	}
	return uri
}

// RenderQR draws data as a QR code when w is a terminal. Other writers get
// no output.
func RenderQR(w io.Writer, data string, cfg QRConfig) error {
	if !IsTerminal(w) {
		return nil
	}

	qrterminal.GenerateWithConfig(data, qrterminal.Config{
		Level:          cfg.Level,
		Writer:         w,
		QuietZone:      cfg.QuietZone,
		HalfBlocks:     cfg.HalfBlocks,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
	})
	return nil
}
