package dcr

const (
	// DefaultFeeRate is the default fee rate in atoms per kilobyte.
	DefaultFeeRate = 2010

	// DustLimit is the largest change amount that is folded into the fee
	// instead of producing a change output.
	DustLimit = 546

	// RedeemP2PKHSigScriptSize is the worst case size of a pay-to-pubkey-hash
	// signature script: a 73 byte DER signature with hash type and a 33 byte
	// compressed public key, each behind a one byte push opcode.
	RedeemP2PKHSigScriptSize = 1 + 73 + 1 + 33

	// bytesPerKB is the size unit fee rates are expressed in.
	bytesPerKB = 1000
)

// FeeForSize returns the fee for a transaction of size bytes. Every started
// kilobyte is charged at the full rate.
func FeeForSize(size int, rate int64) int64 {
	if size <= 0 {
		return 0
	}
	kb := (size + bytesPerKB - 1) / bytesPerKB
	return int64(kb) * rate
}
