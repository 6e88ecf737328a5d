package dcr

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/chaincfg/v3"
	"github.com/decred/dcrd/wire"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// NoChange marks a transaction without a change output.
const NoChange = -1

// Input is an unspent output consumed by a transaction.
type Input struct {
	TxID    string
	Vout    uint32
	Atoms   int64
	Address string
}

// Output is a payment to an address.
type Output struct {
	Address string
	Atoms   int64
}

// TxBuilder builds Decred transactions spending pay-to-pubkey-hash outputs.
type TxBuilder struct {
	Inputs        []Input
	Outputs       []Output
	ChangeAddress string
	FeeRate       int64
	DustLimit     int64

	params *chaincfg.Params
}

// NewTxBuilder creates a transaction builder for the network.
func NewTxBuilder(params *chaincfg.Params) *TxBuilder {
	return &TxBuilder{
		FeeRate:   DefaultFeeRate,
		DustLimit: DustLimit,
		params:    params,
	}
}

// AddInput adds an unspent output as an input.
func (b *TxBuilder) AddInput(in Input) error {
	if _, err := chainhash.NewHashFromStr(in.TxID); err != nil {
		return vaulterr.WrapAs(vaulterr.ErrInvalidTransaction, err, "input txid %q", in.TxID)
	}
	if in.Atoms < 0 {
		return fmt.Errorf("%w: input %s:%d has negative value", vaulterr.ErrInvalidAmount, in.TxID, in.Vout)
	}
	if err := ValidateAddress(in.Address, b.params); err != nil {
		return fmt.Errorf("invalid input address: %w", err)
	}
	b.Inputs = append(b.Inputs, in)
	return nil
}

// AddOutput adds a payment output.
func (b *TxBuilder) AddOutput(address string, atoms int64) error {
	if err := ValidateAddress(address, b.params); err != nil {
		return fmt.Errorf("invalid output address: %w", err)
	}
	if atoms < 0 {
		return fmt.Errorf("%w: output amount must not be negative, got %d", vaulterr.ErrInvalidAmount, atoms)
	}
	b.Outputs = append(b.Outputs, Output{Address: address, Atoms: atoms})
	return nil
}

// SetChangeAddress sets where leftover value above the dust limit goes.
func (b *TxBuilder) SetChangeAddress(address string) error {
	if err := ValidateAddress(address, b.params); err != nil {
		return fmt.Errorf("invalid change address: %w", err)
	}
	b.ChangeAddress = address
	return nil
}

// TotalInputAmount returns the sum of all input amounts.
func (b *TxBuilder) TotalInputAmount() int64 {
	var total int64
	for _, in := range b.Inputs {
		total += in.Atoms
	}
	return total
}

// TotalOutputAmount returns the sum of all output amounts.
func (b *TxBuilder) TotalOutputAmount() int64 {
	var total int64
	for _, out := range b.Outputs {
		total += out.Atoms
	}
	return total
}

// EstimateSize returns the serialized size of the signed transaction,
// counting a change output when withChange is set and a change address is
// configured.
func (b *TxBuilder) EstimateSize(withChange bool) (int, error) {
	outputs := b.Outputs
	if withChange && b.ChangeAddress != "" {
		outputs = append(outputs[:len(outputs):len(outputs)], Output{Address: b.ChangeAddress})
	}
	msg, err := b.unsignedTx(outputs)
	if err != nil {
		return 0, err
	}
	return msg.SerializeSize() + len(b.Inputs)*RedeemP2PKHSigScriptSize, nil
}

// fees returns the fee of the transaction priced without and with a change
// output.
func (b *TxBuilder) fees() (bare, withChange int64, err error) {
	size, err := b.EstimateSize(false)
	if err != nil {
		return 0, 0, err
	}
	bare = FeeForSize(size, b.FeeRate)

	size, err = b.EstimateSize(true)
	if err != nil {
		return 0, 0, err
	}
	return bare, FeeForSize(size, b.FeeRate), nil
}

// CalculateFee returns the fee for the estimated signed size. The change
// output is only paid for when the value left over after outputs exceeds
// the fee without it.
func (b *TxBuilder) CalculateFee() (int64, error) {
	bare, withChange, err := b.fees()
	if err != nil {
		return 0, err
	}
	if b.ChangeAddress == "" || b.TotalInputAmount()-b.TotalOutputAmount() <= bare {
		return bare, nil
	}
	return withChange, nil
}

// Build assembles the unsigned transaction. Value left after outputs goes to
// the change address when it exceeds the change output's fee by more than
// the dust limit. Otherwise no change output is added and the whole
// remainder is the fee, which must cover the size without change.
func (b *TxBuilder) Build() (*Tx, error) {
	if len(b.Inputs) == 0 {
		return nil, vaulterr.ErrNoUTXOs
	}
	if len(b.Outputs) == 0 {
		return nil, fmt.Errorf("%w: transaction has no outputs", vaulterr.ErrInvalidTransaction)
	}

	bare, withChange, err := b.fees()
	if err != nil {
		return nil, err
	}

	inputTotal := b.TotalInputAmount()
	outputTotal := b.TotalOutputAmount()
	if inputTotal < outputTotal+bare {
		return nil, vaulterr.WithDetails(vaulterr.ErrInsufficientFunds, map[string]string{
			"have":    strconv.FormatInt(inputTotal, 10),
			"outputs": strconv.FormatInt(outputTotal, 10),
			"fee":     strconv.FormatInt(bare, 10),
		})
	}

	outputs := append([]Output(nil), b.Outputs...)
	changeIndex := NoChange
	if change := inputTotal - outputTotal - withChange; change > b.DustLimit && b.ChangeAddress != "" {
		changeIndex = len(outputs)
		outputs = append(outputs, Output{Address: b.ChangeAddress, Atoms: change})
	}

	msg, err := b.unsignedTx(outputs)
	if err != nil {
		return nil, err
	}

	var paid int64
	for _, out := range outputs {
		paid += out.Atoms
	}

	return &Tx{
		Msg:         msg,
		Inputs:      append([]Input(nil), b.Inputs...),
		Outputs:     outputs,
		Fee:         inputTotal - paid,
		ChangeIndex: changeIndex,
		params:      b.params,
	}, nil
}

func (b *TxBuilder) unsignedTx(outputs []Output) (*wire.MsgTx, error) {
	msg := wire.NewMsgTx()
	for _, in := range b.Inputs {
		hash, err := chainhash.NewHashFromStr(in.TxID)
		if err != nil {
			return nil, vaulterr.WrapAs(vaulterr.ErrInvalidTransaction, err, "input txid %q", in.TxID)
		}
		prev := wire.NewOutPoint(hash, in.Vout, wire.TxTreeRegular)
		msg.AddTxIn(wire.NewTxIn(prev, in.Atoms, nil))
	}
	for _, out := range outputs {
		version, script, err := PaymentScript(out.Address, b.params)
		if err != nil {
			return nil, err
		}
		txOut := wire.NewTxOut(out.Atoms, script)
		txOut.Version = version
		msg.AddTxOut(txOut)
	}
	return msg, nil
}

// Tx is a built transaction together with the records it was built from.
type Tx struct {
	Msg         *wire.MsgTx
	Inputs      []Input
	Outputs     []Output
	Fee         int64
	ChangeIndex int

	params *chaincfg.Params
}

// TxID returns the transaction hash.
func (t *Tx) TxID() string {
	return t.Msg.TxHash().String()
}

// Hex returns the serialized transaction as hex.
func (t *Tx) Hex() (string, error) {
	raw, err := t.Msg.Bytes()
	if err != nil {
		return "", fmt.Errorf("serializing transaction: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// TxJSON is the structured form of a built transaction.
type TxJSON struct {
	Hash        string         `json:"hash"`
	Version     uint16         `json:"version"`
	LockTime    uint32         `json:"locktime"`
	Expiry      uint32         `json:"expiry"`
	Inputs      []TxInputJSON  `json:"inputs"`
	Outputs     []TxOutputJSON `json:"outputs"`
	Fee         int64          `json:"fee"`
	ChangeIndex int            `json:"changeIndex"`
}

// TxInputJSON describes one input.
type TxInputJSON struct {
	PrevTxID        string `json:"prevTxId"`
	OutputIndex     uint32 `json:"outputIndex"`
	Tree            int8   `json:"tree"`
	Atoms           int64  `json:"atoms"`
	Address         string `json:"address"`
	SignatureScript string `json:"script"`
}

// TxOutputJSON describes one output.
type TxOutputJSON struct {
	Atoms         int64  `json:"atoms"`
	Address       string `json:"address"`
	ScriptVersion uint16 `json:"scriptVersion"`
	Script        string `json:"script"`
}

// JSON returns the structured form of the transaction.
func (t *Tx) JSON() TxJSON {
	out := TxJSON{
		Hash:        t.TxID(),
		Version:     t.Msg.Version,
		LockTime:    t.Msg.LockTime,
		Expiry:      t.Msg.Expiry,
		Inputs:      make([]TxInputJSON, 0, len(t.Msg.TxIn)),
		Outputs:     make([]TxOutputJSON, 0, len(t.Msg.TxOut)),
		Fee:         t.Fee,
		ChangeIndex: t.ChangeIndex,
	}
	for i, in := range t.Msg.TxIn {
		out.Inputs = append(out.Inputs, TxInputJSON{
			PrevTxID:        in.PreviousOutPoint.Hash.String(),
			OutputIndex:     in.PreviousOutPoint.Index,
			Tree:            in.PreviousOutPoint.Tree,
			Atoms:           in.ValueIn,
			Address:         t.Inputs[i].Address,
			SignatureScript: hex.EncodeToString(in.SignatureScript),
		})
	}
	for i, txOut := range t.Msg.TxOut {
		out.Outputs = append(out.Outputs, TxOutputJSON{
			Atoms:         txOut.Value,
			Address:       t.Outputs[i].Address,
			ScriptVersion: txOut.Version,
			Script:        hex.EncodeToString(txOut.PkScript),
		})
	}
	return out
}
