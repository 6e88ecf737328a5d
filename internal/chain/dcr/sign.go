package dcr

import (
	"fmt"

	"github.com/decred/dcrd/dcrec"
	"github.com/decred/dcrd/txscript/v4"
	"github.com/decred/dcrd/txscript/v4/sign"

	vaulterr "github.com/mrz1836/dcrvault/pkg/errors"
)

// KeyLookup returns the raw private key controlling address.
type KeyLookup func(address string) ([]byte, error)

// Sign signs every input with SIGHASH_ALL using the key controlling the
// address of the output it spends. Signing fails as a whole: on error the
// transaction keeps no signature scripts.
func (t *Tx) Sign(keys KeyLookup) error {
	scripts := make([][]byte, len(t.Inputs))
	for i, in := range t.Inputs {
		key, err := keys(in.Address)
		if err != nil {
			return err
		}
		if len(key) == 0 {
			return vaulterr.WithDetails(vaulterr.ErrSigningKeyNotFound, map[string]string{"address": in.Address})
		}

		_, subScript, err := PaymentScript(in.Address, t.params)
		if err != nil {
			return err
		}

		sigScript, err := sign.SignatureScript(t.Msg, i, subScript, txscript.SigHashAll,
			key, dcrec.STEcdsaSecp256k1, true)
		if err != nil {
			return fmt.Errorf("signing input %d: %w", i, err)
		}
		scripts[i] = sigScript
	}

	for i := range t.Msg.TxIn {
		t.Msg.TxIn[i].SignatureScript = scripts[i]
	}
	return nil
}
