package transaction

import (
	"github.com/mrz1836/dcrvault/internal/chain/dcr"
	"github.com/mrz1836/dcrvault/internal/wallet"
)

// keysForUtxos decodes the private key of every distinct address that
// appears in the UTXO set. The caller must zero all keys after use.
func keysForUtxos(w wallet.Wallet) (map[string][]byte, error) {
	keys := make(map[string][]byte)
	for _, utxo := range w.State.Utxos {
		if _, ok := keys[utxo.Address]; ok {
			continue
		}
		hexKey, err := w.PrivateKeyFor(utxo.Address)
		if err != nil {
			zeroKeyMap(keys)
			return nil, err
		}
		key, err := dcr.DecodePrivKeyHex(hexKey)
		if err != nil {
			zeroKeyMap(keys)
			return nil, err
		}
		keys[utxo.Address] = key
	}
	return keys, nil
}

// lookup adapts a key map to the signer's key lookup.
func lookup(keys map[string][]byte) dcr.KeyLookup {
	return func(address string) ([]byte, error) {
		return keys[address], nil
	}
}

// zeroKeyMap zeros all private keys in a map.
func zeroKeyMap(keys map[string][]byte) {
	for _, key := range keys {
		for i := range key {
			key[i] = 0
		}
	}
}
