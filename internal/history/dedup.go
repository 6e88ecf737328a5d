package history

import "github.com/mrz1836/dcrvault/internal/wallet"

// Dedup drops transactions whose txid was already seen. The first
// occurrence wins and order is preserved.
func Dedup(txs []wallet.Transaction) []wallet.Transaction {
	return DedupBy(txs, func(tx wallet.Transaction) string { return tx.Txid })
}

// DedupBy keeps the first item for every key, preserving order.
func DedupBy[T any, K comparable](items []T, key func(T) K) []T {
	if items == nil {
		return nil
	}
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}
