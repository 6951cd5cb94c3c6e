package domain

import "github.com/cnwallet/walletd/pkg/cncrypto"

// Transaction is a ledger entry: the amounts a single on-chain transaction
// moved in or out of each owned subwallet.
type Transaction struct {
	// Transfers maps a public spend key to the signed amount received
	// (positive) or sent (negative) by that subwallet.
	Transfers   map[cncrypto.PublicKey]int64
	Hash        cncrypto.Hash
	Fee         uint64
	BlockHeight uint64
	Timestamp   uint64
	PaymentID   string
	IsCoinbase  bool
}

// TotalAmount returns the net effect of the transaction on the wallet.
func (t Transaction) TotalAmount() int64 {
	var total int64
	for _, amount := range t.Transfers {
		total += amount
	}
	return total
}

// Involves returns whether the transaction moves funds of the given subwallet.
func (t Transaction) Involves(publicSpendKey cncrypto.PublicKey) bool {
	_, ok := t.Transfers[publicSpendKey]
	return ok
}

func (t Transaction) clone() Transaction {
	transfers := make(map[cncrypto.PublicKey]int64, len(t.Transfers))
	for k, v := range t.Transfers {
		transfers[k] = v
	}
	t.Transfers = transfers
	return t
}
