package application

import (
	"testing"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/cnwallet/walletd/pkg/cncrypto"
	"github.com/stretchr/testify/require"
)

func TestTransactionScanner(t *testing.T) {
	t.Run("coinbase only block", testScanCoinbaseOnlyBlock())
	t.Run("incoming transfer", testScanIncomingTransfer())
	t.Run("outgoing transfer", testScanOutgoingTransfer())
	t.Run("coinbase reward", testScanCoinbaseReward())
	t.Run("unattributable transaction", testScanUnattributableTransaction())
	t.Run("view wallet", testScanViewWallet())
	t.Run("reorg", testScanReorg())
}

func newTestScanner(subWallets *domain.SubWallets) *transactionScanner {
	return newTransactionScanner(
		subWallets, newBlockQueue(1), domain.NewSynchronizationStatus(),
	)
}

func testScanCoinbaseOnlyBlock() func(t *testing.T) {
	return func(t *testing.T) {
		keys := newTestKeys(t)
		subWallets := newTestSubWallets(t, keys)
		scanner := newTestScanner(subWallets)

		scanner.processBlock(newTestBlock(100, strangerCoinbase(t)))

		require.Empty(t, subWallets.GetTransactions())
		require.Equal(t, uint64(100), scanner.getHeight())
	}
}

func testScanIncomingTransfer() func(t *testing.T) {
	return func(t *testing.T) {
		keys := newTestKeys(t)
		subWallets := newTestSubWallets(t, keys)
		scanner := newTestScanner(subWallets)

		tx := newTestTransaction(t, nil, payment{&keys, 500})
		scanner.processBlock(newTestBlock(5, strangerCoinbase(t), tx))

		txs := subWallets.GetTransactions()
		require.Len(t, txs, 1)
		require.Equal(t, map[cncrypto.PublicKey]int64{keys.spendPub: 500}, txs[0].Transfers)
		require.Equal(t, tx.Hash, txs[0].Hash)
		require.Equal(t, uint64(5), txs[0].BlockHeight)
		// No inputs visible: outputs exceed inputs, reported as zero fee.
		require.Zero(t, txs[0].Fee)

		balance, err := subWallets.GetBalance(keys.spendPub)
		require.NoError(t, err)
		require.Equal(t, uint64(500), balance)

		owner, ok := subWallets.GetKeyImageOwner(keyImageOf(t, keys, tx, 0))
		require.True(t, ok)
		require.Equal(t, keys.spendPub, owner)
	}
}

func testScanOutgoingTransfer() func(t *testing.T) {
	return func(t *testing.T) {
		keys := newTestKeys(t)
		subWallets := newTestSubWallets(t, keys)
		scanner := newTestScanner(subWallets)

		incoming := newTestTransaction(
			t, nil, payment{amount: 250}, payment{&keys, 500},
		)
		scanner.processBlock(newTestBlock(5, strangerCoinbase(t), incoming))

		spent := keyImageOf(t, keys, incoming, 1)
		outgoing := newTestTransaction(
			t,
			[]domain.KeyInput{{KeyImage: spent, Amount: 500}},
			payment{amount: 300},
			payment{&keys, 150},
		)
		scanner.processBlock(newTestBlock(6, strangerCoinbase(t), outgoing))

		txs := subWallets.GetTransactions()
		require.Len(t, txs, 2)
		require.Equal(t, map[cncrypto.PublicKey]int64{keys.spendPub: -350}, txs[1].Transfers)
		require.Equal(t, uint64(50), txs[1].Fee)

		balance, err := subWallets.GetBalance(keys.spendPub)
		require.NoError(t, err)
		require.Equal(t, uint64(150), balance)
	}
}

func testScanCoinbaseReward() func(t *testing.T) {
	return func(t *testing.T) {
		keys := newTestKeys(t)
		subWallets := newTestSubWallets(t, keys)
		scanner := newTestScanner(subWallets)

		coinbase := newTestTransaction(t, nil, payment{&keys, 2900}).RawCoinbaseTransaction
		scanner.processBlock(newTestBlock(7, coinbase))

		txs := subWallets.GetTransactions()
		require.Len(t, txs, 1)
		require.True(t, txs[0].IsCoinbase)
		require.Zero(t, txs[0].Fee)
		require.Equal(t, int64(2900), txs[0].TotalAmount())
	}
}

func testScanUnattributableTransaction() func(t *testing.T) {
	return func(t *testing.T) {
		keys := newTestKeys(t)
		subWallets := newTestSubWallets(t, keys)
		scanner := newTestScanner(subWallets)

		tx := newTestTransaction(t, nil, payment{&keys, 500})
		// Keep the tag but only part of the key.
		tx.Extra = tx.Extra[:20]

		require.NotPanics(t, func() {
			scanner.processBlock(newTestBlock(8, strangerCoinbase(t), tx))
		})
		require.Empty(t, subWallets.GetTransactions())
		require.Equal(t, uint64(8), scanner.getHeight())

		tx.Extra = nil
		scanner.processBlock(newTestBlock(9, strangerCoinbase(t), tx))
		require.Empty(t, subWallets.GetTransactions())
	}
}

func testScanViewWallet() func(t *testing.T) {
	return func(t *testing.T) {
		keys := newTestKeys(t)
		subWallets := domain.NewSubWallets(keys.viewSec, true)
		err := subWallets.AddSubWallet(
			keys.spendPub, cncrypto.SecretKey{}, "addr", 0, false,
		)
		require.NoError(t, err)
		scanner := newTestScanner(subWallets)

		tx := newTestTransaction(t, nil, payment{&keys, 500})
		scanner.processBlock(newTestBlock(5, strangerCoinbase(t), tx))

		balance, err := subWallets.GetBalance(keys.spendPub)
		require.NoError(t, err)
		require.Equal(t, uint64(500), balance)

		sw, err := subWallets.GetSubWallet(keys.spendPub)
		require.NoError(t, err)
		require.Empty(t, sw.KeyImages)
	}
}

func testScanReorg() func(t *testing.T) {
	return func(t *testing.T) {
		keys := newTestKeys(t)
		subWallets := newTestSubWallets(t, keys)
		scanner := newTestScanner(subWallets)

		txs := make([]domain.RawTransaction, 0, 3)
		for height := uint64(10); height <= 12; height++ {
			tx := newTestTransaction(t, nil, payment{&keys, 100})
			txs = append(txs, tx)
			scanner.processBlock(newTestBlock(height, strangerCoinbase(t), tx))
		}
		require.Len(t, subWallets.GetTransactions(), 3)

		replacement := newTestTransaction(t, nil, payment{&keys, 40})
		scanner.processBlock(
			newTestBlockWithSeed(11, 1, strangerCoinbase(t), replacement),
		)

		ledger := subWallets.GetTransactions()
		require.Len(t, ledger, 2)
		require.Equal(t, uint64(10), ledger[0].BlockHeight)
		require.Equal(t, replacement.Hash, ledger[1].Hash)

		balance, err := subWallets.GetBalance(keys.spendPub)
		require.NoError(t, err)
		require.Equal(t, uint64(140), balance)

		// Key images of the orphaned outputs are gone.
		_, ok := subWallets.GetKeyImageOwner(keyImageOf(t, keys, txs[1], 0))
		require.False(t, ok)
		_, ok = subWallets.GetKeyImageOwner(keyImageOf(t, keys, txs[2], 0))
		require.False(t, ok)
		_, ok = subWallets.GetKeyImageOwner(keyImageOf(t, keys, txs[0], 0))
		require.True(t, ok)
		_, ok = subWallets.GetKeyImageOwner(keyImageOf(t, keys, replacement, 0))
		require.True(t, ok)

		// The scanner is back at the fork point, with the orphaned hashes
		// dropped from its checkpoints.
		require.Equal(t, uint64(11), scanner.getHeight())
		status := scanner.getStatus()
		require.Len(t, status.RecentBlockHashes, 2)
		require.False(t, status.HaveSeenBlock(newTestBlock(12, strangerCoinbase(t)).BlockHash))

		// The next block of the fork extends it without another rewind.
		next := newTestTransaction(t, nil, payment{&keys, 7})
		scanner.processBlock(newTestBlockWithSeed(12, 1, strangerCoinbase(t), next))

		ledger = subWallets.GetTransactions()
		require.Len(t, ledger, 3)
		require.Equal(t, replacement.Hash, ledger[1].Hash)
		require.Equal(t, next.Hash, ledger[2].Hash)
		require.Equal(t, uint64(12), scanner.getHeight())
	}
}
