package application

import (
	"context"
	"sync"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/cnwallet/walletd/pkg/cncrypto"
	"github.com/cnwallet/walletd/pkg/stats"
	log "github.com/sirupsen/logrus"
)

// transactionScanner consumes queued blocks and records the transfers that
// involve the wallet's subwallets.
type transactionScanner struct {
	subWallets *domain.SubWallets
	queue      *blockQueue

	// lock is held for the whole processing of a block so that snapshots
	// never observe a half scanned block.
	lock   *sync.Mutex
	status *domain.SynchronizationStatus
}

func newTransactionScanner(
	subWallets *domain.SubWallets,
	queue *blockQueue,
	status *domain.SynchronizationStatus,
) *transactionScanner {
	return &transactionScanner{
		subWallets: subWallets,
		queue:      queue,
		lock:       &sync.Mutex{},
		status:     status,
	}
}

// run processes blocks until the queue is stopped.
func (s *transactionScanner) run(ctx context.Context) error {
	for {
		block, ok := s.queue.PopBack()
		if !ok {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		stats.QueuedBlocks.Set(float64(s.queue.Len()))
		s.processBlock(block)
	}
}

func (s *transactionScanner) processBlock(block domain.RawBlock) {
	s.lock.Lock()
	defer s.lock.Unlock()

	// A height we already went past means the chain was reorganized: the
	// replayed block replaces whatever was recorded from that height on.
	if s.status.HasBlocks() && block.BlockHeight <= s.status.GetHeight() {
		s.status.RewindTo(block.BlockHeight)
		removed := s.subWallets.InvalidateTransactions(block.BlockHeight)
		stats.Reorgs.Inc()
		log.WithField("height", block.BlockHeight).Warnf(
			"scanner: chain reorganization detected, %d transactions invalidated",
			len(removed),
		)
	}

	txs := make([]domain.Transaction, 0)

	coinbaseTransfers, _ := s.processOutputs(
		block.CoinbaseTransaction, block.BlockHeight,
	)
	if len(coinbaseTransfers.amounts) > 0 {
		txs = append(txs, domain.Transaction{
			Transfers:   coinbaseTransfers.amounts,
			Hash:        block.CoinbaseTransaction.Hash,
			BlockHeight: block.BlockHeight,
			Timestamp:   block.BlockTimestamp,
			PaymentID:   coinbaseTransfers.paymentID,
			IsCoinbase:  true,
		})
	}

	for _, rawTx := range block.Transactions {
		tx, ok := s.processTransaction(rawTx, block)
		if ok {
			txs = append(txs, tx)
		}
	}

	for _, tx := range txs {
		s.subWallets.AddTransaction(tx)
		stats.TransactionsFound.Inc()
		log.WithFields(log.Fields{
			"hash":   tx.Hash.String(),
			"height": tx.BlockHeight,
			"amount": tx.TotalAmount(),
		}).Info("scanner: found transaction")
	}

	// Stored last: a block counts as scanned only once its transfers are in.
	s.status.StoreBlockHash(block.BlockHash, block.BlockHeight)
	stats.BlocksProcessed.Inc()
	stats.ScannerHeight.Set(float64(block.BlockHeight))
}

// processTransaction returns the ledger entry for rawTx, if it moves funds
// of any subwallet.
func (s *transactionScanner) processTransaction(
	rawTx domain.RawTransaction, block domain.RawBlock,
) (domain.Transaction, bool) {
	inputs, sumOfInputs := s.processInputs(rawTx.KeyInputs)

	outputs, ok := s.processOutputs(rawTx.RawCoinbaseTransaction, block.BlockHeight)
	if !ok {
		log.Debugf(
			"scanner: skipping transaction %s without public key",
			rawTx.Hash.String(),
		)
		return domain.Transaction{}, false
	}

	transfers := inputs
	for key, amount := range outputs.amounts {
		transfers[key] += amount
	}
	if len(transfers) == 0 {
		return domain.Transaction{}, false
	}

	return domain.Transaction{
		Transfers:   transfers,
		Hash:        rawTx.Hash,
		Fee:         transactionFee(sumOfInputs, outputs.sum),
		BlockHeight: block.BlockHeight,
		Timestamp:   block.BlockTimestamp,
		PaymentID:   outputs.paymentID,
	}, true
}

// processInputs debits the subwallets owning the spent key images. It also
// returns the total amount of the transaction inputs.
func (s *transactionScanner) processInputs(
	inputs []domain.KeyInput,
) (map[cncrypto.PublicKey]int64, uint64) {
	transfers := make(map[cncrypto.PublicKey]int64)

	var sum uint64
	for _, input := range inputs {
		sum += input.Amount
		if owner, ok := s.subWallets.GetKeyImageOwner(input.KeyImage); ok {
			transfers[owner] -= int64(input.Amount)
		}
	}
	return transfers, sum
}

type outputsResult struct {
	amounts   map[cncrypto.PublicKey]int64
	sum       uint64
	paymentID string
}

// processOutputs credits the subwallets the outputs were derived for and
// stores the matching key images. It returns false if the transaction has
// no usable public key, in which case nobody can claim it.
func (s *transactionScanner) processOutputs(
	tx domain.RawCoinbaseTransaction, blockHeight uint64,
) (outputsResult, bool) {
	res := outputsResult{amounts: make(map[cncrypto.PublicKey]int64)}
	for _, output := range tx.KeyOutputs {
		res.sum += output.Amount
	}

	extra := domain.ParseTxExtra(tx.Extra)
	if !extra.HasPublicKey {
		return res, false
	}
	res.paymentID = extra.PaymentID

	derivation, err := cncrypto.GenerateKeyDerivation(
		extra.PublicKey, s.subWallets.PrivateViewKey(),
	)
	if err != nil {
		return res, false
	}

	for i, output := range tx.KeyOutputs {
		index := uint64(i)
		spendKey, err := cncrypto.UnderivePublicKey(derivation, index, output.Key)
		if err != nil || !s.subWallets.HasSubWallet(spendKey) {
			continue
		}

		res.amounts[spendKey] += int64(output.Amount)

		if err := s.subWallets.GenerateAndStoreKeyImage(
			spendKey, derivation, index, blockHeight,
		); err != nil {
			log.WithError(err).Debugf(
				"scanner: failed to generate key image for output %d of %s",
				i, tx.Hash.String(),
			)
		}
	}
	return res, true
}

func (s *transactionScanner) getStatus() domain.SynchronizationStatus {
	s.lock.Lock()
	defer s.lock.Unlock()
	return *s.status.Clone()
}

func (s *transactionScanner) getHeight() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.status.GetHeight()
}

// withLock runs f between two blocks.
func (s *transactionScanner) withLock(f func(status *domain.SynchronizationStatus)) {
	s.lock.Lock()
	defer s.lock.Unlock()
	f(s.status)
}

// transactionFee is the difference between what the transaction spends and
// what it creates. Outputs exceeding inputs can only be observed for
// coinbase-like data, reported as a zero fee.
func transactionFee(sumOfInputs, sumOfOutputs uint64) uint64 {
	if sumOfOutputs > sumOfInputs {
		return 0
	}
	return sumOfInputs - sumOfOutputs
}
