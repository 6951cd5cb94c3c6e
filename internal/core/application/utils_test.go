package application

import (
	"encoding/binary"
	"testing"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/cnwallet/walletd/pkg/cncrypto"
	"github.com/stretchr/testify/require"
)

type testKeys struct {
	viewPub  cncrypto.PublicKey
	viewSec  cncrypto.SecretKey
	spendPub cncrypto.PublicKey
	spendSec cncrypto.SecretKey
}

func newTestKeys(t *testing.T) testKeys {
	spendPub, spendSec, err := cncrypto.GenerateKeys()
	require.NoError(t, err)
	viewPub, viewSec, err := cncrypto.ViewKeyFromSpendKey(spendSec)
	require.NoError(t, err)
	return testKeys{viewPub, viewSec, spendPub, spendSec}
}

func newTestSubWallets(t *testing.T, keys testKeys) *domain.SubWallets {
	subWallets := domain.NewSubWallets(keys.viewSec, false)
	err := subWallets.AddSubWallet(keys.spendPub, keys.spendSec, "addr", 0, false)
	require.NoError(t, err)
	return subWallets
}

// payment describes an output to build: Amount paid to the keys, or to a
// random stranger if Keys is nil.
type payment struct {
	keys   *testKeys
	amount uint64
}

// newTestTransaction builds a transaction paying the given outputs with a
// fresh transaction key, the way a sender would.
func newTestTransaction(
	t *testing.T, inputs []domain.KeyInput, payments ...payment,
) domain.RawTransaction {
	txPub, txSec, err := cncrypto.GenerateKeys()
	require.NoError(t, err)

	outputs := make([]domain.KeyOutput, 0, len(payments))
	for i, p := range payments {
		keys := p.keys
		if keys == nil {
			stranger := newTestKeys(t)
			keys = &stranger
		}
		derivation, err := cncrypto.GenerateKeyDerivation(keys.viewPub, txSec)
		require.NoError(t, err)
		outputKey, err := cncrypto.DerivePublicKey(derivation, uint64(i), keys.spendPub)
		require.NoError(t, err)
		outputs = append(outputs, domain.KeyOutput{Key: outputKey, Amount: p.amount})
	}

	extra := append([]byte{domain.TxExtraTagPubKey}, txPub[:]...)
	return domain.RawTransaction{
		RawCoinbaseTransaction: domain.RawCoinbaseTransaction{
			KeyOutputs: outputs,
			Extra:      extra,
			Hash:       cncrypto.FastHash(extra),
		},
		KeyInputs: inputs,
	}
}

func newTestBlock(
	height uint64, coinbase domain.RawCoinbaseTransaction,
	txs ...domain.RawTransaction,
) domain.RawBlock {
	return newTestBlockWithSeed(height, 0, coinbase, txs...)
}

// newTestBlockWithSeed lets two blocks at the same height have different
// hashes.
func newTestBlockWithSeed(
	height, seed uint64, coinbase domain.RawCoinbaseTransaction,
	txs ...domain.RawTransaction,
) domain.RawBlock {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf, height)
	binary.LittleEndian.PutUint64(buf[8:], seed)

	return domain.RawBlock{
		CoinbaseTransaction: coinbase,
		Transactions:        txs,
		BlockHeight:         height,
		BlockHash:           cncrypto.FastHash(buf),
		BlockTimestamp:      domain.GenesisBlockTimestamp + height*domain.DifficultyTarget,
	}
}

// strangerCoinbase pays the block reward to someone else.
func strangerCoinbase(t *testing.T) domain.RawCoinbaseTransaction {
	return newTestTransaction(t, nil, payment{amount: 3000}).RawCoinbaseTransaction
}

func keyImageOf(
	t *testing.T, keys testKeys, tx domain.RawTransaction, index uint64,
) cncrypto.KeyImage {
	extra := domain.ParseTxExtra(tx.Extra)
	require.True(t, extra.HasPublicKey)
	derivation, err := cncrypto.GenerateKeyDerivation(extra.PublicKey, keys.viewSec)
	require.NoError(t, err)
	keyImage, err := cncrypto.DeriveKeyImage(derivation, index, keys.spendPub, keys.spendSec)
	require.NoError(t, err)
	return keyImage
}
