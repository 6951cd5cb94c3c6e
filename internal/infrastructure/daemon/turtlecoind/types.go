package turtlecoind

import (
	"encoding/hex"
	"fmt"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/cnwallet/walletd/pkg/cncrypto"
)

const statusOK = "OK"

type walletSyncDataRequest struct {
	BlockHashCheckpoints []string `json:"blockHashCheckpoints"`
	StartHeight          uint64   `json:"startHeight"`
	StartTimestamp       uint64   `json:"startTimestamp"`
	BlockCount           uint64   `json:"blockCount,omitempty"`
}

type walletSyncDataResponse struct {
	Items  []walletBlockInfo `json:"items"`
	Status string            `json:"status"`
}

type infoResponse struct {
	Height                   uint64 `json:"height"`
	NetworkHeight            uint64 `json:"network_height"`
	IncomingConnectionsCount uint64 `json:"incoming_connections_count"`
	OutgoingConnectionsCount uint64 `json:"outgoing_connections_count"`
	Synced                   bool   `json:"synced"`
	Status                   string `json:"status"`
}

type walletBlockInfo struct {
	BlockHash      string        `json:"blockHash"`
	BlockHeight    uint64        `json:"blockHeight"`
	BlockTimestamp uint64        `json:"blockTimestamp"`
	CoinbaseTx     coinbaseTx    `json:"coinbaseTX"`
	Transactions   []transaction `json:"transactions"`
}

type coinbaseTx struct {
	Outputs []keyOutput `json:"outputs"`
	Extra   string      `json:"extra"`
	Hash    string      `json:"hash"`
}

type transaction struct {
	coinbaseTx
	Inputs []keyInput `json:"inputs"`
}

type keyOutput struct {
	Key    string `json:"key"`
	Amount uint64 `json:"amount"`
}

type keyInput struct {
	Amount     uint64   `json:"amount"`
	KeyOffsets []uint64 `json:"key_offsets"`
	KeyImage   string   `json:"k_image"`
}

func (b walletBlockInfo) toDomain() (domain.RawBlock, error) {
	hash, err := cncrypto.ParseHash(b.BlockHash)
	if err != nil {
		return domain.RawBlock{}, malformed("block hash", err)
	}
	coinbase, err := b.CoinbaseTx.toDomain()
	if err != nil {
		return domain.RawBlock{}, err
	}

	txs := make([]domain.RawTransaction, 0, len(b.Transactions))
	for _, t := range b.Transactions {
		tx, err := t.toDomain()
		if err != nil {
			return domain.RawBlock{}, err
		}
		txs = append(txs, tx)
	}

	return domain.RawBlock{
		CoinbaseTransaction: coinbase,
		Transactions:        txs,
		BlockHeight:         b.BlockHeight,
		BlockHash:           hash,
		BlockTimestamp:      b.BlockTimestamp,
	}, nil
}

func (t coinbaseTx) toDomain() (domain.RawCoinbaseTransaction, error) {
	hash, err := cncrypto.ParseHash(t.Hash)
	if err != nil {
		return domain.RawCoinbaseTransaction{}, malformed("transaction hash", err)
	}
	extra, err := hex.DecodeString(t.Extra)
	if err != nil {
		return domain.RawCoinbaseTransaction{}, malformed("extra", err)
	}

	outputs := make([]domain.KeyOutput, 0, len(t.Outputs))
	for _, o := range t.Outputs {
		key, err := cncrypto.ParsePublicKey(o.Key)
		if err != nil {
			return domain.RawCoinbaseTransaction{}, malformed("output key", err)
		}
		outputs = append(outputs, domain.KeyOutput{Key: key, Amount: o.Amount})
	}

	return domain.RawCoinbaseTransaction{
		KeyOutputs: outputs,
		Extra:      extra,
		Hash:       hash,
	}, nil
}

func (t transaction) toDomain() (domain.RawTransaction, error) {
	coinbase, err := t.coinbaseTx.toDomain()
	if err != nil {
		return domain.RawTransaction{}, err
	}

	inputs := make([]domain.KeyInput, 0, len(t.Inputs))
	for _, i := range t.Inputs {
		keyImage, err := cncrypto.ParseKeyImage(i.KeyImage)
		if err != nil {
			return domain.RawTransaction{}, malformed("key image", err)
		}
		inputs = append(inputs, domain.KeyInput{KeyImage: keyImage, Amount: i.Amount})
	}

	return domain.RawTransaction{
		RawCoinbaseTransaction: coinbase,
		KeyInputs:              inputs,
	}, nil
}

func malformed(field string, err error) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedResponse, field, err)
}
