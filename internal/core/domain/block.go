package domain

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cnwallet/walletd/pkg/cncrypto"
)

// KeyOutput is an output paying Amount to the one-time key Key.
type KeyOutput struct {
	Key    cncrypto.PublicKey
	Amount uint64
}

// KeyInput spends the output identified by KeyImage.
type KeyInput struct {
	KeyImage cncrypto.KeyImage
	Amount   uint64
}

// RawCoinbaseTransaction holds the fields of a miner transaction needed for
// scanning.
type RawCoinbaseTransaction struct {
	KeyOutputs []KeyOutput
	Extra      []byte
	Hash       cncrypto.Hash
}

// RawTransaction is a coinbase transaction plus the key inputs it spends.
type RawTransaction struct {
	RawCoinbaseTransaction
	KeyInputs []KeyInput
}

// RawBlock is a block trimmed down to what the scanner needs.
type RawBlock struct {
	CoinbaseTransaction RawCoinbaseTransaction
	Transactions        []RawTransaction
	BlockHeight         uint64
	BlockHash           cncrypto.Hash
	BlockTimestamp      uint64
}

// TxExtra is the parsed content of a transaction extra field.
type TxExtra struct {
	PublicKey    cncrypto.PublicKey
	HasPublicKey bool
	PaymentID    string
}

// ParseTxExtra walks the tagged fields of extra. Parsing stops at the first
// unknown or truncated field, keeping what was found so far.
func ParseTxExtra(extra []byte) TxExtra {
	var parsed TxExtra

	for i := 0; i < len(extra); {
		switch extra[i] {
		case TxExtraTagPadding:
			i++

		case TxExtraTagPubKey:
			if len(extra)-i-1 < cncrypto.KeySize {
				return parsed
			}
			if !parsed.HasPublicKey {
				copy(parsed.PublicKey[:], extra[i+1:i+1+cncrypto.KeySize])
				parsed.HasPublicKey = true
			}
			i += 1 + cncrypto.KeySize

		case TxExtraTagNonce, TxExtraTagMergeMining:
			size, n := binary.Uvarint(extra[i+1:])
			if n <= 0 || uint64(len(extra)-i-1-n) < size {
				return parsed
			}
			start := i + 1 + n
			field := extra[start : start+int(size)]
			if extra[i] == TxExtraTagNonce && len(field) == 1+cncrypto.KeySize &&
				field[0] == TxExtraNoncePaymentID && parsed.PaymentID == "" {
				parsed.PaymentID = hex.EncodeToString(field[1:])
			}
			i = start + int(size)

		default:
			return parsed
		}
	}

	return parsed
}
