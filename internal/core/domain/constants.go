package domain

const (
	// BlockCheckpointInterval is the distance in blocks between two sparse
	// checkpoints kept for deep reorg recovery.
	BlockCheckpointInterval = 5000
	// MaxRecentBlockHashes is the size of the window of most recent block
	// hashes kept for shallow reorg recovery.
	MaxRecentBlockHashes = 100

	// DifficultyTarget is the target block time in seconds.
	DifficultyTarget = 30
	// GenesisBlockTimestamp is the timestamp of the first block of the chain.
	GenesisBlockTimestamp = 1512800692
	// BlockFutureTimeLimit is the largest amount of seconds a block timestamp
	// can be ahead of the network time.
	BlockFutureTimeLimit = 60 * 60 * 2
)

const (
	// TxExtraTagPadding marks zero padding in a transaction extra.
	TxExtraTagPadding byte = 0x00
	// TxExtraTagPubKey precedes the 32 byte transaction public key.
	TxExtraTagPubKey byte = 0x01
	// TxExtraTagNonce precedes a length prefixed nonce.
	TxExtraTagNonce byte = 0x02
	// TxExtraTagMergeMining precedes a length prefixed merge mining tag.
	TxExtraTagMergeMining byte = 0x03

	// TxExtraNoncePaymentID is the first nonce byte of a payment id nonce.
	TxExtraNoncePaymentID byte = 0x00
)
