package domain

import "github.com/cnwallet/walletd/pkg/cncrypto"

// BlockHashAtHeight is a stored block hash with the height it was seen at.
type BlockHashAtHeight struct {
	Hash   cncrypto.Hash
	Height uint64
}

// SynchronizationStatus tracks the blocks seen by one stage of the sync
// pipeline. It is not safe for concurrent use: the downloader and the
// scanner each own a distinct instance.
type SynchronizationStatus struct {
	// BlockCheckpoints holds a hash every BlockCheckpointInterval blocks,
	// newest first. It is only pruned by a rewind.
	BlockCheckpoints []BlockHashAtHeight
	// RecentBlockHashes holds the last MaxRecentBlockHashes hashes, newest
	// first.
	RecentBlockHashes []BlockHashAtHeight
	// LastKnownBlockHeight is the height of the last block stored.
	LastKnownBlockHeight uint64
}

// NewSynchronizationStatus returns an empty status.
func NewSynchronizationStatus() *SynchronizationStatus {
	return &SynchronizationStatus{}
}

// GetBlockHashCheckpoints returns the hashes a daemon should use to locate
// the resume point: the recent hashes followed by the sparse checkpoints.
func (s *SynchronizationStatus) GetBlockHashCheckpoints() []cncrypto.Hash {
	out := make(
		[]cncrypto.Hash, 0, len(s.RecentBlockHashes)+len(s.BlockCheckpoints),
	)
	for _, b := range s.RecentBlockHashes {
		out = append(out, b.Hash)
	}
	for _, b := range s.BlockCheckpoints {
		out = append(out, b.Hash)
	}
	return out
}

// StoreBlockHash records a processed block. A height not above the last
// stored one means the chain forked there: the hashes of the abandoned
// branch are dropped first so they are never sent as checkpoints again.
func (s *SynchronizationStatus) StoreBlockHash(
	hash cncrypto.Hash, height uint64,
) {
	if s.HasBlocks() && height <= s.LastKnownBlockHeight {
		s.RewindTo(height)
	}

	entry := BlockHashAtHeight{hash, height}
	s.RecentBlockHashes = append([]BlockHashAtHeight{entry}, s.RecentBlockHashes...)
	if len(s.RecentBlockHashes) > MaxRecentBlockHashes {
		s.RecentBlockHashes = s.RecentBlockHashes[:MaxRecentBlockHashes]
	}

	if height%BlockCheckpointInterval == 0 {
		s.BlockCheckpoints = append([]BlockHashAtHeight{entry}, s.BlockCheckpoints...)
	}

	s.LastKnownBlockHeight = height
}

// RewindTo forgets every block at or above height.
func (s *SynchronizationStatus) RewindTo(height uint64) {
	s.RecentBlockHashes = below(s.RecentBlockHashes, height)
	s.BlockCheckpoints = below(s.BlockCheckpoints, height)

	s.LastKnownBlockHeight = 0
	if height > 0 {
		s.LastKnownBlockHeight = height - 1
	}
}

// HasBlocks returns whether any block was stored since the last full rewind.
func (s *SynchronizationStatus) HasBlocks() bool {
	return len(s.RecentBlockHashes) > 0 || len(s.BlockCheckpoints) > 0
}

// HaveSeenBlock returns whether hash is among the recent block hashes.
func (s *SynchronizationStatus) HaveSeenBlock(hash cncrypto.Hash) bool {
	for _, b := range s.RecentBlockHashes {
		if b.Hash == hash {
			return true
		}
	}
	return false
}

// GetHeight returns the height of the last block stored.
func (s *SynchronizationStatus) GetHeight() uint64 {
	return s.LastKnownBlockHeight
}

// Clone returns a deep copy of the status.
func (s *SynchronizationStatus) Clone() *SynchronizationStatus {
	return &SynchronizationStatus{
		BlockCheckpoints:     append([]BlockHashAtHeight(nil), s.BlockCheckpoints...),
		RecentBlockHashes:    append([]BlockHashAtHeight(nil), s.RecentBlockHashes...),
		LastKnownBlockHeight: s.LastKnownBlockHeight,
	}
}

func below(hashes []BlockHashAtHeight, height uint64) []BlockHashAtHeight {
	out := make([]BlockHashAtHeight, 0, len(hashes))
	for _, b := range hashes {
		if b.Height < height {
			out = append(out, b)
		}
	}
	return out
}
