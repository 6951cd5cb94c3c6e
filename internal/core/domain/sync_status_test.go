package domain_test

import (
	"testing"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/cnwallet/walletd/pkg/cncrypto"
	"github.com/stretchr/testify/require"
)

func TestSynchronizationStatus(t *testing.T) {
	t.Run("StoreBlockHash", testStoreBlockHash())
	t.Run("Checkpoints", testBlockHashCheckpoints())
	t.Run("Clone", testCloneStatus())
	t.Run("Fork", testStoreBlockHashOnFork())
	t.Run("RewindTo", testRewindTo())
}

func testStoreBlockHash() func(t *testing.T) {
	return func(t *testing.T) {
		status := domain.NewSynchronizationStatus()
		hash := blockHash(7)

		require.False(t, status.HaveSeenBlock(hash))
		status.StoreBlockHash(hash, 7)
		require.True(t, status.HaveSeenBlock(hash))
		require.Equal(t, uint64(7), status.GetHeight())
		require.True(t, status.HasBlocks())
	}
}

func testStoreBlockHashOnFork() func(t *testing.T) {
	return func(t *testing.T) {
		status := domain.NewSynchronizationStatus()
		for height := uint64(0); height <= 12; height++ {
			status.StoreBlockHash(blockHash(height), height)
		}

		// A different block at height 11 replaces the old 11 and 12.
		fork := cncrypto.FastHash([]byte("fork"))
		status.StoreBlockHash(fork, 11)

		require.Equal(t, uint64(11), status.GetHeight())
		require.True(t, status.HaveSeenBlock(fork))
		require.False(t, status.HaveSeenBlock(blockHash(11)))
		require.False(t, status.HaveSeenBlock(blockHash(12)))

		checkpoints := status.GetBlockHashCheckpoints()
		require.Equal(t, fork, checkpoints[0])
		require.Equal(t, blockHash(10), checkpoints[1])
		require.NotContains(t, checkpoints, blockHash(12))
	}
}

func testRewindTo() func(t *testing.T) {
	return func(t *testing.T) {
		status := domain.NewSynchronizationStatus()
		for height := uint64(4990); height <= 5010; height++ {
			status.StoreBlockHash(blockHash(height), height)
		}

		status.RewindTo(5000)
		require.Equal(t, uint64(4999), status.GetHeight())
		require.Len(t, status.RecentBlockHashes, 10)
		require.Empty(t, status.BlockCheckpoints)
		require.Equal(t, blockHash(4999), status.GetBlockHashCheckpoints()[0])

		status.RewindTo(0)
		require.False(t, status.HasBlocks())
		require.Zero(t, status.GetHeight())
		require.Empty(t, status.GetBlockHashCheckpoints())
	}
}

func testBlockHashCheckpoints() func(t *testing.T) {
	return func(t *testing.T) {
		status := domain.NewSynchronizationStatus()

		for height := uint64(0); height <= 10050; height++ {
			status.StoreBlockHash(blockHash(height), height)
			require.LessOrEqual(
				t, len(status.RecentBlockHashes), domain.MaxRecentBlockHashes,
			)
		}

		checkpoints := status.GetBlockHashCheckpoints()
		require.Len(t, checkpoints, domain.MaxRecentBlockHashes+3)

		// Recent hashes come first, newest first.
		for i := 0; i < domain.MaxRecentBlockHashes; i++ {
			require.Equal(t, blockHash(10050-uint64(i)), checkpoints[i])
		}
		// Then the sparse checkpoints, newest first.
		require.Equal(t, []cncrypto.Hash{
			blockHash(10000), blockHash(5000), blockHash(0),
		}, checkpoints[domain.MaxRecentBlockHashes:])

		// Evicted hashes are no longer considered seen.
		require.False(t, status.HaveSeenBlock(blockHash(10050-domain.MaxRecentBlockHashes)))
		require.Equal(t, uint64(10050), status.GetHeight())
	}
}

func testCloneStatus() func(t *testing.T) {
	return func(t *testing.T) {
		status := domain.NewSynchronizationStatus()
		status.StoreBlockHash(blockHash(5000), 5000)

		clone := status.Clone()
		clone.StoreBlockHash(blockHash(5001), 5001)

		require.Equal(t, uint64(5000), status.GetHeight())
		require.False(t, status.HaveSeenBlock(blockHash(5001)))
		require.Len(t, status.GetBlockHashCheckpoints(), 2)
		require.Equal(t, uint64(5001), clone.GetHeight())
	}
}

func blockHash(height uint64) cncrypto.Hash {
	return cncrypto.FastHash([]byte{
		byte(height), byte(height >> 8), byte(height >> 16), byte(height >> 24),
	})
}
