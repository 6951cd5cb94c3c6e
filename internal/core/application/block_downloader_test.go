package application

import (
	"testing"
	"time"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestBlockDownloaderEnqueue(t *testing.T) {
	block := func(height uint64, seed byte) domain.RawBlock {
		b := domain.RawBlock{BlockHeight: height}
		b.BlockHash[0] = byte(height)
		b.BlockHash[1] = seed + 1
		return b
	}

	queue := newBlockQueue(10)
	status := domain.NewSynchronizationStatus()
	downloader := newBlockDownloader(
		newChainDaemon(nil, 10), queue, status,
		func() uint64 { return 0 }, time.Millisecond, time.Millisecond,
	)

	queued, ok := downloader.enqueue([]domain.RawBlock{
		block(0, 0), block(1, 0), block(2, 0),
	})
	require.True(t, ok)
	require.Equal(t, 3, queued)
	require.Equal(t, 3, queue.Len())

	// Blocks already queued are skipped.
	queued, ok = downloader.enqueue([]domain.RawBlock{block(1, 0), block(2, 0)})
	require.True(t, ok)
	require.Zero(t, queued)
	require.Equal(t, 3, queue.Len())

	// A fork at height 2 replaces the abandoned block in the checkpoints.
	queued, ok = downloader.enqueue([]domain.RawBlock{block(2, 1), block(3, 1)})
	require.True(t, ok)
	require.Equal(t, 2, queued)
	require.Equal(t, 5, queue.Len())
	require.Equal(t, uint64(3), status.GetHeight())
	require.False(t, status.HaveSeenBlock(block(2, 0).BlockHash))
	require.True(t, status.HaveSeenBlock(block(2, 1).BlockHash))

	for i := 0; i < 5; i++ {
		_, ok := queue.PopBack()
		require.True(t, ok)
	}
	require.Zero(t, queue.Len())

	queue.Stop()
	_, ok = downloader.enqueue([]domain.RawBlock{block(4, 1)})
	require.False(t, ok)
}
