package application

import (
	"context"
	"sync"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/cnwallet/walletd/internal/core/ports"
	"github.com/cnwallet/walletd/pkg/cncrypto"
	"github.com/stretchr/testify/mock"
)

// **** Daemon ****

type mockDaemon struct {
	mock.Mock
}

func (m *mockDaemon) GetWalletSyncData(
	ctx context.Context,
	blockHashCheckpoints []cncrypto.Hash,
	startTimestamp uint64,
) ([]domain.RawBlock, error) {
	args := m.Called(ctx, blockHashCheckpoints, startTimestamp)

	var res []domain.RawBlock
	if a := args.Get(0); a != nil {
		res = a.([]domain.RawBlock)
	}
	return res, args.Error(1)
}

func (m *mockDaemon) GetInfo(ctx context.Context) (*ports.DaemonInfo, error) {
	args := m.Called(ctx)

	var res *ports.DaemonInfo
	if a := args.Get(0); a != nil {
		res = a.(*ports.DaemonInfo)
	}
	return res, args.Error(1)
}

// chainDaemon serves a fixed chain honoring checkpoints like a real daemon:
// it returns the blocks after the first checkpoint it recognizes.
type chainDaemon struct {
	lock      *sync.Mutex
	chain     []domain.RawBlock
	batchSize int
	calls     int
}

func newChainDaemon(chain []domain.RawBlock, batchSize int) *chainDaemon {
	return &chainDaemon{
		lock:      &sync.Mutex{},
		chain:     chain,
		batchSize: batchSize,
	}
}

func (d *chainDaemon) GetWalletSyncData(
	_ context.Context, checkpoints []cncrypto.Hash, _ uint64,
) ([]domain.RawBlock, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.calls++

	start := 0
	for _, checkpoint := range checkpoints {
		if i := d.indexOf(checkpoint); i >= 0 {
			start = i + 1
			break
		}
	}

	end := start + d.batchSize
	if end > len(d.chain) {
		end = len(d.chain)
	}
	return append([]domain.RawBlock(nil), d.chain[start:end]...), nil
}

func (d *chainDaemon) GetInfo(context.Context) (*ports.DaemonInfo, error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	var height uint64
	if len(d.chain) > 0 {
		height = uint64(len(d.chain) - 1)
	}
	return &ports.DaemonInfo{Height: height, NetworkHeight: height}, nil
}

// replaceTail swaps the chain from height on, simulating a reorg.
func (d *chainDaemon) replaceTail(height int, blocks []domain.RawBlock) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.chain = append(d.chain[:height:height], blocks...)
}

func (d *chainDaemon) indexOf(hash cncrypto.Hash) int {
	for i, block := range d.chain {
		if block.BlockHash == hash {
			return i
		}
	}
	return -1
}
