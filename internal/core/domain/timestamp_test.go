package domain_test

import (
	"testing"
	"time"

	"github.com/cnwallet/walletd/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestScanHeightToTimestamp(t *testing.T) {
	now := time.Unix(1700000000, 0)
	adjusted := uint64(1700000000 - domain.BlockFutureTimeLimit)

	tests := []struct {
		name     string
		height   uint64
		expected uint64
	}{
		{"genesis", 0, 0},
		{"first block", 1, domain.GenesisBlockTimestamp + domain.DifficultyTarget},
		{"past height", 1000000, domain.GenesisBlockTimestamp + 1000000*domain.DifficultyTarget},
		{"future height", 100000000, adjusted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(
				t, tt.expected, domain.ScanHeightToTimestamp(tt.height, now),
			)
		})
	}

	require.Equal(t, adjusted, domain.CurrentTimestampAdjusted(now))
}
