package domain

import "time"

// CurrentTimestampAdjusted returns the earliest timestamp that still
// includes every block that could have been mined up to now.
func CurrentTimestampAdjusted(now time.Time) uint64 {
	ts := now.Unix() - BlockFutureTimeLimit
	if ts < 0 {
		return 0
	}
	return uint64(ts)
}

// ScanHeightToTimestamp conservatively converts a block height into the
// timestamp to start syncing from. Height zero means from genesis.
func ScanHeightToTimestamp(scanHeight uint64, now time.Time) uint64 {
	if scanHeight == 0 {
		return 0
	}

	timestamp := GenesisBlockTimestamp + scanHeight*DifficultyTarget

	// The daemon rejects timestamps in the future.
	if adjusted := CurrentTimestampAdjusted(now); timestamp >= adjusted {
		return adjusted
	}
	return timestamp
}
