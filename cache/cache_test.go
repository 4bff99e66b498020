package cache_test

import (
	"testing"

	"fleet-server/cache"
	"fleet-server/entities"

	"github.com/stretchr/testify/require"
)

func reading(robotID string, level int64) entities.BatteryReading {
	return entities.BatteryReading{RobotID: robotID, BatteryLevel: level, Source: "poll"}
}

func TestSignificantChangesFiltersSmallDeltas(t *testing.T) {
	tc := cache.NewTelemetryCache(2)
	for _, level := range []int64{100, 100, 97, 96} {
		tc.AddReading(reading("R1", level))
	}

	changes := tc.GetSignificantChanges()
	require.Len(t, changes, 1)

	levels := make([]int64, 0)
	for _, r := range changes["R1"] {
		levels = append(levels, r.BatteryLevel)
	}
	// First kept, 97 is a significant drop, last always kept
	require.Equal(t, []int64{100, 97, 96}, levels)
}

func TestClearCacheEmptiesReadings(t *testing.T) {
	tc := cache.NewTelemetryCache(2)
	tc.AddReading(reading("R1", 80))
	tc.AddReading(reading("R2", 60))

	require.Len(t, tc.GetAllCachedReadings(), 2)
	tc.ClearCache()
	require.Len(t, tc.GetAllCachedReadings(), 0)

	stats := tc.GetCacheStats()
	require.Equal(t, 0, stats["total_readings"])
}
