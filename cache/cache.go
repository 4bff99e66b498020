package cache

import (
	"sync"
	"time"

	"fleet-server/entities"
)

type ReadingPoint struct {
	Reading  entities.BatteryReading
	CachedAt time.Time
}

// TelemetryCache buffers battery readings between flushes so every poll and
// heartbeat doesn't turn into an insert.
type TelemetryCache struct {
	mu             sync.RWMutex
	readings       map[string][]ReadingPoint // map[robotID][]points
	lastInserted   map[string]entities.BatteryReading
	deltaThreshold int64 // minimum battery change worth persisting
}

func NewTelemetryCache(deltaThreshold int64) *TelemetryCache {
	return &TelemetryCache{
		readings:       make(map[string][]ReadingPoint),
		lastInserted:   make(map[string]entities.BatteryReading),
		deltaThreshold: deltaThreshold,
	}
}

// AddReading adds a new battery sample to the cache
func (tc *TelemetryCache) AddReading(reading entities.BatteryReading) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	robotID := reading.RobotID
	point := ReadingPoint{
		Reading:  reading,
		CachedAt: time.Now(),
	}

	if _, exists := tc.readings[robotID]; !exists {
		tc.readings[robotID] = make([]ReadingPoint, 0)
	}

	tc.readings[robotID] = append(tc.readings[robotID], point)
}

// GetSignificantChanges returns, per robot, the readings whose battery level
// moved at least deltaThreshold from the previously kept reading. The first
// and last samples are always kept.
func (tc *TelemetryCache) GetSignificantChanges() map[string][]entities.BatteryReading {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	significantChanges := make(map[string][]entities.BatteryReading)

	for robotID, points := range tc.readings {
		if len(points) == 0 {
			continue
		}

		significant := []entities.BatteryReading{points[0].Reading}
		lastSignificant := points[0].Reading

		for i := 1; i < len(points); i++ {
			current := points[i].Reading
			if absInt64(current.BatteryLevel-lastSignificant.BatteryLevel) >= tc.deltaThreshold {
				significant = append(significant, current)
				lastSignificant = current
			}
		}

		lastPoint := points[len(points)-1].Reading
		if lastPoint != lastSignificant {
			significant = append(significant, lastPoint)
		}

		significantChanges[robotID] = significant
	}

	return significantChanges
}

// GetAllCachedReadings returns all readings currently in cache
func (tc *TelemetryCache) GetAllCachedReadings() map[string][]ReadingPoint {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	allReadings := make(map[string][]ReadingPoint)
	for robotID, points := range tc.readings {
		allReadings[robotID] = make([]ReadingPoint, len(points))
		copy(allReadings[robotID], points)
	}

	return allReadings
}

// GetCacheStats returns statistics about the current cache
func (tc *TelemetryCache) GetCacheStats() map[string]interface{} {
	tc.mu.RLock()
	defer tc.mu.RUnlock()

	totalPoints := 0
	for _, points := range tc.readings {
		totalPoints += len(points)
	}

	return map[string]interface{}{
		"total_robots":    len(tc.readings),
		"total_readings":  totalPoints,
		"delta_threshold": tc.deltaThreshold,
	}
}

// ClearCache clears the cached readings after they have been processed
func (tc *TelemetryCache) ClearCache() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	for robotID, points := range tc.readings {
		if len(points) > 0 {
			tc.lastInserted[robotID] = points[len(points)-1].Reading
		}
	}

	tc.readings = make(map[string][]ReadingPoint)
}

func absInt64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
