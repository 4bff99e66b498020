package services

import (
	"log"
	"time"

	"fleet-server/cache"
	"fleet-server/entities"
	"fleet-server/repositories"
)

// TelemetryProcessor batches battery readings in memory and flushes the
// significant ones to the store on a fixed interval.
type TelemetryProcessor struct {
	cache    *cache.TelemetryCache
	readings repositories.BatteryReadingRepository
	interval time.Duration
}

func NewTelemetryProcessor(readings repositories.BatteryReadingRepository, deltaThreshold int64, interval time.Duration) *TelemetryProcessor {
	return &TelemetryProcessor{
		cache:    cache.NewTelemetryCache(deltaThreshold),
		readings: readings,
		interval: interval,
	}
}

func (tp *TelemetryProcessor) Start() {
	ticker := time.NewTicker(tp.interval)
	go func() {
		for range ticker.C {
			tp.ProcessCachedReadings()
		}
	}()
}

func (tp *TelemetryProcessor) ProcessCachedReadings() {
	filtered := tp.cache.GetSignificantChanges()
	var batch []entities.BatteryReading
	for _, readings := range filtered {
		batch = append(batch, readings...)
	}
	if len(batch) == 0 {
		log.Printf("no cached battery readings to process")
		return
	}
	if err := tp.readings.CreateBatch(batch); err != nil {
		log.Printf("error bulk inserting %d battery readings: %v", len(batch), err)
	} else {
		log.Printf("inserted %d battery readings", len(batch))
	}
	tp.cache.ClearCache()
}

func (tp *TelemetryProcessor) AddReading(reading entities.BatteryReading) {
	tp.cache.AddReading(reading)
}

func (tp *TelemetryProcessor) GetAllCachedReadings() map[string][]cache.ReadingPoint {
	return tp.cache.GetAllCachedReadings()
}

func (tp *TelemetryProcessor) GetCacheStats() map[string]interface{} {
	return tp.cache.GetCacheStats()
}
