package handlers

import (
	"net/http"

	"fleet-server/services"

	"github.com/gin-gonic/gin"
)

type CacheHandler struct {
	processor *services.TelemetryProcessor
}

func NewCacheHandler(processor *services.TelemetryProcessor) *CacheHandler {
	return &CacheHandler{
		processor: processor,
	}
}

func (h *CacheHandler) ProcessCache(c *gin.Context) {
	h.processor.ProcessCachedReadings()
	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

func (h *CacheHandler) GetAllCachedReadings(c *gin.Context) {
	allReadings := h.processor.GetAllCachedReadings()

	result := make(map[string][]gin.H)
	totalPoints := 0

	for robotID, points := range allReadings {
		robotReadings := make([]gin.H, 0, len(points))
		for _, point := range points {
			robotReadings = append(robotReadings, gin.H{
				"robot_id":      point.Reading.RobotID,
				"battery_level": point.Reading.BatteryLevel,
				"source":        point.Reading.Source,
				"timestamp":     point.Reading.Timestamp,
				"cached_at":     point.CachedAt.Format("2006-01-02T15:04:05Z07:00"),
			})
			totalPoints++
		}
		result[robotID] = robotReadings
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"total_robots":   len(result),
		"total_readings": totalPoints,
		"cached_data":    result,
	})
}

func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	stats := h.processor.GetCacheStats()
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"stats":  stats,
	})
}
