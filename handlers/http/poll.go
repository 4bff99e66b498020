package httpHandler

import (
	"net/http"
	"time"

	"fleet-server/entities"
	"fleet-server/services"
	"fleet-server/usecases"

	"github.com/gin-gonic/gin"
)

type PollHandler struct {
	pollUC    *usecases.PollUseCase
	robotUC   *usecases.RobotsUseCase
	processor *services.TelemetryProcessor
}

func NewPollHandler(pollUC *usecases.PollUseCase, robotUC *usecases.RobotsUseCase, processor *services.TelemetryProcessor) *PollHandler {
	return &PollHandler{pollUC: pollUC, robotUC: robotUC, processor: processor}
}

// POST /api/v1/poll
// A robot reports its believed instruction and battery level and receives the
// command it should be executing.
func (h *PollHandler) Poll(c *gin.Context) {
	var req entities.PollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if req.RobotID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "robot_id required"})
		return
	}

	cmd, err := h.pollUC.Resolve(&req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	// Registry and telemetry updates ride along best effort; the resolved
	// command is the response either way.
	if h.robotUC != nil {
		_ = h.robotUC.Touch(req.RobotID, req.BatteryLevel)
	}
	if h.processor != nil {
		h.processor.AddReading(entities.BatteryReading{
			RobotID:      req.RobotID,
			BatteryLevel: req.BatteryLevel,
			Source:       "poll",
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
		})
	}

	view, err := cmd.View()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "stored instruction is unreadable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}
