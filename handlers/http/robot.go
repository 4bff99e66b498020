package httpHandler

import (
	"net/http"

	"fleet-server/entities"
	"fleet-server/usecases"

	"github.com/gin-gonic/gin"
)

type RobotHandler struct {
	useCase *usecases.RobotsUseCase
}

func NewRobotHandler(useCase *usecases.RobotsUseCase) *RobotHandler {
	return &RobotHandler{
		useCase: useCase,
	}
}

// RegisterRobot handles POST /api/v1/robots
func (h *RobotHandler) RegisterRobot(c *gin.Context) {
	var robot entities.Robot

	if err := c.ShouldBindJSON(&robot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.useCase.RegisterRobot(&robot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Robot registered successfully",
		"data":    robot,
	})
}

// GetRobot handles GET /api/v1/robots/:id
func (h *RobotHandler) GetRobot(c *gin.Context) {
	id := c.Param("id")

	robot, err := h.useCase.GetRobot(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Robot not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": robot,
	})
}

// GetAllRobots handles GET /api/v1/robots
func (h *RobotHandler) GetAllRobots(c *gin.Context) {
	robots, err := h.useCase.GetAllRobots()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve robots",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  robots,
		"count": len(robots),
	})
}

// UpdateRobot handles PUT /api/v1/robots/:id
func (h *RobotHandler) UpdateRobot(c *gin.Context) {
	id := c.Param("id")

	var robot entities.Robot
	if err := c.ShouldBindJSON(&robot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	robot.ID = id

	if err := h.useCase.UpdateRobot(&robot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Robot updated successfully",
		"data":    robot,
	})
}

// DeleteRobot handles DELETE /api/v1/robots/:id
func (h *RobotHandler) DeleteRobot(c *gin.Context) {
	id := c.Param("id")

	if err := h.useCase.DeleteRobot(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Robot deleted successfully",
	})
}

// GetBatteryReadings handles GET /api/v1/robots/:id/readings
func (h *RobotHandler) GetBatteryReadings(c *gin.Context) {
	id := c.Param("id")

	readings, err := h.useCase.GetBatteryReadings(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  readings,
		"count": len(readings),
	})
}
