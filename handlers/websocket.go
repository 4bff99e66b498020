package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"fleet-server/entities"
	"fleet-server/services"
	"fleet-server/usecases"
	"fleet-server/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket message envelopes
type incomingMessage struct {
	Type string `json:"type"` // heartbeat | command_ack
}

type heartbeatPayload struct {
	Type         string `json:"type"`
	RobotID      string `json:"robot_id"`
	BatteryLevel int64  `json:"battery_level"`
	Status       string `json:"status"`
}

type commandAckPayload struct {
	Type      string `json:"type"`
	CommandID string `json:"command_id"`
}

// WSHandler groups dependencies for the robot websocket channel.
type WSHandler struct {
	mgr       *ws.Manager
	robotUC   *usecases.RobotsUseCase
	cmdUC     *usecases.CommandsUseCase
	processor *services.TelemetryProcessor
}

func NewWSHandler(mgr *ws.Manager, robotUC *usecases.RobotsUseCase, cmdUC *usecases.CommandsUseCase, processor *services.TelemetryProcessor) *WSHandler {
	return &WSHandler{mgr: mgr, robotUC: robotUC, cmdUC: cmdUC, processor: processor}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// HandleRobotWS upgrades to websocket and reads messages from a robot.
// GET /ws?id=<robot_id>
func (h *WSHandler) HandleRobotWS(c *gin.Context) {
	robotID := c.Query("id")
	if robotID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing robot id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	h.mgr.Register(robotID, conn)
	log.Printf("robot connected: %s", robotID)

	defer func() {
		h.mgr.Unregister(robotID)
		log.Printf("robot disconnected: %s", robotID)
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("robot %s closed connection", robotID)
			} else {
				log.Printf("read error from %s: %v", robotID, err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		var base incomingMessage
		if err := json.Unmarshal(message, &base); err != nil {
			log.Printf("invalid json from %s: %v", robotID, err)
			continue
		}

		switch base.Type {
		case "heartbeat":
			var payload heartbeatPayload
			if err := json.Unmarshal(message, &payload); err != nil {
				log.Printf("invalid heartbeat payload from %s: %v", robotID, err)
				continue
			}
			if h.processor != nil {
				h.processor.AddReading(entities.BatteryReading{
					RobotID:      robotID,
					BatteryLevel: payload.BatteryLevel,
					Source:       "heartbeat",
					Timestamp:    time.Now().UTC().Format(time.RFC3339),
				})
			}
			if h.robotUC != nil {
				_ = h.robotUC.Touch(robotID, payload.BatteryLevel)
			}
		case "command_ack":
			var payload commandAckPayload
			if err := json.Unmarshal(message, &payload); err != nil {
				log.Printf("invalid command_ack payload from %s: %v", robotID, err)
				continue
			}
			if err := h.cmdUC.Complete(payload.CommandID); err != nil {
				log.Printf("could not complete command %s acked by %s: %v", payload.CommandID, robotID, err)
			}
		default:
			log.Printf("unknown message type from %s: %s", robotID, base.Type)
		}
	}
}

// GetConnectedRobots GET /api/v1/robots/connected
func (h *WSHandler) GetConnectedRobots(c *gin.Context) {
	ids := h.mgr.List()
	c.JSON(http.StatusOK, gin.H{"data": ids, "count": len(ids)})
}
