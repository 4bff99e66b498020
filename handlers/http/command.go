package httpHandler

import (
	"encoding/json"
	"net/http"
	"time"

	"fleet-server/entities"
	"fleet-server/usecases"
	"fleet-server/ws"

	"github.com/gin-gonic/gin"
)

type CommandHandler struct {
	wsMgr *ws.Manager
	cmdUC *usecases.CommandsUseCase
}

func NewCommandHandler(mgr *ws.Manager, uc *usecases.CommandsUseCase) *CommandHandler {
	return &CommandHandler{wsMgr: mgr, cmdUC: uc}
}

type dispatchReq struct {
	RobotID     string               `json:"robot_id"`
	Instruction entities.Instruction `json:"instruction"`
}

// POST /api/v1/commands
// An operator queues an instruction for a robot. The command lands in the
// ledger and is picked up on the robot's next idle poll; if the robot is
// connected over websocket it is also nudged immediately.
func (h *CommandHandler) Dispatch(c *gin.Context) {
	var req dispatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if req.RobotID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "robot_id required"})
		return
	}

	var cmd *entities.Command
	var err error
	switch req.Instruction.Kind {
	case entities.KindTask:
		cmd, err = h.cmdUC.Task(req.RobotID, req.Instruction.Pattern)
	case entities.KindAbort:
		cmd, err = h.cmdUC.Abort(req.RobotID, req.Instruction.Reason)
	case entities.KindIdle:
		cmd, err = h.cmdUC.Idle(req.RobotID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "only Task, Abort and Idle can be dispatched"})
		return
	}
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	view, err := cmd.View()
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "stored instruction is unreadable"})
		return
	}

	status := "queued"
	// Try to nudge the robot via WS if connected
	if h.wsMgr != nil && h.wsMgr.IsConnected(req.RobotID) {
		env := map[string]interface{}{
			"type":      "command",
			"command":   view,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		}
		b, _ := json.Marshal(env)
		if err := h.wsMgr.SendToRobot(req.RobotID, b); err == nil {
			status = "pushed"
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": status, "command": view})
}

// GET /api/v1/robots/:id/commands
// Lists a robot's incomplete commands, most recent instruction first.
func (h *CommandHandler) GetPending(c *gin.Context) {
	robotID := c.Param("id")

	cmds, err := h.cmdUC.Pending(robotID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	views := make([]entities.CommandView, 0, len(cmds))
	for i := range cmds {
		view, err := cmds[i].View()
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "stored instruction is unreadable"})
			return
		}
		views = append(views, view)
	}
	c.JSON(http.StatusOK, gin.H{"data": views, "count": len(views)})
}

type completionReq struct {
	CommandID string `json:"command_id"`
}

// POST /api/v1/command-completions
// Marks a command done. Completing an already-complete command succeeds.
func (h *CommandHandler) Complete(c *gin.Context) {
	var req completionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if req.CommandID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "command_id required"})
		return
	}
	if err := h.cmdUC.Complete(req.CommandID); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
