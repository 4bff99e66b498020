package entities

// PollRequest is a robot's self-report: what it believes it is doing and how
// much battery it has left. It is never persisted.
type PollRequest struct {
	RobotID      string      `json:"robot_id"`
	Instruction  Instruction `json:"instruction"`
	BatteryLevel int64       `json:"battery_level"`
}
