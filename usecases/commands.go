package usecases

import (
	"errors"
	"fmt"
	"log"
	"time"

	"fleet-server/apierrors"
	"fleet-server/confs"
	"fleet-server/entities"
	"fleet-server/repositories"
)

// CommandsUseCase owns command issuance and the time-validity rules attached
// to ledger rows.
type CommandsUseCase struct {
	ledger repositories.CommandLedger
	cfg    *confs.Settings
}

func NewCommandsUseCase(ledger repositories.CommandLedger, cfg *confs.Settings) *CommandsUseCase {
	return &CommandsUseCase{ledger: ledger, cfg: cfg}
}

// Issue appends one command to the ledger. The request is rejected without a
// write when time_issued falls outside the issuance window or the instruction
// cannot be serialized.
func (uc *CommandsUseCase) Issue(robotID string, timeIssued, timeInstruction int64, in entities.Instruction) (*entities.Command, error) {
	if robotID == "" {
		return nil, errors.New("robot_id is required")
	}

	if diff := absInt64(time.Now().Unix() - timeIssued); diff > uc.cfg.TimeIssuedBufferSeconds {
		log.Printf("rejected command for %s: %ds outside issuance window", robotID, diff)
		return nil, apierrors.ErrOutsideIssuanceWindow
	}

	encoded, err := in.Encode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrSerialization, err)
	}

	cmd := &entities.Command{
		RobotID:         robotID,
		TimeIssued:      timeIssued,
		TimeInstruction: timeInstruction,
		Instruction:     encoded,
	}
	if err := uc.ledger.Append(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

// Abort issues an abort command timestamped now.
func (uc *CommandsUseCase) Abort(robotID string, reason entities.AbortReason) (*entities.Command, error) {
	now := time.Now().Unix()
	return uc.Issue(robotID, now, now, entities.Abort(reason))
}

// Idle issues an idle command timestamped now.
func (uc *CommandsUseCase) Idle(robotID string) (*entities.Command, error) {
	now := time.Now().Unix()
	return uc.Issue(robotID, now, now, entities.Idle())
}

// Task issues a cleaning task command timestamped now.
func (uc *CommandsUseCase) Task(robotID string, pattern entities.CleaningPattern) (*entities.Command, error) {
	now := time.Now().Unix()
	return uc.Issue(robotID, now, now, entities.Task(pattern))
}

// IsInstructionValid reports whether a command's instruction is still
// actionable. A stale instruction stays incomplete but is never handed back
// to a robot.
func (uc *CommandsUseCase) IsInstructionValid(cmd *entities.Command) bool {
	return absInt64(time.Now().Unix()-cmd.TimeInstruction) < uc.cfg.TimeInstructionBufferSeconds
}

// Complete marks a command done. Re-completing is a no-op upstream.
func (uc *CommandsUseCase) Complete(id string) error {
	if id == "" {
		return errors.New("command id is required")
	}
	return uc.ledger.Complete(id)
}

// Pending lists a robot's incomplete commands, most recent instruction first.
func (uc *CommandsUseCase) Pending(robotID string) ([]entities.Command, error) {
	if robotID == "" {
		return nil, errors.New("robot_id is required")
	}
	return uc.ledger.Incomplete(robotID)
}

func absInt64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
