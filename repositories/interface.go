package repositories

import "fleet-server/entities"

// CommandLedger is the durable command log. Rows are appended and later
// marked complete; nothing is ever deleted or rewritten.
type CommandLedger interface {
	// Append persists one row and assigns its identity.
	Append(cmd *entities.Command) error
	// Latest returns the row with the greatest time_issued for the robot,
	// or apierrors.ErrNotFound when the robot has no history.
	Latest(robotID string) (*entities.Command, error)
	// Incomplete returns the robot's incomplete rows, time_instruction
	// descending.
	Incomplete(robotID string) ([]entities.Command, error)
	// Complete marks a row complete. Completing an already-complete row is
	// not an error.
	Complete(id string) error
}

type RobotRepository interface {
	Create(robot *entities.Robot) error
	GetByID(id string) (*entities.Robot, error)
	GetAll() ([]entities.Robot, error)
	Update(robot *entities.Robot) error
	Delete(id string) error
}

type BatteryReadingRepository interface {
	CreateBatch(readings []entities.BatteryReading) error
	GetByRobotID(robotID string) ([]entities.BatteryReading, error)
}
