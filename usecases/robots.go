package usecases

import (
	"errors"
	"time"

	"fleet-server/entities"
	"fleet-server/repositories"
)

// RobotsUseCase maintains the fleet registry. Registration is optional for
// polling; the ledger is keyed by robot id alone.
type RobotsUseCase struct {
	RobotRepo   repositories.RobotRepository
	ReadingRepo repositories.BatteryReadingRepository
}

func NewRobotsUseCase(robotRepo repositories.RobotRepository, readingRepo repositories.BatteryReadingRepository) *RobotsUseCase {
	return &RobotsUseCase{
		RobotRepo:   robotRepo,
		ReadingRepo: readingRepo,
	}
}

// RegisterRobot creates a new registry entry.
func (uc *RobotsUseCase) RegisterRobot(robot *entities.Robot) error {
	if robot.Name == "" {
		return errors.New("robot name is required")
	}
	return uc.RobotRepo.Create(robot)
}

// GetRobot retrieves a robot by ID
func (uc *RobotsUseCase) GetRobot(id string) (*entities.Robot, error) {
	if id == "" {
		return nil, errors.New("robot id is required")
	}
	return uc.RobotRepo.GetByID(id)
}

// GetAllRobots retrieves all robots
func (uc *RobotsUseCase) GetAllRobots() ([]entities.Robot, error) {
	return uc.RobotRepo.GetAll()
}

// UpdateRobot updates a robot
func (uc *RobotsUseCase) UpdateRobot(robot *entities.Robot) error {
	if robot.ID == "" {
		return errors.New("robot id is required")
	}

	existing, err := uc.RobotRepo.GetByID(robot.ID)
	if err != nil {
		return errors.New("robot not found")
	}

	// Update only provided fields
	if robot.Name != "" {
		existing.Name = robot.Name
	}
	if robot.Model != "" {
		existing.Model = robot.Model
	}
	if robot.Status != "" {
		existing.Status = robot.Status
	}

	return uc.RobotRepo.Update(existing)
}

// DeleteRobot deletes a robot
func (uc *RobotsUseCase) DeleteRobot(id string) error {
	if id == "" {
		return errors.New("robot id is required")
	}

	_, err := uc.RobotRepo.GetByID(id)
	if err != nil {
		return errors.New("robot not found")
	}

	return uc.RobotRepo.Delete(id)
}

// Touch records that a robot was heard from, updating its last-seen time and
// battery level. Unregistered robots are skipped silently.
func (uc *RobotsUseCase) Touch(id string, batteryLevel int64) error {
	robot, err := uc.RobotRepo.GetByID(id)
	if err != nil {
		return nil
	}
	robot.LastSeen = time.Now().UTC().Format(time.RFC3339)
	robot.BatteryLevel = batteryLevel
	return uc.RobotRepo.Update(robot)
}

// GetBatteryReadings retrieves the persisted battery history of a robot.
func (uc *RobotsUseCase) GetBatteryReadings(robotID string) ([]entities.BatteryReading, error) {
	if robotID == "" {
		return nil, errors.New("robot_id is required")
	}
	return uc.ReadingRepo.GetByRobotID(robotID)
}
