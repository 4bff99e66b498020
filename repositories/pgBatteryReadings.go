package repositories

import (
	"fleet-server/db"
	"fleet-server/entities"
)

type batteryReadingPgRepository struct {
	db db.Database
}

func NewBatteryReadingPgRepository(database db.Database) BatteryReadingRepository {
	return &batteryReadingPgRepository{db: database}
}

func (r *batteryReadingPgRepository) CreateBatch(readings []entities.BatteryReading) error {
	if len(readings) == 0 {
		return nil
	}
	return r.db.GetDB().Create(&readings).Error
}

func (r *batteryReadingPgRepository) GetByRobotID(robotID string) ([]entities.BatteryReading, error) {
	var readings []entities.BatteryReading
	err := r.db.GetDB().Where("robot_id = ?", robotID).Order("created_at DESC").Find(&readings).Error
	return readings, err
}
