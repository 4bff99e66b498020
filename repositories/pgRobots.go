package repositories

import (
	"time"

	"fleet-server/db"
	"fleet-server/entities"
)

type robotPgRepository struct {
	db db.Database
}

func NewRobotPgRepository(database db.Database) RobotRepository {
	return &robotPgRepository{db: database}
}

func (r *robotPgRepository) Create(robot *entities.Robot) error {
	return r.db.GetDB().Create(robot).Error
}

func (r *robotPgRepository) GetByID(id string) (*entities.Robot, error) {
	var robot entities.Robot
	err := r.db.GetDB().Where("id = ?", id).First(&robot).Error
	if err != nil {
		return nil, err
	}
	return &robot, nil
}

func (r *robotPgRepository) GetAll() ([]entities.Robot, error) {
	var robots []entities.Robot
	err := r.db.GetDB().Order("created_at DESC").Find(&robots).Error
	return robots, err
}

func (r *robotPgRepository) Update(robot *entities.Robot) error {
	robot.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return r.db.GetDB().Save(robot).Error
}

func (r *robotPgRepository) Delete(id string) error {
	return r.db.GetDB().Where("id = ?", id).Delete(&entities.Robot{}).Error
}
