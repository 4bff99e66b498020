package repositories

import (
	"errors"
	"fmt"

	"fleet-server/apierrors"
	"fleet-server/db"
	"fleet-server/entities"

	"gorm.io/gorm"
)

type commandPgLedger struct {
	db db.Database
}

func NewCommandPgLedger(database db.Database) CommandLedger {
	return &commandPgLedger{db: database}
}

func (r *commandPgLedger) Append(cmd *entities.Command) error {
	if err := r.db.GetDB().Create(cmd).Error; err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrPersistence, err)
	}
	return nil
}

func (r *commandPgLedger) Latest(robotID string) (*entities.Command, error) {
	var cmd entities.Command
	err := r.db.GetDB().
		Where("robot_id = ?", robotID).
		Order("time_issued DESC").
		First(&cmd).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrPersistence, err)
	}
	return &cmd, nil
}

func (r *commandPgLedger) Incomplete(robotID string) ([]entities.Command, error) {
	var cmds []entities.Command
	err := r.db.GetDB().
		Where("robot_id = ? AND completed = ?", robotID, false).
		Order("time_instruction DESC").
		Find(&cmds).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apierrors.ErrPersistence, err)
	}
	return cmds, nil
}

func (r *commandPgLedger) Complete(id string) error {
	tx := r.db.GetDB().
		Model(&entities.Command{}).
		Where("id = ?", id).
		Update("completed", true)
	if tx.Error != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrPersistence, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return apierrors.ErrNotFound
	}
	return nil
}
