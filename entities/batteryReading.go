package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BatteryReading is one battery telemetry sample, taken from a poll or a
// websocket heartbeat.
type BatteryReading struct {
	ID           string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RobotID      string         `gorm:"index" json:"robot_id"`
	BatteryLevel int64          `json:"battery_level"`
	Source       string         `json:"source"` // poll, heartbeat
	Timestamp    string         `json:"timestamp"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (b *BatteryReading) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	b.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	b.UpdatedAt = b.CreatedAt
	return
}
