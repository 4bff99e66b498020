package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Robot is a fleet registry entry. ID is the robot serial number when the
// robot registers itself; a uuid is assigned otherwise.
type Robot struct {
	ID           string         `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name         string         `json:"name"`
	Model        string         `json:"model"`
	Status       string         `json:"status"` // idle, cleaning, aborted, offline
	BatteryLevel int64          `json:"battery_level"`
	LastSeen     string         `json:"last_seen"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (r *Robot) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	r.UpdatedAt = r.CreatedAt
	if r.Status == "" {
		r.Status = "idle"
	}
	return
}
