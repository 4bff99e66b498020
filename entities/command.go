package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Command is one row of the command ledger. Rows are append-mostly: after
// creation the only permitted mutation is Completed flipping false -> true.
type Command struct {
	ID              string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RobotID         string         `json:"robot_id" gorm:"index;type:varchar(64)"`
	TimeIssued      int64          `json:"time_issued" gorm:"index"`      // epoch seconds
	TimeInstruction int64          `json:"time_instruction" gorm:"index"` // epoch seconds
	Instruction     string         `json:"-" gorm:"type:text"`            // tagged JSON text, see Instruction
	Completed       bool           `json:"completed"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

func (c *Command) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Decoded parses the stored instruction text back into its tagged form.
func (c *Command) Decoded() (Instruction, error) {
	return DecodeInstruction(c.Instruction)
}

// CommandView is the wire shape of a ledger row, with the instruction in its
// tagged form rather than the stored text.
type CommandView struct {
	ID              string      `json:"id"`
	RobotID         string      `json:"robot_id"`
	TimeIssued      int64       `json:"time_issued"`
	TimeInstruction int64       `json:"time_instruction"`
	Instruction     Instruction `json:"instruction"`
	Completed       bool        `json:"completed"`
}

func (c *Command) View() (CommandView, error) {
	in, err := c.Decoded()
	if err != nil {
		return CommandView{}, err
	}
	return CommandView{
		ID:              c.ID,
		RobotID:         c.RobotID,
		TimeIssued:      c.TimeIssued,
		TimeInstruction: c.TimeInstruction,
		Instruction:     in,
		Completed:       c.Completed,
	}, nil
}
