package models

import (
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusOpen       = "Open"
	StatusInProgress = "In Progress"
	StatusInReview   = "In Review"
	StatusDone       = "Done"
)

const (
	EstimateUnitHours = "h"
	EstimateUnitDays  = "d"
)

type Ticket struct {
	gorm.Model

	ProjectID   uint `gorm:"not null;index"` // Immutable after creation
	TypeID      uint `gorm:"index"`
	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:Open"`

	Assignees         datatypes.JSON `gorm:"type:jsonb"`
	EstimatedTime     float64
	EstimatedTimeUnit string `gorm:"size:1"` // "h" or "d"

	CreatedBy   uint           `gorm:"not null;index"`
	Attachments datatypes.JSON `gorm:"type:jsonb"`
}

func (t *Ticket) AssigneeIDs() []string {
	return decodeStringList(t.Assignees)
}

func (t *Ticket) HasAssignee(userID uint) bool {
	id := strconv.FormatUint(uint64(userID), 10)

	for _, assignee := range t.AssigneeIDs() {
		if assignee == id {
			return true
		}
	}

	return false
}

// ValidStatus reports whether the value is one of the known ticket statuses.
func ValidStatus(status string) bool {
	switch status {
	case StatusOpen, StatusInProgress, StatusInReview, StatusDone:
		return true
	}

	return false
}

// ValidEstimateUnit reports whether the value is a known estimate unit.
func ValidEstimateUnit(unit string) bool {
	return unit == EstimateUnitHours || unit == EstimateUnitDays
}
