package models

import (
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Project struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	AuthorID    uint `gorm:"not null;index"`

	// Assignees is an ordered list of user ids. Order and duplicates are
	// preserved exactly as submitted. Related user rows are resolved by
	// application logic, not foreign keys.
	Assignees   datatypes.JSON `gorm:"type:jsonb"`
	Attachments datatypes.JSON `gorm:"type:jsonb"`
}

// AssigneeIDs decodes the stored assignee list.
func (p *Project) AssigneeIDs() []string {
	return decodeStringList(p.Assignees)
}

// HasAssignee reports whether the user appears in the assignee list.
func (p *Project) HasAssignee(userID uint) bool {
	id := strconv.FormatUint(uint64(userID), 10)

	for _, assignee := range p.AssigneeIDs() {
		if assignee == id {
			return true
		}
	}

	return false
}

// IsAuthor reports whether the user created the project. The author keeps
// management rights even when absent from the assignee list.
func (p *Project) IsAuthor(userID uint) bool {
	return p.AuthorID == userID
}

// CanAccess gates read access to the project and to every ticket under it.
func (p *Project) CanAccess(userID uint) bool {
	return p.HasAssignee(userID) || p.IsAuthor(userID)
}
