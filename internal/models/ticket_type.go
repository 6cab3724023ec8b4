package models

import "gorm.io/gorm"

// TicketType is a seeded reference entity. Tickets hold its id as an opaque
// key; it is resolved for display only.
type TicketType struct {
	gorm.Model

	Name  string `gorm:"uniqueIndex;not null"`
	Icon  string
	Color string
}
