// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Task is a unit of work, optionally attached to an event and optionally
// assigned to a user. Both references are nullable: a task can exist on its
// own, and detaching it from an event does not delete it.
type Task struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Description  string     `gorm:"not null" json:"description"`
	Completed    bool       `gorm:"default:false" json:"completed"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	AssignedToID *uint      `gorm:"index" json:"assigned_to_id,omitempty"`
	AssignedTo   *User      `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	EventID      *uint      `gorm:"index" json:"event_id,omitempty"`
	Event        *Event     `gorm:"foreignKey:EventID" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
