// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Event is a planned event with an owned address, organizer and member
// relations, and owned tasks. Organizers and members are independent sets;
// a user may appear in both.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Date        time.Time `gorm:"not null" json:"date"`
	AddressID   *uint     `json:"-"`
	Address     *Address  `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	Organizers  []User    `gorm:"many2many:event_organizers" json:"organizers,omitempty"`
	Members     []User    `gorm:"many2many:event_members" json:"members,omitempty"`
	Tasks       []Task    `gorm:"foreignKey:EventID" json:"tasks,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Address is the location of an event, owned 1:1 by it. Deleting the event
// deletes the address.
type Address struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Street       string `json:"street"`
	City         string `json:"city"`
	ZipCode      string `json:"zip_code"`
	Country      string `json:"country"`
	LocationName string `json:"location_name"`
	Geo          Geo    `gorm:"embedded" json:"geo"`
}

// Geo is a coordinate pair value object. The zero value (0,0) stands for
// "no coordinates recorded".
type Geo struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
