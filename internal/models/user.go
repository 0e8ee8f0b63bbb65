// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role names carried by users. Role checks anywhere in the application must
// go through User.IsAdmin / Principal.IsAdmin rather than comparing strings.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// User represents a registered account in the Planora application.
type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Username            string     `gorm:"unique;not null" json:"username"`
	Email               string     `gorm:"unique" json:"email"`
	Password            string     `gorm:"not null" json:"-"`
	Enabled             bool       `gorm:"default:true" json:"enabled"`
	Locked              bool       `gorm:"default:false" json:"locked"`
	FailedLoginAttempts int        `json:"-"`
	LastLogin           *time.Time `json:"last_login,omitempty"`
	Avatar              string     `json:"avatar"`
	Roles               []Role     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"roles,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Role is a single authority string granted to a user.
type Role struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	UserID uint   `gorm:"index;uniqueIndex:idx_user_role;not null" json:"-"`
	Name   string `gorm:"uniqueIndex:idx_user_role;not null" json:"name"`
}

// RoleNames returns the user's authorities as a plain string slice.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// HasRole reports whether the user carries the named authority.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user carries the admin authority.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}
