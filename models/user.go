package models

import (
	"gorm.io/gorm"
)

// User represents an account that can sign in and work prospects
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Profile information
	Name string `gorm:"not null" json:"name"`

	// Role controls who receives qualified-lead notifications
	Role string `gorm:"default:'agent'" json:"role"` // admin, agent

	// Account status. No column default: gorm omits zero-valued fields on
	// insert, and a default of true would silently reactivate users created
	// with IsActive false. Register sets the flag explicitly.
	IsActive bool `gorm:"not null" json:"is_active"`

	// Relations
	Campaigns         []Campaign   `gorm:"foreignKey:CreatedByID" json:"campaigns,omitempty"`
	AssignedProspects []Prospect   `gorm:"foreignKey:AssignedToID" json:"assigned_prospects,omitempty"`
	DataSources       []DataSource `gorm:"foreignKey:CreatedByID" json:"data_sources,omitempty"`
}

// IsAdmin reports whether the user should receive system notifications
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
