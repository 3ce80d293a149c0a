package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type UserRole string
type UserStatus string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"

	// requested: registered, mail address not yet confirmed
	UserRequested UserStatus = "requested"
	UserConfirmed UserStatus = "confirmed"
	UserLocked    UserStatus = "locked"
)

type User struct {
	gorm.Model
	AuthName        string     `gorm:"uniqueIndex;size:100;not null"`
	Email           string     `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string     `gorm:"not null"`
	Role            UserRole   `gorm:"type:varchar(20);not null"`
	Status          UserStatus `gorm:"type:varchar(20);not null"`
	ConfirmationKey string     `gorm:"size:64;index"`
	Firstname       string     `gorm:"size:100"`
	Lastname        string     `gorm:"size:100"`
	Company         string     `gorm:"size:255"`
	LastLoginAt     *time.Time
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) FullName() string {
	name := strings.TrimSpace(u.Firstname + " " + u.Lastname)
	if name == "" {
		return u.AuthName
	}
	return name
}
