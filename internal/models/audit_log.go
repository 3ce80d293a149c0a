package models

import "time"

type AuditLog struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time

	UserID uint
	User   User

	Entity   string `gorm:"size:50;not null"` // "user", "project", "access_token"
	EntityID uint
	Action   string `gorm:"size:50;not null"` // "create", "update", "delete", "confirm" ...
	Details  string `gorm:"type:text"`
}
