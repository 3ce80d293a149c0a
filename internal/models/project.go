package models

import "gorm.io/gorm"

type Project struct {
	gorm.Model
	Name        string `gorm:"size:255;not null"`
	ProjectNr   string `gorm:"size:100"`
	Description string `gorm:"type:text"` // markdown

	OwnerID uint
	Owner   User

	LifeTime        int     // years
	NetFloorSpace   float64 // NGF, m²
	GrossFloorSpace float64 // BGF, m²

	CurrentVariantID uint
	PasswordHash     string

	Variants []ProjectVariant
}

func (p Project) IsPasswordProtected() bool {
	return p.PasswordHash != ""
}

// CurrentVariant falls back to the first variant when no current one is set.
func (p Project) CurrentVariant() (ProjectVariant, bool) {
	for _, v := range p.Variants {
		if v.ID == p.CurrentVariantID {
			return v, true
		}
	}
	if len(p.Variants) > 0 {
		return p.Variants[0], true
	}
	return ProjectVariant{}, false
}

type ProjectVariant struct {
	gorm.Model
	ProjectID  uint   `gorm:"index;not null"`
	Name       string `gorm:"size:255;not null"`
	PhaseIdent string `gorm:"size:20"` // PRE, ENTWURF, AUSF ...
}

// ProjectAccessToken grants a second user access to a project. Tokens are
// issued by the owner and become effective once the invitee confirms them.
type ProjectAccessToken struct {
	gorm.Model
	ProjectID   uint `gorm:"index;not null"`
	Project     Project
	UserID      *uint `gorm:"index"` // set once the invitee confirms
	User        *User
	Email       string `gorm:"size:255;not null"`
	Token       string `gorm:"uniqueIndex;size:64;not null"`
	CanEdit     bool
	IsConfirmed bool
}
