package models

import "gorm.io/gorm"

// ElementType is a DIN 276 cost group, e.g. 330 "Außenwände".
type ElementType struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"uniqueIndex;size:10;not null"`
	Name string `gorm:"size:255;not null"`
}

type Element struct {
	gorm.Model
	ProjectVariantID uint   `gorm:"index;not null"`
	ElementTypeCode  string `gorm:"size:10;not null"`
	Name             string `gorm:"size:255;not null"`
	Quantity         float64
	RefUnit          string `gorm:"size:10"`

	Components []ElementComponent
}

type ProcessConfig struct {
	gorm.Model
	Name     string `gorm:"size:255;not null"`
	Category string `gorm:"size:255"`
	RefUnit  string `gorm:"size:10"`
}

type ElementComponent struct {
	gorm.Model
	ElementID       uint `gorm:"index;not null"`
	ProcessConfigID uint
	ProcessConfig   ProcessConfig
	Quantity        float64
	LifeTime        int // years
	IsLayer         bool
	LayerPosition   int
}
