package models

type Indicator struct {
	ID       uint   `gorm:"primaryKey"`
	Ident    string `gorm:"uniqueIndex;size:20;not null"`
	Name     string `gorm:"size:255;not null"`
	Unit     string `gorm:"size:50"`
	Position int
	IsHidden bool
}

// IndicatorResult is one computed LCA value. Rows without an element hold
// the variant total for the phase.
type IndicatorResult struct {
	ID               uint   `gorm:"primaryKey"`
	ProjectVariantID uint   `gorm:"index;not null"`
	ElementID        *uint  `gorm:"index"`
	LifeCycleIdent   string `gorm:"size:10;not null"`
	IndicatorID      uint   `gorm:"not null"`
	Value            float64
}
