package database

import (
	"elca-web/internal/logging"
	"elca-web/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultIndicators are the EN 15804 indicators shown in reports.
var DefaultIndicators = []models.Indicator{
	{Ident: "gwp", Name: "Global warming potential", Unit: "kg CO2-Äqv.", Position: 1},
	{Ident: "odp", Name: "Ozone depletion potential", Unit: "kg R11-Äqv.", Position: 2},
	{Ident: "pocp", Name: "Photochemical ozone creation potential", Unit: "kg Ethen-Äqv.", Position: 3},
	{Ident: "ap", Name: "Acidification potential", Unit: "kg SO2-Äqv.", Position: 4},
	{Ident: "ep", Name: "Eutrophication potential", Unit: "kg PO4-Äqv.", Position: 5},
	{Ident: "pe_em", Name: "Primary energy, non-renewable", Unit: "MJ", Position: 6},
	{Ident: "pe_e", Name: "Primary energy, renewable", Unit: "MJ", Position: 7},
	{Ident: "pet", Name: "Primary energy, total", Unit: "MJ", Position: 8},
}

// DefaultElementTypes are the DIN 276 cost groups used by the element catalog.
var DefaultElementTypes = []models.ElementType{
	{Code: "300", Name: "Bauwerk - Baukonstruktionen"},
	{Code: "320", Name: "Gründung"},
	{Code: "330", Name: "Außenwände"},
	{Code: "340", Name: "Innenwände"},
	{Code: "350", Name: "Decken"},
	{Code: "360", Name: "Dächer"},
	{Code: "400", Name: "Bauwerk - Technische Anlagen"},
	{Code: "410", Name: "Abwasser-, Wasser-, Gasanlagen"},
	{Code: "420", Name: "Wärmeversorgungsanlagen"},
	{Code: "430", Name: "Lufttechnische Anlagen"},
	{Code: "440", Name: "Starkstromanlagen"},
}

// SeedReferenceData inserts indicators and element types that are missing.
func SeedReferenceData(db *gorm.DB) error {
	indicators := append([]models.Indicator(nil), DefaultIndicators...)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&indicators).Error; err != nil {
		return err
	}
	types := append([]models.ElementType(nil), DefaultElementTypes...)
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&types).Error
}

// EnsureAdmin creates the default admin when no admin exists yet.
func EnsureAdmin(db *gorm.DB, authName, email, password string) (*models.User, error) {
	var count int64
	if err := db.Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	admin, err := CreateUser(db, authName, email, password, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	logging.Log.WithField("auth_name", authName).Info("created default admin user")
	return admin, nil
}

// CreateUser stores a confirmed user with a bcrypt hashed password.
func CreateUser(db *gorm.DB, authName, email, password string, role models.UserRole) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		AuthName:     authName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       models.UserConfirmed,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
