package database

import (
	"elca-web/internal/logging"
	"elca-web/internal/models"

	"gorm.io/gorm"
)

// CreateAuditLog writes an audit row. Failures are logged, never returned.
func CreateAuditLog(userID uint, entity string, entityID uint, action, details string) {
	if DB == nil {
		return
	}
	if err := AuditTx(DB, userID, entity, entityID, action, details); err != nil {
		logging.Log.WithError(err).WithField("entity", entity).Warn("failed to write audit log")
	}
}

// AuditTx writes an audit row on tx so it commits or rolls back together
// with the mutation it describes.
func AuditTx(tx *gorm.DB, userID uint, entity string, entityID uint, action, details string) error {
	record := models.AuditLog{
		UserID:   userID,
		Entity:   entity,
		EntityID: entityID,
		Action:   action,
		Details:  details,
	}
	return tx.Create(&record).Error
}
