package handlers

import (
	"net/http"

	"elca-web/internal/apperr"
	"elca-web/internal/database"
	"elca-web/internal/models"
	"elca-web/internal/osit"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var auditEntities = []string{"user", "project", "access_token"}

func ListAuditLogs(c *gin.Context) {
	entity := c.Query("entity")

	dbq := database.DB.
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("created_at desc").
		Limit(200)
	if entity != "" {
		dbq = dbq.Where("entity = ?", entity)
	}

	var logs []models.AuditLog
	if err := dbq.Find(&logs).Error; err != nil {
		fail(c, apperr.Wrap(err, apperr.ErrDatabase, ""))
		return
	}

	render(c, http.StatusOK, "audit_list.html", gin.H{
		"Logs":     logs,
		"Entity":   entity,
		"Entities": auditEntities,
		"Osit":     osit.New("Audit log", "/admin/audit"),
	})
}
