package database_test

import (
	"testing"

	"elca-web/internal/database"
	"elca-web/internal/database/dbtest"
	"elca-web/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open("oracle", "dsn")
	assert.Error(t, err)
}

func TestSeedReferenceData_Idempotent(t *testing.T) {
	db := dbtest.Setup(t)

	require.NoError(t, database.SeedReferenceData(db))

	var indicators, types int64
	db.Model(&models.Indicator{}).Count(&indicators)
	db.Model(&models.ElementType{}).Count(&types)
	assert.EqualValues(t, len(database.DefaultIndicators), indicators)
	assert.EqualValues(t, len(database.DefaultElementTypes), types)
}

func TestEnsureAdmin(t *testing.T) {
	db := dbtest.Setup(t)

	admin, err := database.EnsureAdmin(db, "admin", "admin@elca.local", "Admin123!")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, models.UserConfirmed, admin.Status)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("Admin123!")))

	again, err := database.EnsureAdmin(db, "admin2", "admin2@elca.local", "Admin123!")
	require.NoError(t, err)
	assert.Nil(t, again)

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateAuditLog(t *testing.T) {
	db := dbtest.Setup(t)
	user, err := database.CreateUser(db, "erika", "erika@example.org", "Secret123!", models.RoleUser)
	require.NoError(t, err)

	database.CreateAuditLog(user.ID, "project", 42, "create", "Created project: Kita")

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "project", logs[0].Entity)
	assert.EqualValues(t, 42, logs[0].EntityID)
	assert.Equal(t, user.ID, logs[0].UserID)
}
