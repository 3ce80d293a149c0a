package database

import (
	"fmt"
	"time"

	"elca-web/internal/config"
	"elca-web/internal/logging"
	"elca-web/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the configured database without migrating it.
func Open(driver, dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch driver {
	case config.DriverPostgres:
		return gorm.Open(postgres.Open(dsn), gcfg)
	case config.DriverSQLite:
		return gorm.Open(sqlite.Open(dsn), gcfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Init connects with retries, migrates and seeds reference data and the
// default admin. It is fatal when the database stays unreachable.
func Init(cfg *config.Config) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		logging.Log.Infof("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		DB, err = Open(cfg.DBDriver, cfg.DBDSN)
		if err == nil {
			logging.Log.Info("connected to DB successfully")
			break
		}

		logging.Log.WithError(err).Warn("failed to connect to DB")
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		logging.Log.Fatalf("failed to connect to db after %d attempts: %v", maxAttempts, err)
	}

	if err := Migrate(DB); err != nil {
		logging.Log.Fatalf("failed to migrate: %v", err)
	}

	if err := SeedReferenceData(DB); err != nil {
		logging.Log.WithError(err).Error("failed to seed reference data")
	}
	if _, err := EnsureAdmin(DB, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logging.Log.WithError(err).Error("failed to create default admin")
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectVariant{},
		&models.ProjectAccessToken{},
		&models.ElementType{},
		&models.Element{},
		&models.ProcessConfig{},
		&models.ElementComponent{},
		&models.Indicator{},
		&models.IndicatorResult{},
		&models.AuditLog{},
	)
}
