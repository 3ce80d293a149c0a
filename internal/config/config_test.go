package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "host=localhost dbname=elca")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PDF_ENGINE", "")
	t.Setenv("PDF_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, PDFEngineWkhtmltopdf, cfg.PDFEngine)
	assert.Equal(t, 60*time.Second, cfg.PDFTimeout)
	assert.Equal(t, "wkhtmltopdf", cfg.PDFBinary)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DSN", "elca.db")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PDF_TIMEOUT", "5s")
	t.Setenv("SECURE_COOKIES", "true")

	cfg := Load()

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 5*time.Second, cfg.PDFTimeout)
	assert.True(t, cfg.SecureCookies)
}

func TestGetduration_InvalidFallsBack(t *testing.T) {
	t.Setenv("X_TIMEOUT", "soon")
	assert.Equal(t, time.Minute, getduration("X_TIMEOUT", time.Minute))

	t.Setenv("X_TIMEOUT", "-3s")
	assert.Equal(t, time.Minute, getduration("X_TIMEOUT", time.Minute))
}
