package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	PDFEngineWkhtmltopdf = "wkhtmltopdf"
	PDFEnginePlaywright  = "playwright"
)

type Config struct {
	DBDriver      string
	DBDSN         string
	ServerPort    string
	SessionSecret string
	CSRFKey       string
	SecureCookies bool
	BaseURL       string

	RedisAddr     string
	RedisPassword string

	PDFEngine  string
	PDFBinary  string
	PDFDir     string
	PDFTimeout time.Duration
	PDFTTL     time.Duration

	ResendAPIKey string
	MailFrom     string

	LogLevel  string
	LogFormat string

	AdminUsername string
	AdminPassword string
	AdminEmail    string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBDriver:      getenv("DB_DRIVER", DriverPostgres),
		DBDSN:         os.Getenv("DB_DSN"),
		ServerPort:    getenv("SERVER_PORT", "8080"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		CSRFKey:       os.Getenv("CSRF_KEY"),
		SecureCookies: getbool("SECURE_COOKIES", false),
		BaseURL:       getenv("BASE_URL", "http://localhost:8080"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		PDFEngine:  getenv("PDF_ENGINE", PDFEngineWkhtmltopdf),
		PDFBinary:  getenv("PDF_BINARY", "wkhtmltopdf"),
		PDFDir:     getenv("PDF_DIR", os.TempDir()),
		PDFTimeout: getduration("PDF_TIMEOUT", 60*time.Second),
		PDFTTL:     getduration("PDF_TTL", time.Hour),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		MailFrom:     getenv("MAIL_FROM", "eLCA <noreply@elca.local>"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "text"),

		AdminUsername: getenv("ADMIN_USERNAME", "admin"),
		AdminPassword: getenv("ADMIN_PASSWORD", "Admin123!"),
		AdminEmail:    getenv("ADMIN_EMAIL", "admin@elca.local"),
	}

	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN is not set")
	}
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}
	if cfg.CSRFKey != "" && len(cfg.CSRFKey) != 32 {
		log.Fatal("CSRF_KEY must be 32 bytes long")
	}
	switch cfg.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		log.Fatalf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	switch cfg.PDFEngine {
	case PDFEngineWkhtmltopdf, PDFEnginePlaywright:
	default:
		log.Fatalf("unsupported PDF_ENGINE %q", cfg.PDFEngine)
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func getduration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
