package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	MySQLDSN   string

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret  string
	SessionTTL time.Duration

	AppBaseURL    string
	ResetTokenTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	UploadDir         string
	MigrateCategories bool

	SwaggerHost string
}

// Load builds Config from environment with sensible defaults. A .env file in
// the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "4000"),
		MySQLDSN:   getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/shellnote?charset=utf8mb4&parseTime=True&loc=Local"),

		// Redis is optional; leave REDIS_ADDR empty to disable the auth throttle.
		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		SessionTTL: time.Duration(getEnvInt("SESSION_TTL_HOURS", 168)) * time.Hour,

		AppBaseURL:    getEnv("APP_BASE_URL", "http://127.0.0.1:5177"),
		ResetTokenTTL: time.Duration(getEnvInt("RESET_TOKEN_TTL_MINUTES", 30)) * time.Minute,

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		MigrateCategories: getEnvBool("MIGRATE_CATEGORIES", true),

		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}
}

// MailConfigured reports whether an SMTP transport is fully configured.
// Without one, password-reset links are returned in the API response instead.
func (c *Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPassword != "" && c.SMTPFrom != ""
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
