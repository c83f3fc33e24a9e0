package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP         HTTPConfig
	DatabaseURL  string
	Session      SessionConfig
	Bootstrap    BootstrapConfig
	ClientDir    string
	AuditLogFile string
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type SessionConfig struct {
	TTL time.Duration
}

// BootstrapConfig identifies the super_admin account created at startup when
// it does not already exist.
type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
}

func Load() (Config, error) {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := Config{
		HTTP: HTTPConfig{
			Addr:            getEnv("HTTP_ADDR", ":8000"),
			ReadTimeout:     time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SEC", 10)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SEC", 15)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("HTTP_SHUTDOWN_TIMEOUT_SEC", 20)) * time.Second,
		},
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Session: SessionConfig{
			TTL: time.Duration(getEnvInt("SESSION_TTL_SEC", 3600)) * time.Second,
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    getEnv("BOOTSTRAP_ADMIN_EMAIL", "admin@example.com"),
			AdminPassword: getEnv("BOOTSTRAP_ADMIN_PASSWORD", "admin123"),
		},
		ClientDir:    getEnv("CLIENT_DIR", "./client"),
		AuditLogFile: getEnv("AUDIT_LOG_FILE", "./data/audit.log"),
	}

	if cfg.HTTP.Addr == "" {
		return Config{}, fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Session.TTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL_SEC must be > 0")
	}
	if cfg.Bootstrap.AdminEmail == "" {
		return Config{}, fmt.Errorf("BOOTSTRAP_ADMIN_EMAIL must not be empty")
	}
	if cfg.Bootstrap.AdminPassword == "" {
		return Config{}, fmt.Errorf("BOOTSTRAP_ADMIN_PASSWORD must not be empty")
	}
	if cfg.ClientDir == "" {
		return Config{}, fmt.Errorf("CLIENT_DIR must not be empty")
	}
	if cfg.AuditLogFile == "" {
		return Config{}, fmt.Errorf("AUDIT_LOG_FILE must not be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
