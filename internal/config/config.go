package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	defaultAppEnv          = "development"
	defaultDBPath          = "./dev.db"
	defaultPort            = "8080"
	defaultSessionTTLHours = 24
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv          string
	AdminEmail      string
	AdminPassword   string
	SessionSecret   string
	SessionTTLHours int
	DBPath          string
	Port            string
	SeedCatalog     bool
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: production injects real environment variables.
	if err := loadDotEnv(".env"); err != nil {
		log.Printf("[WARN] could not load .env: %v", err)
	}

	cfg := Config{
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", defaultSessionTTLHours),
		DBPath:          getEnv("DB_PATH", defaultDBPath),
		Port:            getEnv("PORT", defaultPort),
	}
	cfg.SeedCatalog = getEnvBool("SEED_CATALOG", cfg.IsDev())

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set")
	}

	return cfg
}

// IsDev reports whether the server runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(strings.TrimSpace(c.AppEnv)) {
	case "", "dev", "development", "local":
		return true
	}
	return false
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		log.Printf("[WARN] %s=%q is not a positive integer, using %d", key, v, def)
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[WARN] %s=%q is not a boolean, using %t", key, v, def)
		return def
	}
	return b
}
