package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	applog "storefront/internal/log"
)

type Config struct {
	Port              string
	DBDriver          string
	DBDSN             string
	LogFile           string
	LogLevel          string
	SessionSecret     string
	SessionTTL        time.Duration
	CatalogCacheTTL   time.Duration
	AdminWriteTimeout time.Duration
	BodyLimit         int
	SecureCookies     bool // set true behind HTTPS
}

// Load reads .env when present, then the environment, falling back to
// development defaults.
func Load() Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			applog.L().Warn("config.dotenv.fail", zap.Error(err))
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "storefront.db") // sqlite file in project root
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_SECRET", "dev-only-change-me")
	v.SetDefault("SESSION_TTL", "72h")
	v.SetDefault("CATALOG_CACHE_TTL", "5m")
	v.SetDefault("ADMIN_WRITE_TIMEOUT", "15s")
	v.SetDefault("BODY_LIMIT", 1<<20)
	v.SetDefault("SECURE_COOKIES", false)

	cfg := Config{
		Port:              v.GetString("PORT"),
		DBDriver:          v.GetString("DB_DRIVER"),
		DBDSN:             v.GetString("DB_DSN"),
		LogFile:           v.GetString("LOG_FILE"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		SessionSecret:     v.GetString("SESSION_SECRET"),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		CatalogCacheTTL:   v.GetDuration("CATALOG_CACHE_TTL"),
		AdminWriteTimeout: v.GetDuration("ADMIN_WRITE_TIMEOUT"),
		BodyLimit:         v.GetInt("BODY_LIMIT"),
		SecureCookies:     v.GetBool("SECURE_COOKIES"),
	}
	applog.L().Info("config.loaded",
		zap.String("port", cfg.Port),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("log_file", cfg.LogFile),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Duration("catalog_cache_ttl", cfg.CatalogCacheTTL),
	)
	return cfg
}

// Test returns a configuration backed by a private in-memory database.
func Test() Config {
	return Config{
		Port:              "0",
		DBDriver:          "sqlite",
		DBDSN:             ":memory:",
		LogLevel:          "debug",
		SessionSecret:     "test-secret",
		SessionTTL:        time.Hour,
		CatalogCacheTTL:   time.Minute,
		AdminWriteTimeout: 5 * time.Second,
		BodyLimit:         1 << 20,
	}
}
