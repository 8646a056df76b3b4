package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/habitloop/habitloop/internal/auth/service"
	"github.com/habitloop/habitloop/pkg/tokenx"

	"github.com/joho/godotenv"
)

type Config struct {
	SigningKey     []byte        // Required: HS256 key, from AUTH_SIGNING_KEY or AUTH_SIGNING_KEY_FILE
	AccessTTL      time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTTL     time.Duration // Optional: refresh token lifetime (default: 168h)
	Leeway         time.Duration // Optional: clock-skew leeway for expiry checks (default: 30s)
	DatabaseFile   string        // Optional: path to SQLite database file (default: ./auth.db)
	PepperFile     string        // Optional: path to the password pepper file (default: ./pepper)
	CORSOrigins    []string      // Optional: comma-separated allowed origins (default: allow all)
	BootstrapAdmin BootstrapAdmin

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Denylist purge interval (default: 1h)
}

// BootstrapAdmin seeds the first administrative account when the admin
// silo is empty. All three fields must be set for seeding to happen.
type BootstrapAdmin struct {
	LoginName      string
	ContactAddress string
	Password       string
}

func (b BootstrapAdmin) complete() bool {
	return b.LoginName != "" && b.ContactAddress != "" && b.Password != ""
}

// LoadConfig reads configuration from the environment, with an optional
// .env file for local development.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		SigningKey:   loadSigningKey(),
		AccessTTL:    getEnvDurationOrDefault("AUTH_ACCESS_TTL", tokenx.DefaultAccessTTL),
		RefreshTTL:   getEnvDurationOrDefault("AUTH_REFRESH_TTL", tokenx.DefaultRefreshTTL),
		Leeway:       getEnvDurationOrDefault("AUTH_LEEWAY", 30*time.Second),
		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		BootstrapAdmin: BootstrapAdmin{
			LoginName:      os.Getenv("AUTH_BOOTSTRAP_ADMIN_USERNAME"),
			ContactAddress: os.Getenv("AUTH_BOOTSTRAP_ADMIN_CONTACT"),
			Password:       os.Getenv("AUTH_BOOTSTRAP_ADMIN_PASSWORD"),
		},
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	return cfg
}

// Validate enforces the invariants the token layer depends on. A broken
// configuration aborts startup.
func (cfg Config) Validate() error {
	if len(cfg.SigningKey) == 0 {
		return fmt.Errorf("%w: AUTH_SIGNING_KEY or AUTH_SIGNING_KEY_FILE must be set", service.ErrInvalidConfiguration)
	}
	if len(cfg.SigningKey) < tokenx.MinKeyBytes {
		return fmt.Errorf("%w: signing key must be at least %d bytes", service.ErrInvalidConfiguration, tokenx.MinKeyBytes)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return fmt.Errorf("%w: token TTLs must be positive", service.ErrInvalidConfiguration)
	}
	if cfg.Leeway < 0 {
		return fmt.Errorf("%w: leeway must not be negative", service.ErrInvalidConfiguration)
	}
	return nil
}

// loadSigningKey prefers the inline variable; the _FILE variant suits
// secret mounts. The key itself is never logged.
func loadSigningKey() []byte {
	if key := os.Getenv("AUTH_SIGNING_KEY"); key != "" {
		return []byte(key)
	}
	if file := os.Getenv("AUTH_SIGNING_KEY_FILE"); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil
		}
		return []byte(strings.TrimSpace(string(data)))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Duration syntax first ("15m", "1h30m"), bare integers read as minutes.
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
