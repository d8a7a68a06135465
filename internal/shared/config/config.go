package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"cv-builder/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port             string
	CORSAllowOrigin  []string
	KVStore          string
	LocalStoreDir    string
	AWSRegion        string
	S3Bucket         string
	S3Prefix         string
	SSEKMSKeyID      string
	DatabaseURL      string
	RedisURL         string
	JWTSecret        string
	Env              string
	FreeSavedCVs     int
	ProSavedCVs      int
	PremiumSavedCVs  int
	TrashRetention   time.Duration
	SubscriptionTerm time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// Values from the optional CONFIG_FILE overlay sit between the defaults and the environment.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		telemetry.Warn("config.file_ignored", map[string]any{"path": os.Getenv("CONFIG_FILE"), "error": err})
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	kvStore := normalizeStoreType(getEnv("KV_STORE", file.Storage.Backend))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && kvStore == "postgres" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env, "store": kvStore})
	}

	return Config{
		Port:             getEnv("PORT", "8080"),
		CORSAllowOrigin:  splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		KVStore:          kvStore,
		LocalStoreDir:    getEnv("LOCAL_STORE_DIR", orDefault(file.Storage.LocalDir, "./data")),
		AWSRegion:        getEnv("AWS_REGION", file.Storage.Region),
		S3Bucket:         getEnv("S3_BUCKET", file.Storage.Bucket),
		S3Prefix:         getEnv("S3_PREFIX", file.Storage.Prefix),
		SSEKMSKeyID:      getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:      dbURL,
		RedisURL:         getEnv("REDIS_URL", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		Env:              env,
		FreeSavedCVs:     getEnvInt("FREE_SAVED_CVS", orDefaultInt(file.Tiers.Free, 3)),
		ProSavedCVs:      getEnvInt("PRO_SAVED_CVS", orDefaultInt(file.Tiers.Pro, 10)),
		PremiumSavedCVs:  getEnvInt("PREMIUM_SAVED_CVS", orDefaultInt(file.Tiers.Premium, 999)),
		TrashRetention:   days(getEnvInt("TRASH_RETENTION_DAYS", orDefaultInt(file.Trash.RetentionDays, 30))),
		SubscriptionTerm: days(getEnvInt("SUBSCRIPTION_DURATION_DAYS", orDefaultInt(file.Tiers.SubscriptionDays, 30))),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "value": raw, "default": def})
		return def
	}
	return val
}

func orDefault(val, def string) string {
	if strings.TrimSpace(val) == "" {
		return def
	}
	return val
}

func orDefaultInt(val, def int) int {
	if val <= 0 {
		return def
	}
	return val
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "postgres", "pg":
		return "postgres"
	case "redis":
		return "redis"
	case "local", "file":
		return "local"
	default:
		return "memory"
	}
}
