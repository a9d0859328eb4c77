package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	PublicURL   string // externally reachable base URL, used for in-memory download links
	DatabaseURL string // empty selects the in-memory store
	TablePrefix string
	CORSOrigins string
	// Auth
	JWKSURL   string
	JWTSecret string // HS256 fallback when no JWKS endpoint is configured
	// Object storage
	StorageBackend string // memory or s3
	S3Region       string
	S3Bucket       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3PathStyle    bool
	DownloadURLTTL time.Duration
	MaxUploadBytes int64
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	port := getEnv("PORT", "8080")

	return &Config{
		Port:           port,
		Environment:    env,
		PublicURL:      strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:"+port), "/"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		TablePrefix:    getTablePrefix(env),
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		JWKSURL:        getEnv("JWKS_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		StorageBackend: getEnv("STORAGE_BACKEND", "memory"),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
		S3PathStyle:    getEnv("S3_PATH_STYLE", "false") == "true",
		DownloadURLTTL: getDuration("DOWNLOAD_URL_TTL", 15*time.Minute),
		MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxFiles:    int(getInt64("LOG_MAX_FILES", 10)),
	}
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "prod"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	if n, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil && n > 0 {
		return n
	}
	return defaultValue
}
