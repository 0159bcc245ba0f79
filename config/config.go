package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	StreamToken StreamTokenConfig
	AWS         AWSConfig
	Storage     StorageConfig
	Email       EmailConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	BaseURL            string // external base URL used when building stream URLs, e.g. https://api.lumora.io
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all (e.g. http://localhost:3000,http://localhost:3001)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/lumora?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds identity JWT signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// StreamTokenConfig holds stream access token settings. The secret signs
// short-lived capability tokens and is independent from the identity JWT secret.
type StreamTokenConfig struct {
	Secret              string
	TTLSeconds          int // token lifetime; renewal re-runs the entitlement check
	EntitlementCacheTTL int // seconds; must stay below TTLSeconds
	LookupTimeoutSec    int // timeout for enrollment lookups
}

// TTL returns the stream token lifetime.
func (c StreamTokenConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// CacheTTL returns the entitlement cache lifetime.
func (c StreamTokenConfig) CacheTTL() time.Duration {
	return time.Duration(c.EntitlementCacheTTL) * time.Second
}

// LookupTimeout returns the enrollment lookup timeout.
func (c StreamTokenConfig) LookupTimeout() time.Duration {
	return time.Duration(c.LookupTimeoutSec) * time.Second
}

// AWSConfig holds AWS credentials and the S3 bucket for lesson videos.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	VideosBucket         string
	PresignExpireMinutes int
}

// StorageConfig selects the video blob backend.
type StorageConfig struct {
	Backend  string // "s3" or "local"
	LocalDir string // directory holding video files when Backend is "local"
}

// EmailConfig for SMTP enrollment confirmation emails.
type EmailConfig struct {
	FromAddress string
	FromName    string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env

	readTimeout, _ := strconv.Atoi(getEnv("READ_TIMEOUT_SEC", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT_SEC", "30"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	jwtExpire, _ := strconv.Atoi(getEnv("JWT_EXPIRE_HOURS", "24"))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			BaseURL:            strings.TrimRight(getEnv("SERVER_BASE_URL", "http://localhost:8080"), "/"),
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", "postgres://localhost:5432/lumora?sslmode=disable"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "lumora"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: jwtExpire,
		},
		StreamToken: StreamTokenConfig{
			Secret:              getEnv("STREAM_TOKEN_SECRET", ""),
			TTLSeconds:          getEnvInt("STREAM_TOKEN_TTL_SEC", 3600),
			EntitlementCacheTTL: getEnvInt("ENTITLEMENT_CACHE_TTL_SEC", 15),
			LookupTimeoutSec:    getEnvInt("ENTITLEMENT_LOOKUP_TIMEOUT_SEC", 3),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			VideosBucket:         getEnv("AWS_S3_VIDEOS_BUCKET", "lumora-lesson-videos"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		Storage: StorageConfig{
			Backend:  getEnv("VIDEO_STORAGE_BACKEND", "local"),
			LocalDir: getEnv("VIDEO_STORAGE_DIR", "./videos"),
		},
		Email: EmailConfig{
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", "noreply@lumora.io"),
			FromName:    getEnv("EMAIL_FROM_NAME", "Lumora Academy"),
			SMTPHost:    getEnv("SMTP_HOST", ""),
			SMTPPort:    getEnvInt("SMTP_PORT", 587),
			SMTPUser:    getEnv("SMTP_USER", ""),
			SMTPPass:    getEnv("SMTP_PASS", ""),
		},
	}
	if cfg.StreamToken.Secret == "" {
		cfg.StreamToken.Secret = cfg.JWT.Secret + "-stream"
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate rejects configurations that break delivery invariants.
func (c *Config) validate() error {
	if c.StreamToken.TTLSeconds <= 0 {
		return fmt.Errorf("config: STREAM_TOKEN_TTL_SEC must be positive")
	}
	// A cached entitlement outliving the token would let a revoked user keep minting fresh tokens.
	if c.StreamToken.EntitlementCacheTTL >= c.StreamToken.TTLSeconds {
		return fmt.Errorf("config: ENTITLEMENT_CACHE_TTL_SEC (%d) must be below STREAM_TOKEN_TTL_SEC (%d)",
			c.StreamToken.EntitlementCacheTTL, c.StreamToken.TTLSeconds)
	}
	if c.Storage.Backend != "s3" && c.Storage.Backend != "local" {
		return fmt.Errorf("config: VIDEO_STORAGE_BACKEND must be \"s3\" or \"local\", got %q", c.Storage.Backend)
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
