// Package config provides configuration management and environment variable handling for the application
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ProductionConfig holds all configuration for the API
type ProductionConfig struct {
	Database   DatabaseConfig   `json:"database"`
	Server     ServerConfig     `json:"server"`
	Security   SecurityConfig   `json:"security"`
	JWT        JWTConfig        `json:"jwt"`
	Logging    LoggingConfig    `json:"logging"`
	Cache      CacheConfig      `json:"cache"`
	Moderation ModerationConfig `json:"moderation"`
	Seed       SeedConfig       `json:"seed"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	BodyLimit       int           `json:"body_limit"`
	EnableMetrics   bool          `json:"enable_metrics"`
}

type SecurityConfig struct {
	AllowedOrigins   []string      `json:"allowed_origins"`
	AllowedMethods   []string      `json:"allowed_methods"`
	AllowedHeaders   []string      `json:"allowed_headers"`
	AllowCredentials bool          `json:"allow_credentials"`
	CORSMaxAge       int           `json:"cors_max_age"`
	AuthRateLimit    int           `json:"auth_rate_limit"`   // requests per minute
	GlobalRateLimit  int           `json:"global_rate_limit"` // requests per minute
	RateLimitWindow  time.Duration `json:"rate_limit_window"`
	PasswordMinLen   int           `json:"password_min_length"`
	BcryptCost       int           `json:"bcrypt_cost"`
}

type JWTConfig struct {
	SecretKey       string        `json:"secret_key"`
	PrivateKey      string        `json:"private_key"`  // RSA private key in PEM format
	PublicKey       string        `json:"public_key"`   // RSA public key in PEM format
	UseRSAKeys      bool          `json:"use_rsa_keys"` // Whether to use RSA keys instead of secret key
	AccessTokenTTL  time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL time.Duration `json:"refresh_token_ttl"`
	Issuer          string        `json:"issuer"`
	Audience        string        `json:"audience"`
}

type LoggingConfig struct {
	File       string `json:"file"` // empty means stderr only
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
	Compress   bool   `json:"compress"`
}

type CacheConfig struct {
	Enabled  bool          `json:"enabled"`
	RedisURL string        `json:"redis_url"`
	RedisDB  int           `json:"redis_db"`
	ListTTL  time.Duration `json:"list_ttl"` // TTL for cached public object listings
}

// RegionBounds is the bounding region submissions must fall into.
// Defaults cover Ukraine: lat 44.0-52.5 N, lng 22.0-40.5 E.
type RegionBounds struct {
	MinLatitude  float64 `json:"min_latitude"`
	MaxLatitude  float64 `json:"max_latitude"`
	MinLongitude float64 `json:"min_longitude"`
	MaxLongitude float64 `json:"max_longitude"`
}

// Contains reports whether the coordinate pair falls inside the region
func (b RegionBounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLatitude && lat <= b.MaxLatitude &&
		lng >= b.MinLongitude && lng <= b.MaxLongitude
}

type ModerationConfig struct {
	Bounds RegionBounds `json:"bounds"`

	// HardDelete switches admin deletion from soft-archive to a real DELETE
	HardDelete bool `json:"hard_delete"`
}

type SeedConfig struct {
	Enabled     bool `json:"enabled"`
	ObjectCount int  `json:"object_count"`
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	// Load environment variables from .env file
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "culturemap"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
		},
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 4*1024*1024), // 4MB
			EnableMetrics:   getEnvBool("SERVER_ENABLE_METRICS", true),
		},
		Security: SecurityConfig{
			AllowedOrigins:   getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"https://culturemap.org.ua", "https://api.culturemap.org.ua"}),
			AllowedMethods:   getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"}),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			CORSMaxAge:       getEnvInt("CORS_MAX_AGE", 86400),
			AuthRateLimit:    getEnvInt("AUTH_RATE_LIMIT", 20),
			GlobalRateLimit:  getEnvInt("GLOBAL_RATE_LIMIT", 1000),
			RateLimitWindow:  getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
			PasswordMinLen:   getEnvInt("PASSWORD_MIN_LENGTH", 8),
			BcryptCost:       getEnvInt("BCRYPT_COST", 12),
		},
		JWT: JWTConfig{
			SecretKey:       getEnvString("JWT_SECRET_KEY", ""),
			PrivateKey:      getEnvString("JWT_PRIVATE_KEY", ""),
			PublicKey:       getEnvString("JWT_PUBLIC_KEY", ""),
			UseRSAKeys:      getEnvBool("JWT_USE_RSA_KEYS", false),
			AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
			RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TOKEN_TTL", 7*24*time.Hour),
			Issuer:          getEnvString("JWT_ISSUER", "culturemap"),
			Audience:        getEnvString("JWT_AUDIENCE", "culturemap-api"),
		},
		Logging: LoggingConfig{
			File:       getEnvString("LOG_FILE", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Cache: CacheConfig{
			Enabled:  getEnvBool("CACHE_ENABLED", false),
			RedisURL: getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:  getEnvInt("CACHE_REDIS_DB", 0),
			ListTTL:  getEnvDuration("CACHE_LIST_TTL", 5*time.Minute),
		},
		Moderation: ModerationConfig{
			Bounds: RegionBounds{
				MinLatitude:  getEnvFloat("REGION_MIN_LATITUDE", 44.0),
				MaxLatitude:  getEnvFloat("REGION_MAX_LATITUDE", 52.5),
				MinLongitude: getEnvFloat("REGION_MIN_LONGITUDE", 22.0),
				MaxLongitude: getEnvFloat("REGION_MAX_LONGITUDE", 40.5),
			},
			HardDelete: getEnvBool("MODERATION_HARD_DELETE", false),
		},
		Seed: SeedConfig{
			Enabled:     getEnvBool("SEED_ENABLED", false),
			ObjectCount: getEnvInt("SEED_OBJECT_COUNT", 50),
		},
	}

	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateProductionConfig checks required settings and invariants
func ValidateProductionConfig(cfg *ProductionConfig) error {
	if cfg.Database.Host == "" || cfg.Database.Name == "" {
		return fmt.Errorf("database host and name are required")
	}
	if cfg.JWT.UseRSAKeys {
		if cfg.JWT.PrivateKey == "" || cfg.JWT.PublicKey == "" {
			return fmt.Errorf("JWT RSA keys are required when JWT_USE_RSA_KEYS is set")
		}
	} else if cfg.JWT.SecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	b := cfg.Moderation.Bounds
	if b.MinLatitude >= b.MaxLatitude || b.MinLongitude >= b.MaxLongitude {
		return fmt.Errorf("region bounds are inverted")
	}
	return nil
}

// loadEnvFile loads KEY=VALUE pairs from a .env file if present.
// Existing environment variables are never overridden.
func loadEnvFile() error {
	file, err := os.Open(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
