package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config is loaded once at process start and injected into every service.
// Nothing reads the environment after Load returns.
type Config struct {
	ListenAddr  string
	DatabaseDSN string
	RedisAddr   string

	JWTSecret string
	UsersFile string
	// Users maps username -> bcrypt password hash, loaded from UsersFile.
	Users     map[string]string
	AdminUser string

	// RestrictedMarker is the tag substring that hides content from
	// non-privileged callers.
	RestrictedMarker string

	// StrictLocationParent turns an unresolvable parent name on location
	// create into a validation error instead of the historical silent
	// fallback to a root-level location.
	StrictLocationParent bool

	RateLimitPerMinute int

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
}

func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:           getEnv("LISTEN_ADDR", ":8080"),
		DatabaseDSN:          getEnv("DATABASE_DSN", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		UsersFile:            getEnv("USERS_FILE", "users.json"),
		AdminUser:            getEnv("ADMIN_USER", "admin"),
		RestrictedMarker:     getEnv("RESTRICTED_MARKER", "+18"),
		StrictLocationParent: getEnvBool("LOCATION_STRICT_PARENT", false),
		RateLimitPerMinute:   getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		S3Endpoint:           getEnv("S3_ENDPOINT", ""),
		S3Region:             getEnv("S3_REGION", "auto"),
		S3Bucket:             getEnv("S3_BUCKET", ""),
		S3AccessKey:          getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:          getEnv("S3_SECRET_KEY", ""),
	}

	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("DATABASE_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	users, err := loadUsers(cfg.UsersFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load users file: %w", err)
	}
	cfg.Users = users

	return cfg, nil
}

// loadUsers reads the username -> bcrypt hash map. A missing file yields an
// empty map so a fresh install can still serve unauthenticated reads.
func loadUsers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	users := make(map[string]string)
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
