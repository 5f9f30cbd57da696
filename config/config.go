package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP        HTTPConfig
	MySQL       MySQLConfig
	JWT         JWTConfig
	Cache       CacheConfig
	Tokens      TokenConfig
	Password    PasswordConfig
	Avatar      AvatarConfig
	SMTP        SMTPConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
	FrontendURL string
}

type HTTPConfig struct {
	Host           string
	Port           string
	RequestTimeout time.Duration
}

type MySQLConfig struct {
	DSN string
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

type CacheConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled reports whether a Redis host was configured.
func (c CacheConfig) Enabled() bool {
	return c.Host != ""
}

func (c CacheConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

type TokenConfig struct {
	ResetTTL     time.Duration
	ReapInterval time.Duration
}

type PasswordConfig struct {
	Policy   PasswordPolicy
	HashCost int
}

type AvatarConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type LogConfig struct {
	Level  string
	Format string
}

type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

func (p PasswordPolicy) Validate(password string) error {
	if len(password) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters long", p.MinLength)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasNumber = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}
	}

	var missing []string
	if p.RequireUppercase && !hasUpper {
		missing = append(missing, "uppercase letter")
	}
	if p.RequireLowercase && !hasLower {
		missing = append(missing, "lowercase letter")
	}
	if p.RequireNumber && !hasNumber {
		missing = append(missing, "number")
	}
	if p.RequireSpecial && !hasSpecial {
		missing = append(missing, "special character")
	}

	if len(missing) > 0 {
		return fmt.Errorf("password must contain at least one: %s", strings.Join(missing, ", "))
	}

	return nil
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		HTTP: HTTPConfig{
			Host:           getEnv("HTTP_HOST", ""),
			Port:           getEnv("HTTP_PORT", "8080"),
			RequestTimeout: getSecondsEnv("HTTP_REQUEST_TIMEOUT", 15*time.Second),
		},
		MySQL: MySQLConfig{
			DSN: mysqlDSN,
		},
		JWT: JWTConfig{
			Secret:         jwtSecret,
			AccessTokenTTL: getSecondsEnv("JWT_ACCESS_TOKEN_TTL", time.Hour),
		},
		Cache: CacheConfig{
			Host:     getEnv("CACHE_HOST", ""),
			Port:     getEnv("CACHE_PORT", "6379"),
			Password: getEnv("CACHE_PASSWORD", ""),
			DB:       getIntEnv("CACHE_DB", 0),
			TTL:      getSecondsEnv("CACHE_TTL", 10*time.Minute),
		},
		Tokens: TokenConfig{
			ResetTTL:     getDurationEnv("RESET_TOKEN_TTL", 30*time.Minute),
			ReapInterval: getDurationEnv("RESET_TOKEN_REAP_INTERVAL", time.Hour),
		},
		Password: PasswordConfig{
			Policy:   loadPasswordPolicy(),
			HashCost: getIntEnv("PASSWORD_HASH_COST", 10),
		},
		Avatar: AvatarConfig{
			Bucket:        getEnv("AVATAR_S3_BUCKET", "avatars"),
			Region:        getEnv("AVATAR_S3_REGION", "us-east-1"),
			Endpoint:      getEnv("AVATAR_S3_ENDPOINT", ""),
			AccessKey:     getEnv("AVATAR_S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("AVATAR_S3_SECRET_KEY", ""),
			PublicBaseURL: strings.TrimRight(getEnv("AVATAR_PUBLIC_BASE_URL", ""), "/"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getIntEnv("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", getEnv("SMTP_USER", "no-reply@localhost")),
		},
		RateLimit: RateLimitConfig{
			RPS:   getFloatEnv("RATE_LIMIT_RPS", 5),
			Burst: getIntEnv("RATE_LIMIT_BURST", 10),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
	}, nil
}

func (c *Config) DSN() string {
	return c.MySQL.DSN
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv reads a whole number of minutes.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

// getSecondsEnv reads a whole number of seconds.
func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func loadPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        getIntEnv("PASSWORD_MIN_LENGTH", 8),
		RequireUppercase: getBoolEnv("PASSWORD_REQUIRE_UPPERCASE", false),
		RequireLowercase: getBoolEnv("PASSWORD_REQUIRE_LOWERCASE", false),
		RequireNumber:    getBoolEnv("PASSWORD_REQUIRE_NUMBER", false),
		RequireSpecial:   getBoolEnv("PASSWORD_REQUIRE_SPECIAL", false),
	}
}
