package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/david-crosby/Ripple/internal/pkg/logger"
	"github.com/david-crosby/Ripple/internal/pkg/password"
	"github.com/david-crosby/Ripple/internal/pkg/ratelimit"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// minProdSecretLen is the shortest JWT secret accepted in prod
const minProdSecretLen = 32

// devJWTSecret is only ever used when APP_MODE=dev and no secret is set
const devJWTSecret = "dev-only-insecure-secret-change-me-please"

// Config holds all configuration for the application.
// It is built once by Load and passed explicitly; nothing mutates it afterwards.
type Config struct {
	AppMode   string
	Port      string
	Database  DatabaseConfig
	JWT       JWTConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Ledger    LedgerConfig
	Log       logger.Config
	Cookie    CookieConfig
	Admin     AdminSeed
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver     string // mysql or sqlite
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SQLitePath string
}

// JWTConfig holds access token configuration
type JWTConfig struct {
	Secret          string
	Algorithm       string
	AccessTokenMins int
	Issuer          string
}

// SecurityConfig holds password hashing configuration
type SecurityConfig struct {
	BcryptCost int
}

// RateLimitConfig holds per-endpoint and global limits
type RateLimitConfig struct {
	Store         string // memory or redis
	Login         ratelimit.Spec
	Register      ratelimit.Spec
	GlobalMax     int
}

// RedisConfig holds redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LedgerConfig holds ledger transaction and audit configuration
type LedgerConfig struct {
	TxTimeout     time.Duration
	AuditSchedule string
}

// CookieConfig holds cookie configuration for the optional token cookie
type CookieConfig struct {
	Enabled  bool
	Secure   bool
	SameSite string
	Domain   string
}

// AdminSeed is the dev admin account created by the seeder when both fields are set
type AdminSeed struct {
	Email    string
	Password string
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		zap.L().Warn(".env file not found, using environment variables")
	}

	return FromEnv()
}

// FromEnv builds a Config from the process environment only
func FromEnv() (*Config, error) {
	// Trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	jwtCfg, err := loadJWTConfig(appMode)
	if err != nil {
		return nil, err
	}

	rateLimit, err := loadRateLimitConfig()
	if err != nil {
		return nil, err
	}

	database := loadDatabaseConfig(appMode)
	if database.Driver != "mysql" && database.Driver != "sqlite" {
		return nil, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql' or 'sqlite')", database.Driver)
	}

	txTimeout, err := time.ParseDuration(getEnv("LEDGER_TX_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_TX_TIMEOUT: %w", err)
	}

	cfg := &Config{
		AppMode:   appMode,
		Port:      getEnv("PORT", "8000"),
		Database:  database,
		JWT:       jwtCfg,
		Security:  SecurityConfig{BcryptCost: getEnvInt("BCRYPT_COST", password.DefaultCost)},
		RateLimit: rateLimit,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Ledger: LedgerConfig{
			TxTimeout:     txTimeout,
			AuditSchedule: getEnv("LEDGER_AUDIT_CRON", "@every 1h"),
		},
		Log:    loadLogConfig(appMode),
		Cookie: loadCookieConfig(appMode),
		Admin: AdminSeed{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
	}

	return cfg, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)

	return DatabaseConfig{
		Driver:     strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		Host:       getEnv(prefix+"DB_HOST", "localhost"),
		Port:       getEnv(prefix+"DB_PORT", "3306"),
		User:       getEnv(prefix+"DB_USER", "root"),
		Password:   getEnv(prefix+"DB_PASS", ""),
		DBName:     getEnv(prefix+"DB_NAME", "ripple"),
		SQLitePath: getEnv("SQLITE_PATH", "ripple.db"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) (JWTConfig, error) {
	secret := getEnv(modePrefix(mode)+"JWT_SECRET", getEnv("JWT_SECRET", ""))
	if mode == "prod" && len(secret) < minProdSecretLen {
		return JWTConfig{}, fmt.Errorf("JWT_SECRET must be set and at least %d bytes in prod", minProdSecretLen)
	}
	if secret == "" {
		secret = devJWTSecret
	}

	return JWTConfig{
		Secret:          secret,
		Algorithm:       getEnv("JWT_ALGORITHM", "HS256"),
		AccessTokenMins: getEnvInt("ACCESS_TOKEN_MINUTES", 30),
		Issuer:          getEnv("JWT_ISSUER", "ripple"),
	}, nil
}

func loadRateLimitConfig() (RateLimitConfig, error) {
	login, err := ratelimit.ParseSpec(getEnv("RATE_LIMIT_LOGIN", "10-M"))
	if err != nil {
		return RateLimitConfig{}, fmt.Errorf("invalid RATE_LIMIT_LOGIN: %w", err)
	}
	register, err := ratelimit.ParseSpec(getEnv("RATE_LIMIT_REGISTER", "5-H"))
	if err != nil {
		return RateLimitConfig{}, fmt.Errorf("invalid RATE_LIMIT_REGISTER: %w", err)
	}

	store := strings.ToLower(getEnv("RATE_LIMIT_STORE", "memory"))
	if store != "memory" && store != "redis" {
		return RateLimitConfig{}, fmt.Errorf("invalid RATE_LIMIT_STORE: '%s' (must be 'memory' or 'redis')", store)
	}

	return RateLimitConfig{
		Store:         store,
		Login:         login,
		Register:      register,
		GlobalMax:     getEnvInt("RATE_LIMIT_GLOBAL_MAX", 100),
	}, nil
}

func loadLogConfig(mode string) logger.Config {
	level := "debug"
	filename := ""
	if mode == "prod" {
		level = "info"
		filename = "logs/ripple.log"
	}

	return logger.Config{
		Level:      getEnv("LOG_LEVEL", level),
		Filename:   getEnv("LOG_FILE", filename),
		MaxSize:    getEnvInt("LOG_MAX_SIZE_MB", 100),
		MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		MaxAge:     getEnvInt("LOG_MAX_AGE_DAYS", 30),
		Compress:   getEnvBool("LOG_COMPRESS", true),
		Console:    mode == "dev",
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	return CookieConfig{
		Enabled:  getEnvBool("COOKIE_TOKEN", false),
		Secure:   getEnvBool(modePrefix(mode)+"COOKIE_SECURE", mode == "prod"),
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// AccessTokenTTL returns the configured access token lifetime
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenMins) * time.Minute
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://ripple.example.org"
	}
	return origins
}
