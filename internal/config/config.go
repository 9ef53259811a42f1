package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode      string // Set via flag, not env
	AppName      string
	MockServices bool

	// Logging
	LogLevel  string
	LogFormat string

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JwtSecret       string
	JwtTTL          time.Duration // client sessions issued after OTP
	AdminJwtTTL     time.Duration
	CaptchaTokenTTL time.Duration

	// Server
	ApiPort        string
	ServiceApiPort string
	AllowedOrigins []string
	RequestTimeout time.Duration

	// Cloudflare
	CloudflareTurnstileSecretKey string
	CloudflareSiteVerifyURL      string

	// AWS
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	AttachmentURLTTL   time.Duration
	SesFromAddress     string
	SnsSenderID        string

	// Notifications
	AgentEmail string
	AgentPhone string

	// Admin account created on start when both are set
	AdminEmail    string
	AdminName     string
	AdminPassword string

	// Chat assistant
	GeminiAPIKey     string
	GeminiModel      string
	ChatHistoryLimit int

	// Property listings
	ListingsAPIURL   string
	ListingsAPIKey   string
	ListingsCacheTTL time.Duration

	// OTP
	OTPTTL         time.Duration
	OTPMaxAttempts int

	// Rate Limiting Defaults
	RateLimitSoftBucketSize int
	RateLimitSoftRefillRate int // tokens per second
	RateLimitHardBucketSize int
	RateLimitHardRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	getInt := func(key, defaultValue string) (int, error) {
		v, err := strconv.Atoi(getEnv(key, defaultValue))
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return v, nil
	}

	getSeconds := func(key, defaultValue string) (time.Duration, error) {
		v, err := strconv.ParseInt(getEnv(key, defaultValue), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return time.Duration(v) * time.Second, nil
	}

	// Load basic string values
	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "homepath")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.JwtSecret, err = getRequiredEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.AppName = getEnv("APP_NAME", "HomePath")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "json")
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.ServiceApiPort = getEnv("SERVICE_API_PORT", "12345")
	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"))
	cfg.CloudflareTurnstileSecretKey = getEnv("CLOUDFLARE_TURNSTILE_SECRET_KEY", "")
	cfg.CloudflareSiteVerifyURL = getEnv("CLOUDFLARE_SITEVERIFY_URL", "https://challenges.cloudflare.com/turnstile/v0/siteverify")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "ca-central-1")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.SesFromAddress = getEnv("SES_FROM_ADDRESS", "noreply@homepath.example.com")
	cfg.SnsSenderID = getEnv("SNS_SENDER_ID", "HomePath")
	cfg.AgentEmail = getEnv("AGENT_EMAIL", "")
	cfg.AgentPhone = getEnv("AGENT_PHONE", "")
	cfg.AdminEmail = getEnv("ADMIN_EMAIL", "")
	cfg.AdminName = getEnv("ADMIN_NAME", "Administrator")
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", "")
	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", "")
	cfg.GeminiModel = getEnv("GEMINI_MODEL", "gemini-2.5-flash")
	cfg.ListingsAPIURL = getEnv("LISTINGS_API_URL", "")
	cfg.ListingsAPIKey = getEnv("LISTINGS_API_KEY", "")

	cfg.MockServices, err = strconv.ParseBool(getEnv("MOCK_SERVICES", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid MOCK_SERVICES: %w", err)
	}

	// Load numeric and time duration values with defaults and parsing
	if cfg.RedisDB, err = getInt("REDIS_DB", "0"); err != nil {
		return nil, err
	}
	if cfg.JwtTTL, err = getSeconds("JWT_TTL_SECONDS", "2592000"); err != nil {
		return nil, err
	}
	if cfg.AdminJwtTTL, err = getSeconds("ADMIN_JWT_TTL_SECONDS", "28800"); err != nil {
		return nil, err
	}
	if cfg.CaptchaTokenTTL, err = getSeconds("CAPTCHA_TOKEN_TTL", "1200"); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getSeconds("REQUEST_TIMEOUT_SECONDS", "10"); err != nil {
		return nil, err
	}
	if cfg.AttachmentURLTTL, err = getSeconds("ATTACHMENT_URL_TTL_SECONDS", "900"); err != nil {
		return nil, err
	}
	if cfg.ChatHistoryLimit, err = getInt("CHAT_HISTORY_LIMIT", "20"); err != nil {
		return nil, err
	}
	if cfg.ListingsCacheTTL, err = getSeconds("LISTINGS_CACHE_TTL_SECONDS", "300"); err != nil {
		return nil, err
	}
	if cfg.OTPTTL, err = getSeconds("OTP_TTL_SECONDS", "300"); err != nil {
		return nil, err
	}
	if cfg.OTPMaxAttempts, err = getInt("OTP_MAX_ATTEMPTS", "5"); err != nil {
		return nil, err
	}

	// Rate Limiting
	if cfg.RateLimitSoftBucketSize, err = getInt("RATE_LIMIT_SOFT_BUCKET_SIZE", "2"); err != nil {
		return nil, err
	}
	if cfg.RateLimitSoftRefillRate, err = getInt("RATE_LIMIT_SOFT_REFILL_RATE", "1"); err != nil {
		return nil, err
	}
	if cfg.RateLimitHardBucketSize, err = getInt("RATE_LIMIT_HARD_BUCKET_SIZE", "8"); err != nil {
		return nil, err
	}
	if cfg.RateLimitHardRefillRate, err = getInt("RATE_LIMIT_HARD_REFILL_RATE", "4"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
