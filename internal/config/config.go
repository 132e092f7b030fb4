package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI    string
	MongoDbName string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Server
	ApiPort string
	BaseURL string // Public base URL used for payment redirect targets

	// Admin access
	AdminKeyHash  string // bcrypt hash of the admin key; exchanged for a token
	AdminTokenKey string // HMAC signing secret for admin capability tokens
	AdminTokenTTL time.Duration

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string

	// Pricing (cents)
	JobStandardPrice  int64
	JobFeaturedPrice  int64
	TierProPrice      int64
	TierFeaturedPrice int64

	// Listings
	JobExpiryDays   int
	SearchMaxLimit  int
	SearchDefLimit  int
	LeaderboardSize int

	// Email
	SmtpHost        string
	SmtpPort        int
	SmtpUsername    string
	SmtpPassword    string
	SmtpFromAddress string

	// AWS S3 (logo re-hosting)
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	LogoBaseS3URL      string
	LogoMaxDimension   int

	// Rate limiting
	RateLimitBucketSize int
	RateLimitRefillRate int // tokens per second
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	getInt := func(key, defaultValue string) (int, error) {
		v, convErr := strconv.Atoi(getEnv(key, defaultValue))
		if convErr != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, convErr)
		}
		return v, nil
	}

	getInt64 := func(key, defaultValue string) (int64, error) {
		v, convErr := strconv.ParseInt(getEnv(key, defaultValue), 10, 64)
		if convErr != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, convErr)
		}
		return v, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "acpmarket")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, err = getInt("REDIS_DB", "0")
	if err != nil {
		return nil, err
	}

	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.BaseURL = getEnv("BASE_URL", "http://localhost:3000")

	cfg.AdminKeyHash = getEnv("ADMIN_KEY_HASH", "")
	cfg.AdminTokenKey, err = getRequiredEnv("ADMIN_TOKEN_KEY")
	if err != nil {
		return nil, err
	}
	adminTTLMinutes, err := getInt("ADMIN_TOKEN_TTL_MINUTES", "60")
	if err != nil {
		return nil, err
	}
	cfg.AdminTokenTTL = time.Duration(adminTTLMinutes) * time.Minute

	// Stripe keys are optional: when absent, paid flows return an explicit
	// "not configured" error instead of silently skipping payment.
	cfg.StripeSecretKey = getEnv("STRIPE_SECRET_KEY", "")
	cfg.StripeWebhookSecret = getEnv("STRIPE_WEBHOOK_SECRET", "")

	cfg.JobStandardPrice, err = getInt64("JOB_STANDARD_PRICE_CENTS", "4900")
	if err != nil {
		return nil, err
	}
	cfg.JobFeaturedPrice, err = getInt64("JOB_FEATURED_PRICE_CENTS", "12900")
	if err != nil {
		return nil, err
	}
	cfg.TierProPrice, err = getInt64("TIER_PRO_PRICE_CENTS", "4900")
	if err != nil {
		return nil, err
	}
	cfg.TierFeaturedPrice, err = getInt64("TIER_FEATURED_PRICE_CENTS", "9900")
	if err != nil {
		return nil, err
	}

	cfg.JobExpiryDays, err = getInt("JOB_EXPIRY_DAYS", "30")
	if err != nil {
		return nil, err
	}
	cfg.SearchMaxLimit, err = getInt("SEARCH_MAX_LIMIT", "100")
	if err != nil {
		return nil, err
	}
	cfg.SearchDefLimit, err = getInt("SEARCH_DEFAULT_LIMIT", "20")
	if err != nil {
		return nil, err
	}
	cfg.LeaderboardSize, err = getInt("LEADERBOARD_SIZE", "25")
	if err != nil {
		return nil, err
	}

	cfg.SmtpHost = getEnv("SMTP_HOST", "")
	cfg.SmtpPort, err = getInt("SMTP_PORT", "587")
	if err != nil {
		return nil, err
	}
	cfg.SmtpUsername = getEnv("SMTP_USERNAME", "")
	cfg.SmtpPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SmtpFromAddress = getEnv("SMTP_FROM_ADDRESS", "noreply@acpmarket.example.com")

	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.LogoBaseS3URL = getEnv("LOGO_BASE_S3_URL", "")
	cfg.LogoMaxDimension, err = getInt("LOGO_MAX_DIMENSION", "512")
	if err != nil {
		return nil, err
	}

	cfg.RateLimitBucketSize, err = getInt("RATE_LIMIT_BUCKET_SIZE", "20")
	if err != nil {
		return nil, err
	}
	cfg.RateLimitRefillRate, err = getInt("RATE_LIMIT_REFILL_RATE", "10")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// StripeConfigured reports whether the payment collaborator can be used.
func (c *Config) StripeConfigured() bool {
	return c.StripeSecretKey != ""
}
