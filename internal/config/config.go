package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port string
	Mode string

	// Database configuration
	DatabaseURL string

	// Redis configuration
	RedisURL string

	// Payment callback authentication
	CallbackSecret    string
	InternalTaskToken string

	// Payment queue configuration
	EnablePaymentQueue     bool
	QueueMaxAttempts       int
	QueueJobTimeoutSeconds int
	QueueKeepResultSeconds int
	InternalBaseURL        string

	// Packages and pricing (KES)
	PackagePrices      map[int]int
	BoostPrice         int
	BoostDurationHours int

	// Referrals
	ReferralCommissionPct int
	ReferralRewardDays    int

	// Telegram notifications
	TelegramBotToken string
	AdminBotToken    string
	AdminChatID      int64

	// Brevo email alerts
	BrevoAPIKey    string
	BrevoFromEmail string
	AlertEmail     string

	// Maintenance
	SweepIntervalMinutes int
	ServiceName          string
}

var AppConfig *Config

func InitConfig() error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Ignore error if .env file doesn't exist
	}

	AppConfig = &Config{
		Port:              getEnv("PORT", "8080"),
		Mode:              getEnv("GIN_MODE", "debug"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CallbackSecret:    getEnv("MEGAPAY_CALLBACK_SECRET", ""),
		InternalTaskToken: getEnv("INTERNAL_TASK_TOKEN", ""),

		EnablePaymentQueue:     getEnvBool("ENABLE_PAYMENT_QUEUE", true),
		QueueMaxAttempts:       getEnvInt("QUEUE_MAX_ATTEMPTS", 5),
		QueueJobTimeoutSeconds: getEnvInt("QUEUE_JOB_TIMEOUT_SECONDS", 120),
		QueueKeepResultSeconds: getEnvInt("QUEUE_KEEP_RESULT_SECONDS", 3600),
		InternalBaseURL:        getEnv("WEB_INTERNAL_BASE_URL", "http://localhost:8080"),

		PackagePrices: map[int]int{
			3:  getEnvInt("PACKAGE_PRICE_3", 300),
			7:  getEnvInt("PACKAGE_PRICE_7", 600),
			30: getEnvInt("PACKAGE_PRICE_30", 1500),
			90: getEnvInt("PACKAGE_PRICE_90", 4000),
		},
		BoostPrice:         getEnvInt("BOOST_PRICE", 100),
		BoostDurationHours: getEnvInt("BOOST_DURATION_HOURS", 12),

		ReferralCommissionPct: getEnvInt("REFERRAL_COMMISSION_PCT", 20),
		ReferralRewardDays:    getEnvInt("REFERRAL_REWARD_DAYS", 3),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		AdminBotToken:    getEnv("ADMIN_BOT_TOKEN", ""),
		AdminChatID:      getEnvInt64("ADMIN_CHAT_ID", 0),

		BrevoAPIKey:    getEnv("BREVO_API_KEY", ""),
		BrevoFromEmail: getEnv("BREVO_FROM_EMAIL", ""),
		AlertEmail:     getEnv("ALERT_EMAIL", ""),

		SweepIntervalMinutes: getEnvInt("SWEEP_INTERVAL_MINUTES", 10),
		ServiceName:          getEnv("SERVICE_NAME", "Payments Service"),
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
