package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	S3         S3Config
	Redis      RedisConfig
	Kafka      KafkaConfig
	Gateway    GatewayConfig
	SMS        SMSConfig
	Telegram   TelegramConfig
	AdPlatform AdPlatformConfig
	Shop       ShopConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
	AutoMigrate     bool
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds bearer token configuration.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// S3Config holds AWS S3 configuration for promo code import files.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "promocodes/")
}

// RedisConfig holds the payment-timeout store settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds notification queue settings.
type KafkaConfig struct {
	Brokers       []string
	SMSTopic      string
	TelegramTopic string
	GroupID       string
}

// GatewayConfig holds payment gateway credentials.
type GatewayConfig struct {
	BaseURL   string
	ShopID    string
	SecretKey string
	ReturnURL string
	Timeout   time.Duration
}

// SMSConfig holds SMS provider settings.
type SMSConfig struct {
	BaseURL string
	APIID   string
	Sender  string
}

// TelegramConfig holds Telegram bot settings.
type TelegramConfig struct {
	BaseURL       string
	BotToken      string
	AdminChatID   string
	ChannelChatID string
}

// AdPlatformConfig holds ad reporting API settings.
type AdPlatformConfig struct {
	BaseURL     string
	Token       string
	ClientLogin string
	Attempts    int
	RetryDelay  time.Duration
}

// ShopConfig holds pricing and checkout rules.
type ShopConfig struct {
	CourierPrice          decimal.Decimal
	PostPrice             decimal.Decimal
	PickupPrice           decimal.Decimal
	FreeDeliveryThreshold decimal.Decimal
	PaymentTimeout        time.Duration
	AdminPhone            string
}

// RateLimitConfig holds per-client limits for public lookups.
type RateLimitConfig struct {
	RPS   int
	Burst int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "jewelry"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			Issuer:    getEnv("JWT_ISSUER", "jewelry-store"),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "eu-central-1"),
			Prefix:  getEnv("S3_PREFIX", "promocodes/"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvAsList("KAFKA_BROKERS", nil),
			SMSTopic:      getEnv("KAFKA_SMS_TOPIC", "notifications.sms"),
			TelegramTopic: getEnv("KAFKA_TELEGRAM_TOPIC", "notifications.telegram"),
			GroupID:       getEnv("KAFKA_GROUP_ID", "jewelry-notifications"),
		},
		Gateway: GatewayConfig{
			BaseURL:   getEnv("GATEWAY_BASE_URL", "https://api.yookassa.ru/v3"),
			ShopID:    getEnv("GATEWAY_SHOP_ID", ""),
			SecretKey: getEnv("GATEWAY_SECRET_KEY", ""),
			ReturnURL: getEnv("GATEWAY_RETURN_URL", "http://localhost:3000/orders"),
			Timeout:   getEnvAsDuration("GATEWAY_TIMEOUT", 15*time.Second),
		},
		SMS: SMSConfig{
			BaseURL: getEnv("SMS_BASE_URL", "https://sms.ru"),
			APIID:   getEnv("SMS_API_ID", ""),
			Sender:  getEnv("SMS_SENDER", ""),
		},
		Telegram: TelegramConfig{
			BaseURL:       getEnv("TELEGRAM_BASE_URL", "https://api.telegram.org"),
			BotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
			AdminChatID:   getEnv("TELEGRAM_ADMIN_CHAT_ID", ""),
			ChannelChatID: getEnv("TELEGRAM_CHANNEL_CHAT_ID", ""),
		},
		AdPlatform: AdPlatformConfig{
			BaseURL:     getEnv("ADS_BASE_URL", "https://api.direct.yandex.com/json/v5"),
			Token:       getEnv("ADS_TOKEN", ""),
			ClientLogin: getEnv("ADS_CLIENT_LOGIN", ""),
			Attempts:    getEnvAsInt("ADS_REPORT_ATTEMPTS", 10),
			RetryDelay:  getEnvAsDuration("ADS_REPORT_RETRY_DELAY", 20*time.Second),
		},
		Shop: ShopConfig{
			CourierPrice:          getEnvAsDecimal("DELIVERY_COURIER_PRICE", decimal.NewFromInt(500)),
			PostPrice:             getEnvAsDecimal("DELIVERY_POST_PRICE", decimal.NewFromInt(350)),
			PickupPrice:           getEnvAsDecimal("DELIVERY_PICKUP_PRICE", decimal.Zero),
			FreeDeliveryThreshold: getEnvAsDecimal("FREE_DELIVERY_THRESHOLD", decimal.Zero),
			PaymentTimeout:        getEnvAsDuration("PAYMENT_TIMEOUT", 30*time.Minute),
			AdminPhone:            getEnv("ADMIN_PHONE", ""),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsInt("RATE_LIMIT_RPS", 5),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	if c.Shop.PaymentTimeout <= 0 {
		return fmt.Errorf("payment timeout must be positive")
	}

	for name, price := range map[string]decimal.Decimal{
		"courier": c.Shop.CourierPrice,
		"post":    c.Shop.PostPrice,
		"pickup":  c.Shop.PickupPrice,
	} {
		if price.IsNegative() {
			return fmt.Errorf("invalid %s delivery price: %s", name, price)
		}
	}

	if c.AdPlatform.Attempts < 1 {
		return fmt.Errorf("ad report attempts must be at least 1")
	}

	if c.RateLimit.RPS < 1 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("rate limit rps and burst must be at least 1")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Enabled reports whether any broker is configured.
func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsDecimal retrieves an environment variable as a decimal amount or returns a default value.
func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated environment variable.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
