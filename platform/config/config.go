// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// CheckoutConfig provides settings for the payment checkout provider.
type CheckoutConfig interface {
	GetRedisURL() string
	GetCheckoutBaseURL() string
	GetCheckoutSessionTTL() time.Duration
	GetCheckoutWebhookSecret() string
}

// PricingConfig provides reveal pricing defaults by lead tier.
type PricingConfig interface {
	GetBaseRevealPriceCents() int64
	GetPremiumRevealPriceCents() int64
}

// AssignmentConfig provides assignment policy settings.
type AssignmentConfig interface {
	// GetAllowEligibilityBypass reports whether a manual admin assignment may
	// bypass the eligibility matcher. The bypass is always audited.
	GetAllowEligibilityBypass() bool
	// GetSuggestionWindow is the rolling window after which a contractor with
	// no recent assignment is flagged as suggested.
	GetSuggestionWindow() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	JWTAccessSecret         string
	AccessTokenTTL          time.Duration
	CORSAllowAll            bool
	CORSOrigins             []string
	EmailEnabled            bool
	SMTPHost                string
	SMTPPort                int
	SMTPUsername            string
	SMTPPassword            string
	EmailFromName           string
	EmailFromAddress        string
	RedisURL                string
	RedisTLSInsecure        bool
	AsynqQueueName          string
	AsynqConcurrency        int
	CheckoutBaseURL         string
	CheckoutSessionTTL      time.Duration
	CheckoutWebhookSecret   string
	BaseRevealPriceCents    int64
	PremiumRevealPriceCents int64
	AllowEligibilityBypass  bool
	SuggestionWindow        time.Duration
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// AuthServiceConfig implementation
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// CheckoutConfig implementation
func (c *Config) GetCheckoutBaseURL() string           { return c.CheckoutBaseURL }
func (c *Config) GetCheckoutSessionTTL() time.Duration { return c.CheckoutSessionTTL }
func (c *Config) GetCheckoutWebhookSecret() string     { return c.CheckoutWebhookSecret }

// PricingConfig implementation
func (c *Config) GetBaseRevealPriceCents() int64    { return c.BaseRevealPriceCents }
func (c *Config) GetPremiumRevealPriceCents() int64 { return c.PremiumRevealPriceCents }

// AssignmentConfig implementation
func (c *Config) GetAllowEligibilityBypass() bool    { return c.AllowEligibilityBypass }
func (c *Config) GetSuggestionWindow() time.Duration { return c.SuggestionWindow }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		JWTAccessSecret:         getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:          mustDuration(getEnv("JWT_ACCESS_TTL", "15m")),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		EmailEnabled:            emailEnabled && smtpHost != "",
		SMTPHost:                smtpHost,
		SMTPPort:                int(mustInt64(getEnv("SMTP_PORT", "587"))),
		SMTPUsername:            getEnv("SMTP_USERNAME", ""),
		SMTPPassword:            getEnv("SMTP_PASSWORD", ""),
		EmailFromName:           getEnv("EMAIL_FROM_NAME", "LeadMarket"),
		EmailFromAddress:        getEnv("EMAIL_FROM_ADDRESS", ""),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisTLSInsecure:        strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:        int(mustInt64(getEnv("ASYNQ_CONCURRENCY", "10"))),
		CheckoutBaseURL:         getEnv("CHECKOUT_BASE_URL", "http://localhost:8080"),
		CheckoutSessionTTL:      mustDuration(getEnv("CHECKOUT_SESSION_TTL", "30m")),
		CheckoutWebhookSecret:   getEnv("CHECKOUT_WEBHOOK_SECRET", ""),
		BaseRevealPriceCents:    mustInt64(getEnv("REVEAL_PRICE_BASE_CENTS", "2500")),
		PremiumRevealPriceCents: mustInt64(getEnv("REVEAL_PRICE_PREMIUM_CENTS", "4500")),
		AllowEligibilityBypass:  strings.EqualFold(getEnv("ASSIGN_ALLOW_ELIGIBILITY_BYPASS", "true"), "true"),
		SuggestionWindow:        mustDuration(getEnv("ASSIGN_SUGGESTION_WINDOW", "720h")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
