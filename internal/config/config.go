package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	// TIMEZONE must resolve on images without a zoneinfo database.
	_ "time/tzdata"
)

// Config holds application configuration
type Config struct {
	Port       string
	Env        string
	LogLevel   string
	AppVersion string

	DatabaseURL string
	AutoMigrate bool

	LeadStore  string
	LeadsTable string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	AttributionStore string
	AttributionTTL   time.Duration

	AnalyticsSink      string
	AnalyticsQueueURL  string
	OutboxPollInterval time.Duration

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	LeadArchiveBucket string

	EmailProvider        string
	SendGridAPIKey       string
	EmailFrom            string
	EmailFromName        string
	LeadNotifyRecipients []string

	CORSAllowedOrigins []string

	LeadAPIBaseURL   string
	LeadAPITimeout   time.Duration
	LayoutAPIBaseURL string

	Timezone      string
	LeadSource    string
	LeadFormName  string
	LeadCurrency  string
	VisitorCookie string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		AutoMigrate: getEnvAsBool("AUTO_MIGRATE", false),

		LeadStore:  strings.ToLower(getEnv("LEAD_STORE", "memory")),
		LeadsTable: getEnv("LEADS_TABLE", "leads"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AttributionStore: strings.ToLower(getEnv("ATTRIBUTION_STORE", "memory")),
		AttributionTTL:   getEnvAsDuration("ATTRIBUTION_TTL", 0),

		AnalyticsSink:      strings.ToLower(getEnv("ANALYTICS_SINK", "log")),
		AnalyticsQueueURL:  getEnv("ANALYTICS_QUEUE_URL", ""),
		OutboxPollInterval: getEnvAsDuration("OUTBOX_POLL_INTERVAL", 5*time.Second),

		AWSRegion:           getEnv("AWS_REGION", "sa-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		LeadArchiveBucket: getEnv("LEAD_ARCHIVE_BUCKET", ""),

		EmailProvider:        strings.ToLower(getEnv("EMAIL_PROVIDER", "none")),
		SendGridAPIKey:       getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:            getEnv("EMAIL_FROM", ""),
		EmailFromName:        getEnv("EMAIL_FROM_NAME", ""),
		LeadNotifyRecipients: getEnvAsList("LEAD_NOTIFY_RECIPIENTS"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		LeadAPIBaseURL:   getEnv("LEAD_API_BASE_URL", ""),
		LeadAPITimeout:   getEnvAsDuration("LEAD_API_TIMEOUT", 10*time.Second),
		LayoutAPIBaseURL: getEnv("LAYOUT_API_BASE_URL", ""),

		Timezone:      getEnv("TIMEZONE", "America/Sao_Paulo"),
		LeadSource:    getEnv("LEAD_SOURCE", "form_home"),
		LeadFormName:  getEnv("LEAD_FORM_NAME", "contact_home_main"),
		LeadCurrency:  getEnv("LEAD_CURRENCY", "BRL"),
		VisitorCookie: getEnv("VISITOR_COOKIE", "lc_visitor"),
	}
}

// Validate reports settings that cannot work together. All problems are
// returned at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.LeadStore {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("LEAD_STORE=postgres requires DATABASE_URL"))
		}
	case "dynamodb":
		if c.LeadsTable == "" {
			errs = append(errs, errors.New("LEAD_STORE=dynamodb requires LEADS_TABLE"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LEAD_STORE %q", c.LeadStore))
	}

	switch c.AttributionStore {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("ATTRIBUTION_STORE=redis requires REDIS_ADDR"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ATTRIBUTION_STORE %q", c.AttributionStore))
	}

	switch c.AnalyticsSink {
	case "log":
	case "sqs":
		if c.AnalyticsQueueURL == "" {
			errs = append(errs, errors.New("ANALYTICS_SINK=sqs requires ANALYTICS_QUEUE_URL"))
		}
	case "outbox":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("ANALYTICS_SINK=outbox requires DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ANALYTICS_SINK %q", c.AnalyticsSink))
	}

	switch c.EmailProvider {
	case "none", "ses":
	case "sendgrid":
		if c.SendGridAPIKey == "" {
			errs = append(errs, errors.New("EMAIL_PROVIDER=sendgrid requires SENDGRID_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown EMAIL_PROVIDER %q", c.EmailProvider))
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err))
	}
	return errors.Join(errs...)
}

// Location returns the configured time zone, UTC if it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s") or a plain number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	if secs := getEnvAsInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
