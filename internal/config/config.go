package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Sink provider names accepted in SINK_PROVIDERS.
const (
	SinkSheets   = "sheets"
	SinkAirtable = "airtable"
	SinkPostgres = "postgres"
)

// Email provider names accepted in EMAIL_PROVIDER.
const (
	EmailNone     = "none"
	EmailSendGrid = "sendgrid"
	EmailSES      = "ses"
	EmailStub     = "stub"
)

// DefaultTimezone is the business timezone used for "not in the past" checks.
const DefaultTimezone = "Asia/Kuala_Lumpur"

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Sinks, written in order.
	SinkProviders []string
	SinkTimeout   time.Duration
	BookingsTable string
	FleetTable    string

	// Google Sheets Apps Script web app
	SheetsWebAppURL string
	SheetsAPIToken  string

	// Airtable
	AirtableBaseURL string
	AirtableBaseID  string
	AirtableToken   string

	// Postgres archive
	DatabaseURL string

	BusinessTimezone string

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Lead notification email
	EmailProvider     string
	NotifyEmailTo     []string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SinkProviders: lowerAll(getEnvAsList("SINK_PROVIDERS", []string{SinkSheets})),
		SinkTimeout:   getEnvAsDuration("SINK_TIMEOUT", 10*time.Second),
		BookingsTable: getEnv("BOOKINGS_TABLE", "consumer_bookings"),
		FleetTable:    getEnv("FLEET_TABLE", "corporate_fleet_enquiries"),

		SheetsWebAppURL: getEnv("GOOGLE_SHEETS_WEBAPP_URL", ""),
		SheetsAPIToken:  getEnv("API_TOKEN", getEnv("GOOGLE_SHEETS_API_TOKEN", "")),

		AirtableBaseURL: getEnv("AIRTABLE_BASE_URL", "https://api.airtable.com/v0"),
		AirtableBaseID:  getEnv("AIRTABLE_BASE_ID", ""),
		AirtableToken:   getEnv("AIRTABLE_TOKEN", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		BusinessTimezone: getEnv("BUSINESS_TIMEZONE", DefaultTimezone),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", EmailNone))),
		NotifyEmailTo:     getEnvAsList("NOTIFY_EMAIL_TO", nil),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Nomad Detailing"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),

		AWSRegion:           getEnv("AWS_REGION", "ap-southeast-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// ValidateIntake reports every setting the configured sinks and email
// provider are missing.
func (c *Config) ValidateIntake() error {
	var errs []error
	if len(c.SinkProviders) == 0 {
		errs = append(errs, errors.New("config: SINK_PROVIDERS is empty"))
	}
	for _, p := range c.SinkProviders {
		switch p {
		case SinkSheets:
			if c.SheetsWebAppURL == "" {
				errs = append(errs, errors.New("config: GOOGLE_SHEETS_WEBAPP_URL is required for the sheets sink"))
			}
			if c.SheetsAPIToken == "" {
				errs = append(errs, errors.New("config: API_TOKEN or GOOGLE_SHEETS_API_TOKEN is required for the sheets sink"))
			}
		case SinkAirtable:
			if c.AirtableBaseID == "" {
				errs = append(errs, errors.New("config: AIRTABLE_BASE_ID is required for the airtable sink"))
			}
			if c.AirtableToken == "" {
				errs = append(errs, errors.New("config: AIRTABLE_TOKEN is required for the airtable sink"))
			}
		case SinkPostgres:
			if c.DatabaseURL == "" {
				errs = append(errs, errors.New("config: DATABASE_URL is required for the postgres sink"))
			}
		default:
			errs = append(errs, errors.New("config: unknown sink provider "+strconv.Quote(p)))
		}
	}

	switch c.EmailProvider {
	case "", EmailNone, EmailStub:
	case EmailSendGrid:
		if c.SendGridAPIKey == "" || c.SendGridFromEmail == "" {
			errs = append(errs, errors.New("config: SENDGRID_API_KEY and SENDGRID_FROM_EMAIL are required for sendgrid email"))
		}
	case EmailSES:
		if c.SESFromEmail == "" {
			errs = append(errs, errors.New("config: SES_FROM_EMAIL is required for ses email"))
		}
	default:
		errs = append(errs, errors.New("config: unknown email provider "+strconv.Quote(c.EmailProvider)))
	}
	return errors.Join(errs...)
}

// Location resolves BusinessTimezone, falling back to a fixed UTC+8 zone when
// the tz database has no entry for it.
func (c *Config) Location() *time.Location {
	if c.BusinessTimezone != "" {
		if loc, err := time.LoadLocation(c.BusinessTimezone); err == nil {
			return loc
		}
	}
	return time.FixedZone("MYT", 8*60*60)
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
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable and drops blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
