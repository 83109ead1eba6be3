package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

type Config struct {
	// HTTP Server
	Port           string
	RateLimit      string
	AllowedOrigins []string

	// Storage
	DataBackend  string
	DataFile     string
	SQLiteDBPath string

	// AMQP, disabled when AMQPURL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror
	GoogleSpreadsheetID      string
	GoogleTransactionsSheet  string
	GoogleLedgerSheet        string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Worker
	SyncInterval time.Duration

	// Misc
	LogLevel       string
	LogJSON        bool
	ReportCacheTTL time.Duration
}

var validBackends = []string{"json", "sqlite"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8081")
	v.SetDefault("RATE_LIMIT", "60-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DATA_BACKEND", "json")
	v.SetDefault("DATA_FILE", "data.json")
	v.SetDefault("SQLITE_DB_PATH", "./data/budget.db")

	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "budget")
	v.SetDefault("AMQP_QUEUE", "budget_changes")

	v.SetDefault("GOOGLE_SPREADSHEET_ID", "")
	v.SetDefault("GOOGLE_TRANSACTIONS_SHEET", "Transactions")
	v.SetDefault("GOOGLE_LEDGER_SHEET", "Ledger")
	v.SetDefault("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	v.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	v.SetDefault("GOOGLE_APPLICATION_CREDENTIALS", "")

	v.SetDefault("SYNC_INTERVAL", "5m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", false)
	v.SetDefault("REPORT_CACHE_TTL", "5m")
}

// Load reads configuration from the environment. Call godotenv first to
// pick up a local .env file.
func Load() *Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Port:           strings.TrimSpace(v.GetString("PORT")),
		RateLimit:      strings.TrimSpace(v.GetString("RATE_LIMIT")),
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),

		DataBackend:  strings.ToLower(strings.TrimSpace(v.GetString("DATA_BACKEND"))),
		DataFile:     strings.TrimSpace(v.GetString("DATA_FILE")),
		SQLiteDBPath: strings.TrimSpace(v.GetString("SQLITE_DB_PATH")),

		AMQPURL:      strings.TrimSpace(v.GetString("AMQP_URL")),
		AMQPExchange: strings.TrimSpace(v.GetString("AMQP_EXCHANGE")),
		AMQPQueue:    strings.TrimSpace(v.GetString("AMQP_QUEUE")),

		GoogleSpreadsheetID:      strings.TrimSpace(v.GetString("GOOGLE_SPREADSHEET_ID")),
		GoogleTransactionsSheet:  strings.TrimSpace(v.GetString("GOOGLE_TRANSACTIONS_SHEET")),
		GoogleLedgerSheet:        strings.TrimSpace(v.GetString("GOOGLE_LEDGER_SHEET")),
		GoogleServiceAccountJSON: strings.TrimSpace(v.GetString("GOOGLE_SERVICE_ACCOUNT_JSON")),
		GoogleServiceAccountFile: strings.TrimSpace(v.GetString("GOOGLE_SERVICE_ACCOUNT_FILE")),

		SyncInterval:   v.GetDuration("SYNC_INTERVAL"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogJSON:        v.GetBool("LOG_JSON"),
		ReportCacheTTL: v.GetDuration("REPORT_CACHE_TTL"),
	}
	if cfg.GoogleServiceAccountFile == "" {
		cfg.GoogleServiceAccountFile = strings.TrimSpace(v.GetString("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return cfg
}

// AMQPEnabled reports whether change events should be published.
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// SheetsEnabled reports whether the Google Sheets mirror is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimit != "" {
		if _, err := limiter.NewRateFromFormatted(c.RateLimit); err != nil {
			errors = append(errors, fmt.Sprintf("invalid rate limit '%s': %v", c.RateLimit, err))
		}
	}

	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "json":
		if c.DataFile == "" {
			errors = append(errors, "data file path cannot be empty when using json backend")
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleTransactionsSheet == "" || c.GoogleLedgerSheet == "" {
			errors = append(errors, "Google sheet names cannot be empty when a spreadsheet ID is provided")
		} else if c.GoogleTransactionsSheet == c.GoogleLedgerSheet {
			errors = append(errors, "transactions and ledger must be mirrored to different sheets")
		}
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}

	if c.ReportCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid report cache TTL %v: must not be negative", c.ReportCacheTTL))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
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
