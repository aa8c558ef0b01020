package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
)

type Config struct {
	Env              string   `env:"ENVIRONMENT"`
	Timezone         string   `env:"TIMEZONE" envDefault:"America/Toronto"`
	BrandFilters     []string `env:"BRAND_FILTERS" envSeparator:","`
	PollIntervalSecs int      `env:"POLL_INTERVAL_SECS" envDefault:"60"`
	ToleranceMins    int      `env:"REMINDER_TOLERANCE_MINS" envDefault:"5"`
	DatabasePath     string   `env:"DATABASE_PATH" envDefault:"dropwatch.sqlite"`
	ServerPort       int      `env:"SERVER_PORT" envDefault:"8080"`
	BasicAuthCreds   string   `env:"BASIC_AUTH_CREDS"`
	ScrapeURL        string   `env:"SCRAPE_URL" envDefault:"https://sneakernews.com/release-dates/"`

	Discord struct {
		WebhookURL  string `env:"DISCORD_WEBHOOK_URL"`
		TimeoutSecs int    `env:"DISCORD_TIMEOUT_SECS" envDefault:"10"`
	}
	Mailgun struct {
		Domain      string `env:"MAILGUN_DOMAIN"`
		APIKey      string `env:"MAILGUN_API_KEY"`
		SenderFrom  string `env:"MAILGUN_SENDER_FROM"`
		TimeoutSecs int    `env:"MAILGUN_TIMEOUT_SECS" envDefault:"10"`
	}

	log    *zap.Logger
	loc    *time.Location
	brands map[string]bool
	creds  map[string]string
}

func NewConfig(log *zap.Logger) (*Config, error) {
	cfg := &Config{log: log}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown TIMEZONE '%s': %w", cfg.Timezone, err)
	}
	cfg.loc = loc

	if cfg.PollIntervalSecs <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL_SECS must be positive, got %d", cfg.PollIntervalSecs)
	}
	if cfg.ToleranceMins <= 0 {
		return nil, fmt.Errorf("REMINDER_TOLERANCE_MINS must be positive, got %d", cfg.ToleranceMins)
	}

	cfg.brands = make(map[string]bool)
	for _, brand := range cfg.BrandFilters {
		if brand = strings.Trim(brand, " "); brand != "" {
			cfg.brands[strings.ToLower(brand)] = true
		}
	}

	creds, err := cfg.parseCreds()
	if err != nil {
		return nil, err
	}
	cfg.creds = creds

	return cfg, nil
}

func (cfg *Config) Location() *time.Location {
	return cfg.loc
}

func (cfg *Config) PollInterval() time.Duration {
	return time.Duration(cfg.PollIntervalSecs) * time.Second
}

func (cfg *Config) Tolerance() time.Duration {
	return time.Duration(cfg.ToleranceMins) * time.Minute
}

// AllowsBrand applies the allow-list to a release's brand, ignoring case.
// An empty allow-list passes everything.
func (cfg *Config) AllowsBrand(brand string) bool {
	if len(cfg.brands) == 0 {
		return true
	}
	return cfg.brands[strings.ToLower(brand)]
}

func (cfg *Config) GetCreds() map[string]string {
	return cfg.creds
}

func (cfg *Config) parseCreds() (map[string]string, error) {
	if cfg.BasicAuthCreds == "" {
		// Auth is optional; the API logs that it is disabled.
		return nil, nil
	}

	creds := strings.Split(cfg.BasicAuthCreds, ",")
	if len(creds) == 0 {
		return nil, errors.New("BASIC_AUTH_CREDS envvar should be filled with comma-separated values -- user1:pass1,user2:pass2")
	}

	result := make(map[string]string)
	for _, cred := range creds {
		userPass := strings.Split(cred, ":")
		if len(userPass) != 2 {
			return nil, fmt.Errorf("failed to parse '%s', each credential should be delimited by a colon -- user1:pass1,user2:pass2", cred)
		}

		user, pass := userPass[0], userPass[1]
		result[strings.Trim(user, " ")] = strings.Trim(pass, " ")
	}

	return result, nil
}
