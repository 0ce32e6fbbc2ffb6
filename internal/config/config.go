// Package config loads the service configuration from defaults, a .env file,
// environment variables and command-line flags, in ascending priority.
// The result is validated before use.
package config

import (
	"flag"
	"log"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the dashboard frontend.
type Config struct {
	RunAddr          string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	APIBaseURL       string        `env:"API_BASE_URL" validate:"url"`
	PublicAPIBaseURL string        `env:"PUBLIC_API_BASE_URL" validate:"url"`
	BreachAPIBaseURL string        `env:"BREACH_API_BASE_URL" validate:"url"`
	LogLevel         string        `env:"LOG_LEVEL" validate:"loglevel"`
	Environment      string        `env:"ENVIRONMENT" validate:"environment"`
	AuthCookieName   string        `env:"AUTH_COOKIE_NAME" validate:"required"`
	LinksPerPage     int           `env:"LINKS_PER_PAGE" validate:"gt=0"`
	UpstreamTimeout  time.Duration `env:"UPSTREAM_TIMEOUT" validate:"gt=0"`
	LoginRatePerMin  int           `env:"LOGIN_RATE" validate:"gt=0"`
	LoginBurst       int           `env:"LOGIN_BURST" validate:"gt=0"`
}

// IsProduction reports whether the service runs in the production environment.
// It controls the Secure attribute of the session cookie.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[fieldLevel.Field().String()]
}

func validateEnvironment(fieldLevel validator.FieldLevel) bool {
	switch fieldLevel.Field().String() {
	case "development", "test", "production":
		return true
	}

	return false
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("environment", validateEnvironment)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption customizes config loading.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing skips command-line flag parsing; used by tests.
func WithDisableFlagsParsing(disable bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disable
	}
}

// New loads, merges and validates the configuration.
// Priority: flags > environment variables > .env file > defaults.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	cfg := &Config{
		RunAddr:          ":8080",
		APIBaseURL:       "http://localhost:3000",
		PublicAPIBaseURL: "http://localhost:3000",
		BreachAPIBaseURL: "https://api.pwnedpasswords.com",
		LogLevel:         "info",
		Environment:      "development",
		AuthCookieName:   "auth-session",
		LinksPerPage:     10,
		UpstreamTimeout:  10 * time.Second,
		LoginRatePerMin:  10,
		LoginBurst:       10,
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if !options.disableFlagsParsing {
		flag.StringVar(&cfg.RunAddr, "a", cfg.RunAddr, "address and port to run server")
		flag.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "backend API origin for server-side calls")
		flag.StringVar(&cfg.PublicAPIBaseURL, "public-api", cfg.PublicAPIBaseURL, "backend API origin exposed to browsers")
		flag.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "logger level")
		flag.StringVar(&cfg.Environment, "e", cfg.Environment, "runtime environment: development, test or production")
		flag.Parse()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
