package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"salon-admin-cli/planner"
	"salon-admin-cli/service"
)

// Config holds all configuration values.
type Config struct {
	BaseURL            string        `mapstructure:"SALON_BASE_URL"`
	Env                string        `mapstructure:"SALON_ENV"`
	LogLevel           string        `mapstructure:"LOG_LEVEL"`
	LogFile            string        `mapstructure:"LOG_FILE"`
	Timezone           string        `mapstructure:"SALON_TIMEZONE"`
	AvailabilityPolicy string        `mapstructure:"AVAILABILITY_POLICY"`
	WrapMidnight       bool          `mapstructure:"WRAP_MIDNIGHT"`
	HTTPTimeout        time.Duration `mapstructure:"HTTP_TIMEOUT"`
	MaxRequestsPerSec  float64       `mapstructure:"MAX_REQUESTS_PER_SEC"`

	// Resolved from the raw values above by Load.
	Policy   planner.AvailabilityPolicy `mapstructure:"-"`
	Location *time.Location             `mapstructure:"-"`
}

var keys = []string{
	"SALON_BASE_URL",
	"SALON_ENV",
	"LOG_LEVEL",
	"LOG_FILE",
	"SALON_TIMEZONE",
	"AVAILABILITY_POLICY",
	"WRAP_MIDNIGHT",
	"HTTP_TIMEOUT",
	"MAX_REQUESTS_PER_SEC",
}

// Load reads .env, then config.yaml from the working directory or ./config,
// then the environment. Later sources win.
func Load() (Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	v.SetDefault("SALON_BASE_URL", service.DefaultBaseURL)
	v.SetDefault("SALON_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("SALON_TIMEZONE", "Australia/Melbourne")
	v.SetDefault("AVAILABILITY_POLICY", string(planner.PolicyTrustBackend))
	v.SetDefault("WRAP_MIDNIGHT", false)
	v.SetDefault("HTTP_TIMEOUT", 12*time.Second)
	v.SetDefault("MAX_REQUESTS_PER_SEC", 5)

	// Unmarshal only sees keys viper knows about, so bind them for env-only setups.
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) resolve() error {
	policy, err := planner.ParsePolicy(c.AvailabilityPolicy)
	if err != nil {
		return fmt.Errorf("AVAILABILITY_POLICY: %w", err)
	}
	c.Policy = policy

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("SALON_TIMEZONE: %w", err)
	}
	c.Location = loc

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.MaxRequestsPerSec < 0 {
		return fmt.Errorf("MAX_REQUESTS_PER_SEC must not be negative, got %v", c.MaxRequestsPerSec)
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}
