// Package config defines the data structures related to configuration and
// includes functions for loading and normalizing the config.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for mortgage-calculator.
type Configuration struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging,omitempty"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server,omitempty"`
	Display DisplayConfig `mapstructure:"display" yaml:"display,omitempty"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// ServerConfig defines runtime parameters for the HTTP server.
type ServerConfig struct {
	Address        string          `mapstructure:"address" yaml:"address,omitempty"`
	MaxRequestSize string          `mapstructure:"maxRequestSize" yaml:"maxRequestSize,omitempty"`
	SessionTTL     string          `mapstructure:"sessionTTL" yaml:"sessionTTL,omitempty"`
	RateLimit      RateLimitConfig `mapstructure:"rateLimit" yaml:"rateLimit,omitempty"`

	maxRequestSizeBytes int64
	sessionTTL          time.Duration
}

// RateLimitConfig holds the per-session token bucket settings.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled" yaml:"enabled"`
	RequestsPerMinute int  `mapstructure:"requestsPerMinute" yaml:"requestsPerMinute,omitempty"`
	Burst             int  `mapstructure:"burst" yaml:"burst,omitempty"`
}

// DisplayConfig holds presentation options.
type DisplayConfig struct {
	CurrencySymbol string `mapstructure:"currencySymbol" yaml:"currencySymbol,omitempty"`
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", constants.DefaultLogLevel)
	v.SetDefault("logging.format", constants.DefaultLogFormat)
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxRequestSize", strconv.FormatInt(constants.DefaultMaxRequestSizeBytes, 10))
	v.SetDefault("server.sessionTTL", constants.DefaultSessionTTL)
	v.SetDefault("server.rateLimit.enabled", true)
	v.SetDefault("server.rateLimit.requestsPerMinute", constants.DefaultRequestsPerMinute)
	v.SetDefault("server.rateLimit.burst", constants.DefaultRateLimitBurst)
	v.SetDefault("display.currencySymbol", constants.DefaultCurrencySymbol)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A missing file yields the defaults. Environment
// variables prefixed with MORTGAGE_, including those from a .env file in the
// working directory, override both.
func LoadConfiguration(configPath string) (*Configuration, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var pathErr *os.PathError
			if !errors.As(err, &pathErr) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file, %w", err)
			}
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if err := configuration.normalize(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

func (c *Configuration) normalize() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = constants.DefaultLogLevel
	}
	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = constants.DefaultLogFormat
	}
	if err := validation.ValidateLogFormat(c.Logging.Format); err != nil {
		return err
	}

	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}

	if c.Display.CurrencySymbol == "" {
		c.Display.CurrencySymbol = constants.DefaultCurrencySymbol
	}

	return c.Server.normalize()
}

func (s *ServerConfig) normalize() error {
	if s.Address == "" {
		s.Address = constants.DefaultServerAddress
	}

	size, err := ParseSize(s.MaxRequestSize)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = constants.DefaultMaxRequestSizeBytes
	}
	s.maxRequestSizeBytes = size

	ttlStr := strings.TrimSpace(s.SessionTTL)
	if ttlStr == "" {
		ttlStr = constants.DefaultSessionTTL
	}
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return fmt.Errorf("invalid session TTL %q: %w", s.SessionTTL, err)
	}
	if ttl <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", ttl)
	}
	s.sessionTTL = ttl

	if s.RateLimit.RequestsPerMinute <= 0 {
		s.RateLimit.RequestsPerMinute = constants.DefaultRequestsPerMinute
	}
	if s.RateLimit.Burst <= 0 {
		s.RateLimit.Burst = constants.DefaultRateLimitBurst
	}
	return nil
}

// MaxRequestSizeBytes returns the configured request size limit in bytes.
func (s ServerConfig) MaxRequestSizeBytes() int64 {
	if s.maxRequestSizeBytes <= 0 {
		return constants.DefaultMaxRequestSizeBytes
	}
	return s.maxRequestSizeBytes
}

// SessionTTLDuration returns the parsed idle session lifetime.
func (s ServerConfig) SessionTTLDuration() time.Duration {
	if s.sessionTTL <= 0 {
		ttl, _ := time.ParseDuration(constants.DefaultSessionTTL)
		return ttl
	}
	return s.sessionTTL
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	if warning := validation.ValidateSessionTTL(c.Server.SessionTTLDuration()); warning != "" {
		warnings = append(warnings, warning)
	}
	warnings = append(warnings, validation.ValidateRateLimit(
		c.Server.RateLimit.Enabled, c.Server.RateLimit.RequestsPerMinute, c.Server.RateLimit.Burst)...)
	return warnings
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxRequestSizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	if n > math.MaxInt64/multiplier {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return n * multiplier, nil
}
