// Package constants provides shared constants for the mortgage-calculator application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyPlaces is the number of fraction digits shown for currency values
	CurrencyPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Input limits
const (
	// MaxLoanAmount is the largest accepted loan amount
	MaxLoanAmount = 100_000_000.0

	// MaxTermYears is the longest accepted loan term
	MaxTermYears = 50

	// MaxInterestRate is the largest accepted annual interest rate in percent
	MaxInterestRate = 100.0

	// MinInputExponent and MaxInputExponent bound the decimal exponent of
	// parsed inputs, e.g. "1e-20000000" is refused before any arithmetic
	MinInputExponent = -10
	MaxInputExponent = 10
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "mortgage-calculator.yaml"

	// EnvPrefix prefixes environment variable overrides, e.g. MORTGAGE_SERVER_ADDRESS
	EnvPrefix = "MORTGAGE"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum form or API body size (64 KB)
	DefaultMaxRequestSizeBytes int64 = 64 * 1024

	// DefaultSessionTTL is how long an idle calculator session is kept
	DefaultSessionTTL = "30m"

	// DefaultRequestsPerMinute is the default sustained request rate per session
	DefaultRequestsPerMinute = 120

	// DefaultRateLimitBurst is the default burst size per session
	DefaultRateLimitBurst = 20

	// DefaultCurrencySymbol prefixes displayed amounts
	DefaultCurrencySymbol = "₹"
)

// Logging defaults
const (
	// DefaultLogLevel is used when neither config nor CLI sets a level
	DefaultLogLevel = "info"

	// DefaultLogFormat is used when the config does not set a format
	DefaultLogFormat = "json"
)
