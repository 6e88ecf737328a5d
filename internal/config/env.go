package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvHome         = "DCRVAULT_HOME"
	EnvNetwork      = "DCRVAULT_NETWORK"
	EnvLogLevel     = "DCRVAULT_LOG_LEVEL"
	EnvFeeRate      = "DCRVAULT_FEE_RATE"
	EnvStore        = "DCRVAULT_STORE"
	EnvOutputFormat = "DCRVAULT_OUTPUT_FORMAT"
	EnvVerbose      = "DCRVAULT_VERBOSE"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvNetwork); v != "" {
		cfg.Network = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(strings.TrimSpace(v))
	}

	// DCRVAULT_FEE_RATE is atoms per kB; unparsable or non-positive values are ignored
	if v := os.Getenv(EnvFeeRate); v != "" {
		if rate, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && rate > 0 {
			cfg.Fees.DefaultRate = rate
		}
	}

	if v := os.Getenv(EnvStore); v != "" {
		cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
