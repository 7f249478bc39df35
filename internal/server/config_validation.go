// config_validation.go - Startup configuration validation.
//
// Collects every problem with the environment before the server starts so
// operators see one complete message instead of the first failure only.
package server

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// ConfigValidationError represents a configuration validation error.
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// ConfigValidator validates application configuration.
type ConfigValidator struct {
	errors []ConfigValidationError
}

// NewConfigValidator creates a new configuration validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		errors: make([]ConfigValidationError, 0),
	}
}

// AddError adds a validation error.
func (v *ConfigValidator) AddError(field, message string) {
	v.errors = append(v.errors, ConfigValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *ConfigValidator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *ConfigValidator) Errors() []ConfigValidationError {
	return v.errors
}

// ErrorString returns a formatted string of all errors.
func (v *ConfigValidator) ErrorString() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Configuration validation failed with %d error(s):\n", len(v.errors)))
	for i, err := range v.errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidateURL validates that a value is an http(s) URL.
func (v *ConfigValidator) ValidateURL(key, value string) {
	if value == "" {
		return
	}

	parsed, err := url.Parse(value)
	if err != nil {
		v.AddError(key, fmt.Sprintf("invalid URL format: %v", err))
		return
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		v.AddError(key, "URL must use http or https scheme")
	}
}

// ValidatePort validates that a value is a valid port number.
func (v *ConfigValidator) ValidatePort(key, value string) {
	if value == "" {
		return
	}

	// Handle ":port" format
	portStr := strings.TrimPrefix(value, ":")

	port, err := strconv.Atoi(portStr)
	if err != nil {
		v.AddError(key, "port must be a number")
		return
	}

	if port < 1 || port > 65535 {
		v.AddError(key, "port must be between 1 and 65535")
	}
}

// ValidateEnum validates that a value is one of allowed options.
func (v *ConfigValidator) ValidateEnum(key, value string, allowed []string) {
	if value == "" {
		return
	}

	for _, opt := range allowed {
		if value == opt {
			return
		}
	}

	v.AddError(key, fmt.Sprintf("must be one of: %s (got: %s)", strings.Join(allowed, ", "), value))
}

// ValidateNonNegativeInt validates that a value is a whole number >= 0.
func (v *ConfigValidator) ValidateNonNegativeInt(key, value string) {
	if value == "" {
		return
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		v.AddError(key, "must be a non-negative integer")
	}
}

// ValidateAllTogether requires that either all or none of keys are set.
func (v *ConfigValidator) ValidateAllTogether(keys ...string) {
	set := 0
	for _, k := range keys {
		if os.Getenv(k) != "" {
			set++
		}
	}
	if set != 0 && set != len(keys) {
		v.AddError(strings.Join(keys, ","), "must be set together")
	}
}

// ValidateAllConfiguration checks the process environment.
//
// DATABASE_URL is deliberately not required: without it the service still
// starts and answers data requests with 500.
func ValidateAllConfiguration() error {
	v := NewConfigValidator()

	v.ValidatePort("PORT", os.Getenv("PORT"))
	v.ValidateEnum("FLAVORS_DB_DRIVER", os.Getenv("FLAVORS_DB_DRIVER"), []string{DriverPgx, DriverPQ})
	v.ValidateNonNegativeInt("FLAVORS_WRITE_RATE_LIMIT", os.Getenv("FLAVORS_WRITE_RATE_LIMIT"))

	// Log configuration
	v.ValidateEnum("FLAVORS_LOG_FORMAT", os.Getenv("FLAVORS_LOG_FORMAT"), []string{"json", "text"})
	v.ValidateEnum("FLAVORS_LOG_LEVEL", os.Getenv("FLAVORS_LOG_LEVEL"), []string{"debug", "info", "warn", "error"})
	v.ValidateEnum("FLAVORS_ENV", os.Getenv("FLAVORS_ENV"), []string{"development", "production", "staging"})

	// Optional object storage front end
	v.ValidateAllTogether("FLAVORS_STATIC_BUCKET", "FLAVORS_S3_ENDPOINT", "FLAVORS_S3_ACCESS_KEY", "FLAVORS_S3_SECRET_KEY")
	if endpoint := os.Getenv("FLAVORS_S3_ENDPOINT"); strings.Contains(endpoint, "://") {
		v.ValidateURL("FLAVORS_S3_ENDPOINT", endpoint)
	}

	if v.HasErrors() {
		return fmt.Errorf("%s", v.ErrorString())
	}
	return nil
}

// WarnOnOptionalMissingConfig logs warnings for optional but recommended config.
func WarnOnOptionalMissingConfig() {
	warnings := make([]string, 0)

	if os.Getenv("DATABASE_URL") == "" {
		warnings = append(warnings, "DATABASE_URL not set - flavor endpoints will return 500")
	} else if u := os.Getenv("DATABASE_URL"); !strings.HasPrefix(u, "postgres://") && !strings.HasPrefix(u, "postgresql://") {
		warnings = append(warnings, "DATABASE_URL is not a postgres:// URL - relying on driver DSN parsing")
	}

	if os.Getenv("FLAVORS_LOG_FORMAT") == "" {
		warnings = append(warnings, "FLAVORS_LOG_FORMAT not set - using text format (consider 'json' for production)")
	}

	if len(warnings) > 0 {
		Warn("configuration warnings", map[string]any{
			"count":    len(warnings),
			"warnings": warnings,
		})
	}
}
