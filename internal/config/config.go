// Package config loads sheetnorm settings from SHEETNORM_* environment
// variables. Command-line flags override these values.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix.
const Prefix = "SHEETNORM"

// Config is the full application configuration.
type Config struct {
	Logging   LoggingConfig   `envconfig:"LOGGING"`
	Normalize NormalizeConfig `envconfig:"NORMALIZE"`
	Pivot     PivotConfig     `envconfig:"PIVOT"`
	Verify    VerifyConfig    `envconfig:"VERIFY"`
	// MetricsFile is the prometheus textfile written after each run. Empty
	// disables it.
	MetricsFile string `envconfig:"METRICS_FILE"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format string `envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}

// NormalizeConfig configures the workbook normalizer and its outputs.
type NormalizeConfig struct {
	YearMin       int    `envconfig:"YEAR_MIN" default:"1990" validate:"gte=0"`
	YearMax       int    `envconfig:"YEAR_MAX" default:"2100" validate:"gtefield=YearMin"`
	DefaultRegion string `envconfig:"DEFAULT_REGION" default:"PERÚ" validate:"required"`
	HandlersFile  string `envconfig:"HANDLERS_FILE"`
	OutputCSV     string `envconfig:"OUTPUT_CSV" default:"data/processed/siniestros_normalizado.csv" validate:"required"`
	Parquet       string `envconfig:"PARQUET" default:"data/processed/siniestros_normalizado.parquet"`
	SQLite        string `envconfig:"SQLITE"`
	Report        string `envconfig:"REPORT"`
}

// PivotConfig configures the wide pivot.
type PivotConfig struct {
	OutDir          string `envconfig:"OUTDIR" default:"data/processed" validate:"required"`
	BaseName        string `envconfig:"BASE_NAME" default:"siniestros_normalizado_pivot" validate:"required"`
	FillMissingZero bool   `envconfig:"FILL_MISSING_ZERO" default:"false"`
}

// VerifyConfig configures the verify command.
type VerifyConfig struct {
	Sample int   `envconfig:"SAMPLE" default:"10" validate:"gte=0"`
	Seed   int64 `envconfig:"SEED" default:"42"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks field constraints. Call it again after applying flag
// overrides.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Namespace(), fe.Param(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("%s must be >= %s", fe.Namespace(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
	}
}
