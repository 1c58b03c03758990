package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// CronParser parses six-field cron expressions (seconds first)
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	// Registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("evmode", validateEVMode)
	_ = v.RegisterValidation("scoringpolicy", validateScoringPolicy)
	_ = v.RegisterValidation("cronspec", validateCronSpec)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateEVMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "sum", "exact":
		return true
	default:
		return false
	}
}

func validateScoringPolicy(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "halt", "exclude":
		return true
	default:
		return false
	}
}

func validateCronSpec(fl validator.FieldLevel) bool {
	_, err := CronParser.Parse(fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Parlay.MinLegs > cfg.Parlay.MaxLegs {
		return fmt.Errorf("parlay min_legs (%d) cannot exceed max_legs (%d)", cfg.Parlay.MinLegs, cfg.Parlay.MaxLegs)
	}

	for i, pair := range cfg.Parlay.Conflicts {
		if strings.EqualFold(pair.A, pair.B) {
			return fmt.Errorf("parlay conflict %d pairs %q with itself", i, pair.A)
		}
	}

	if cfg.Database.MinConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("min_connections cannot exceed max_connections")
	}

	if cfg.IsProduction() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var errMsg strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.StructField()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required", "required_if":
			fmt.Fprintf(&errMsg, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&errMsg, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&errMsg, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&errMsg, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&errMsg, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&errMsg, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "evmode":
			fmt.Fprintf(&errMsg, "- Field '%s' must be one of: sum, exact\n", field)
		case "scoringpolicy":
			fmt.Fprintf(&errMsg, "- Field '%s' must be one of: halt, exclude\n", field)
		case "cronspec":
			fmt.Fprintf(&errMsg, "- Field '%s' is not a valid six-field cron expression: '%v'\n", field, value)
		case "oneof":
			fmt.Fprintf(&errMsg, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&errMsg, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", errMsg.String())
}
