package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joshharrison/loomplan/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "llm.max_tasks")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogFormats returns the accepted log.format values
func ValidLogFormats() []string {
	return []string{logging.FormatText, logging.FormatJSON}
}

// ValidOutputFormats returns the accepted output.format values
func ValidOutputFormats() []string {
	return []string{"text", "json", "dot"}
}

// ValidColorModes returns the accepted output.color values
func ValidColorModes() []string {
	return []string{"auto", "always", "never"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	level := strings.ToUpper(c.Log.Level)
	if !slices.Contains(logging.ValidLevels(), level) {
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Value:   c.Log.Level,
			Message: fmt.Sprintf("must be one of %s", strings.Join(logging.ValidLevels(), ", ")),
		})
	}
	if !slices.Contains(ValidLogFormats(), strings.ToLower(c.Log.Format)) {
		errors = append(errors, ValidationError{
			Field:   "log.format",
			Value:   c.Log.Format,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}

	if c.LLM.MaxTokens <= 0 {
		errors = append(errors, ValidationError{Field: "llm.max_tokens", Value: c.LLM.MaxTokens, Message: "must be positive"})
	}
	if c.LLM.MaxTasks < 1 {
		errors = append(errors, ValidationError{Field: "llm.max_tasks", Value: c.LLM.MaxTasks, Message: "must be at least 1"})
	}
	if c.LLM.Timeout < 0 {
		errors = append(errors, ValidationError{Field: "llm.timeout", Value: c.LLM.Timeout, Message: "must not be negative"})
	}

	if c.Schedule.StartDate != "" {
		if _, err := time.Parse("2006-01-02", c.Schedule.StartDate); err != nil {
			errors = append(errors, ValidationError{
				Field:   "schedule.start_date",
				Value:   c.Schedule.StartDate,
				Message: "must be a YYYY-MM-DD date",
			})
		}
	}

	if c.Estimate.Buffer < 1 {
		errors = append(errors, ValidationError{Field: "estimate.buffer", Value: c.Estimate.Buffer, Message: "must be at least 1.0"})
	}

	if !slices.Contains(ValidOutputFormats(), c.Output.Format) {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Value:   c.Output.Format,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidOutputFormats(), ", ")),
		})
	}
	if !slices.Contains(ValidColorModes(), c.Output.Color) {
		errors = append(errors, ValidationError{
			Field:   "output.color",
			Value:   c.Output.Color,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidColorModes(), ", ")),
		})
	}

	return errors
}
