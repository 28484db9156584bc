package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/duke-git/lancet/v2/slice"
)

var (
	validModes      = []string{"numeric", "symbolic"}
	validLogLevels  = []string{"debug", "info", "warn", "warning", "error"}
	validLogFormats = []string{"json", "console"}
	validLogOutputs = []string{"stdout", "stderr", "file", "both"}
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate checks the configuration and returns ValidationErrors on failure.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, message string) {
		errs = append(errs, ValidationError{Field: field, Message: message})
	}

	if !slice.Contain(validModes, strings.ToLower(c.Engine.Mode)) {
		add("engine.mode", fmt.Sprintf("must be one of %s", strings.Join(validModes, ", ")))
	}

	if c.Symbolic.Enabled {
		if u, err := url.Parse(c.Symbolic.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			add("symbolic.base_url", "must be an absolute URL")
		}
		if c.Symbolic.Timeout <= 0 {
			add("symbolic.timeout", "must be positive")
		}
	} else if strings.EqualFold(c.Engine.Mode, "symbolic") {
		add("symbolic.enabled", "symbolic mode requires the symbolic engine")
	}

	if !slice.Contain(validLogLevels, strings.ToLower(c.Logging.Level)) {
		add("logging.level", fmt.Sprintf("must be one of %s", strings.Join(validLogLevels, ", ")))
	}
	if !slice.Contain(validLogFormats, c.Logging.Format) {
		add("logging.format", fmt.Sprintf("must be one of %s", strings.Join(validLogFormats, ", ")))
	}
	if !slice.Contain(validLogOutputs, c.Logging.Output) {
		add("logging.output", fmt.Sprintf("must be one of %s", strings.Join(validLogOutputs, ", ")))
	}
	if (c.Logging.Output == "file" || c.Logging.Output == "both") && c.Logging.FilePath == "" {
		add("logging.file_path", "required when output is file or both")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
