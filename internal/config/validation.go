package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError is one invalid configuration key.
type FieldError struct {
	Key     string
	Message string
}

// ValidationErrors collects all validation errors
type ValidationErrors struct {
	Fields []FieldError
}

// HasErrors returns true if any validation errors exist
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationErrors) add(key, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Key: key, Message: fmt.Sprintf(format, args...)})
}

// Error formats all validation errors into a clear message
func (e *ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, f := range e.Fields {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", f.Key, f.Message))
	}
	return sb.String()
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if u, err := url.ParseRequestURI(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs.add("api.base_url", "must be an absolute http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.TimeoutSec < 1 {
		errs.add("api.timeout_sec", "must be >= 1, got %d", c.API.TimeoutSec)
	}
	if c.API.RatePerSecond < 0 {
		errs.add("api.rate_per_second", "must be >= 0, got %d", c.API.RatePerSecond)
	}

	if c.Watch.IntervalSec < 1 {
		errs.add("watch.interval_sec", "must be >= 1, got %d", c.Watch.IntervalSec)
	}
	if c.Watch.RequestDelayMs < 0 {
		errs.add("watch.request_delay_ms", "must be >= 0, got %d", c.Watch.RequestDelayMs)
	}
	if _, err := c.Watch.Kinds(); err != nil {
		errs.add("watch.events", "%v", err)
	}

	if c.Server.Enabled && c.Server.Addr == "" {
		errs.add("server.addr", "is required when server.enabled=true")
	}

	if err := c.Notify.Validate(); err != nil {
		errs.add("notify", "%v", err)
	}

	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs.add("logging.level", "must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
