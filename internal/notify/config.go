package notify

import (
	"errors"
	"fmt"
	"strings"
)

// Config holds ntfy notification configuration.
type Config struct {
	Enabled  bool   `mapstructure:"enabled"`
	Server   string `mapstructure:"server"`   // ntfy server URL (default: https://ntfy.sh)
	Topic    string `mapstructure:"topic"`    // required if enabled
	Priority string `mapstructure:"priority"` // min, low, default, high, urgent
	Tags     string `mapstructure:"tags"`     // comma-separated emoji tags, e.g. "robot,tv"
	Token    string `mapstructure:"token"`    // optional access token for private topics
}

var validPriorities = map[string]bool{
	"min": true, "low": true, "default": true, "high": true, "urgent": true,
}

// Validate checks configuration is valid when enabled.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Topic == "" {
		return errors.New("notify.topic is required when notify.enabled=true")
	}
	if c.Server == "" {
		return errors.New("notify.server is required when notify.enabled=true")
	}
	if !validPriorities[c.Priority] {
		return fmt.Errorf("invalid notify.priority: %s (valid: min, low, default, high, urgent)", c.Priority)
	}

	return nil
}

// TagList splits Tags into trimmed, non-empty values.
func (c *Config) TagList() []string {
	var out []string
	for _, tag := range strings.Split(c.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
