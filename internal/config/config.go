package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/api"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/events"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/notify"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Server  ServerConfig  `mapstructure:"server"`
	Notify  notify.Config `mapstructure:"notify"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type APIConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	Token         string `mapstructure:"token"`
	TimeoutSec    int    `mapstructure:"timeout_sec"`
	RatePerSecond int    `mapstructure:"rate_per_second"`
}

type WatchConfig struct {
	IntervalSec    int      `mapstructure:"interval_sec"`
	RequestDelayMs int      `mapstructure:"request_delay_ms"`
	Events         []string `mapstructure:"events"`
}

type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

type LoggingConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
	Level     string `mapstructure:"level"`
}

func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSec) * time.Second
}

func (w WatchConfig) Interval() time.Duration {
	return time.Duration(w.IntervalSec) * time.Second
}

func (w WatchConfig) RequestDelay() time.Duration {
	return time.Duration(w.RequestDelayMs) * time.Millisecond
}

// Kinds parses Events. An empty list selects every kind.
func (w WatchConfig) Kinds() ([]events.Kind, error) {
	if len(w.Events) == 0 {
		return events.Kinds[:], nil
	}

	kinds := make([]events.Kind, 0, len(w.Events))
	seen := make(map[events.Kind]bool)
	for _, name := range w.Events {
		k, err := events.ParseKind(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

// Load reads configuration from defaults, an optional YAML file, a .env file
// in the working directory and NEUROINFO_* environment variables, in
// increasing order of precedence.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()

	// Set defaults
	v.SetDefault("api.base_url", api.DefaultBaseURL)
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout_sec", 10)
	v.SetDefault("api.rate_per_second", 2)
	v.SetDefault("watch.interval_sec", 30)
	v.SetDefault("watch.request_delay_ms", 500)
	v.SetDefault("watch.events", []string{})
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.server", "https://ntfy.sh")
	v.SetDefault("notify.topic", "")
	v.SetDefault("notify.priority", "default")
	v.SetDefault("notify.tags", "robot")
	v.SetDefault("notify.token", "")
	v.SetDefault("logging.enabled", false)
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")

	// Environment variable support
	v.SetEnvPrefix("NEUROINFO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("neuroinfo")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}
