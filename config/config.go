// Package config loads engine configuration from YAML with sane
// defaults, so the engine can run unconfigured.
package config

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/pokerpit/holdem"
)

type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Database DatabaseConfig `mapstructure:"database"`
}

type EngineConfig struct {
	SyncBotActions   bool          `mapstructure:"sync_bot_actions"`
	BotMaxRetries    int           `mapstructure:"bot_max_retries"`
	BotRetryDelay    time.Duration `mapstructure:"bot_retry_delay"`
	BotActionTimeout time.Duration `mapstructure:"bot_action_timeout"`
	ReadyTimeout     int           `mapstructure:"ready_timeout"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("engine.sync_bot_actions", false)
	v.SetDefault("engine.bot_max_retries", 3)
	v.SetDefault("engine.bot_retry_delay", "1s")
	v.SetDefault("engine.bot_action_timeout", "30s")
	v.SetDefault("engine.ready_timeout", 10)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "holdem.db")
}

// Load reads the config file at path. An empty path or a missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// EngineOptions converts the loaded config into engine options.
func (c *Config) EngineOptions() *holdem.EngineOptions {
	options := holdem.NewEngineOptions()

	level, err := logrus.ParseLevel(c.LogLevel)
	if err == nil {
		options.LogLevel = uint32(level)
	}

	options.SyncBotActions = c.Engine.SyncBotActions
	if c.Engine.BotMaxRetries > 0 {
		options.BotMaxRetries = c.Engine.BotMaxRetries
	}
	if c.Engine.BotRetryDelay > 0 {
		options.BotRetryDelay = c.Engine.BotRetryDelay
	}
	if c.Engine.BotActionTimeout > 0 {
		options.BotActionTimeout = c.Engine.BotActionTimeout
	}
	if c.Engine.ReadyTimeout > 0 {
		options.ReadyTimeout = c.Engine.ReadyTimeout
	}
	return options
}
