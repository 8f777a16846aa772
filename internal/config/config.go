// Package config loads the server/client demo command configuration through
// viper: a YAML file plus JT808_-prefixed environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level configuration for both cmd/jt808-server and
// cmd/jt808-client.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Client   ClientConfig   `mapstructure:"client"`
	Store    StoreConfig    `mapstructure:"store"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig configures the listening side of a session.
type ServerConfig struct {
	ListenAddress     string `mapstructure:"listen_address"`
	HeartbeatInterval int    `mapstructure:"heartbeat_interval_seconds"`
}

// ClientConfig configures the dialing side of a session.
type ClientConfig struct {
	RemoteAddress     string `mapstructure:"remote_address"`
	Phone             string `mapstructure:"phone"`
	HeartbeatInterval int    `mapstructure:"heartbeat_interval_seconds"`
}

// StoreConfig configures the gorm/sqlite persistence layer.
type StoreConfig struct {
	DSN string `mapstructure:"dsn"`
}

// DashboardConfig configures the websocket live-location push.
type DashboardConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	ListenAddress string `mapstructure:"listen_address"`
}

// LoggingConfig configures internal/applog.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Load reads configFile (if non-empty) or searches the default locations,
// applies JT808_-prefixed environment overrides, and unmarshals into Config.
func Load(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("jt808")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/jt808")
	}

	viper.SetEnvPrefix("JT808")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.listen_address", ":8808")
	viper.SetDefault("server.heartbeat_interval_seconds", 30)

	viper.SetDefault("client.remote_address", "127.0.0.1:8808")
	viper.SetDefault("client.phone", "013800138000")
	viper.SetDefault("client.heartbeat_interval_seconds", 30)

	viper.SetDefault("store.dsn", "jt808.sqlite")

	viper.SetDefault("dashboard.enabled", false)
	viper.SetDefault("dashboard.listen_address", ":8809")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.json", false)
}
