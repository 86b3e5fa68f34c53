package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Bridge server transport types.
const (
	ClientTypeSSE            = "sse"
	ClientTypeStreamableHTTP = "streamable_http"
	ClientTypeStdio          = "stdio"
)

// Classifier strategies. Under "server" only backend-returned device
// actions run; under "local" the client classifies the turn itself when
// the backend returns none.
const (
	StrategyServer = "server"
	StrategyLocal  = "local"
)

// Config holds the application configuration
type Config struct {
	Backend      BackendConfig
	Personality  string `mapstructure:"personality"`
	Classifier   ClassifierConfig
	Store        StoreConfig
	Log          LogConfig
	DeviceBridge []BridgeServerConfig `mapstructure:"device_bridge"`
}

// BackendConfig holds the SuperIntendent API configuration
type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ClassifierConfig selects where device-action classification happens
type ClassifierConfig struct {
	Strategy string `mapstructure:"strategy"`
}

// StoreConfig holds local persistence configuration
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// BridgeServerConfig describes one MCP device-bridge server
type BridgeServerConfig struct {
	Name    string            `mapstructure:"name"`
	Type    string            `mapstructure:"type"`
	URL     string            `mapstructure:"url"`
	Headers map[string]string `mapstructure:"headers"`
	Command string            `mapstructure:"command"`
	Args    []string          `mapstructure:"args"`
	Env     map[string]string `mapstructure:"env"`
}

// Load loads the configuration from config.yaml in the working directory,
// or from the file named by the CONFIG_PATH environment variable.
func Load() (*Config, error) {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetDefault("personality", "superintendent")
	viper.SetDefault("classifier.strategy", StrategyServer)
	viper.SetDefault("store.path", defaultStorePath())
	viper.SetDefault("log.level", "info")
	viper.SetDefault("backend.timeout_seconds", 60)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "superintendent.db"
	}
	return filepath.Join(dir, "superintendent", "superintendent.db")
}
