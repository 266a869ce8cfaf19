// Package config loads application configuration from file and environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the supplier resolution service
type Config struct {
	// API configuration
	API struct {
		Host             string `mapstructure:"host"`
		Port             int    `mapstructure:"port"`
		ReadTimeoutSecs  int    `mapstructure:"read_timeout_secs"`
		WriteTimeoutSecs int    `mapstructure:"write_timeout_secs"`
		IdleTimeoutSecs  int    `mapstructure:"idle_timeout_secs"`
	} `mapstructure:"api"`

	// Database configuration
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`

	// Alias store configuration
	Aliases struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"aliases"`

	// Matching configuration
	Matching struct {
		AutoAcceptThreshold float64 `mapstructure:"auto_accept_threshold"`
		CandidateLimit      int     `mapstructure:"candidate_limit"`
	} `mapstructure:"matching"`

	// Workbook ingestion configuration
	Ingest struct {
		DeliverySheet string `mapstructure:"delivery_sheet"`
	} `mapstructure:"ingest"`

	// Logging configuration
	Logging struct {
		Level      string `mapstructure:"level"`
		Format     string `mapstructure:"format"`
		FilePath   string `mapstructure:"file_path"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAgeDays int    `mapstructure:"max_age_days"`
	} `mapstructure:"logging"`
}

// Load loads the configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// If config file is provided, read it
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in the current directory
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("RESOLVE")

	// Try to read config file (don't return error if not found)
	_ = v.ReadInConfig()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(v *viper.Viper) {
	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout_secs", 30)
	v.SetDefault("api.write_timeout_secs", 30)
	v.SetDefault("api.idle_timeout_secs", 60)

	// Storage defaults
	v.SetDefault("database.path", "data/catalog.db")
	v.SetDefault("aliases.dir", "data/aliases")

	// Matching defaults
	v.SetDefault("matching.auto_accept_threshold", 95.0)
	v.SetDefault("matching.candidate_limit", 10)

	// Ingestion defaults
	v.SetDefault("ingest.delivery_sheet", "Deliveries")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 30)
}

// SaveDefault saves the default configuration to a file
func SaveDefault(configPath string) error {
	v := viper.New()
	setDefaults(v)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return v.WriteConfigAs(configPath)
}
