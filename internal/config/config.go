package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Push     PushConfig
	Points   PointsConfig
	LogLevel string

	// Rules is the server-authoritative point rule table. It is compiled
	// in (see rules.go) so client platforms can never drift from it.
	Rules *RuleTable `mapstructure:"-"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// PushConfig holds push-gateway configuration. FCM is the primary
// gateway, APNS the fallback.
type PushConfig struct {
	FCMGateway  PushGatewayConfig
	APNSGateway PushGatewayConfig
	MockPush    bool
}

// PushGatewayConfig holds a single push gateway's settings
type PushGatewayConfig struct {
	BaseURL string
	APIKey  string
}

// PointsConfig holds the tunable parts of the points engine that are not
// rule-table values: time handling, reset cadence and caching.
type PointsConfig struct {
	Timezone            string // zone used for the peak-hours check
	PeakHourStart       int    // inclusive, 0-23
	PeakHourEnd         int    // exclusive, 0-23
	WeeklyResetDay      string // weekday name, reset runs at 00:00 UTC
	LeaderboardCacheTTL int    // seconds
	MaxApplyRetries     int    // bounded optimistic-lock retries
}

// WeeklyResetWeekday parses the configured weekday name.
func (p PointsConfig) WeeklyResetWeekday() (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == p.WeeklyResetDay {
			return d, nil
		}
	}
	return time.Monday, fmt.Errorf("invalid weekly reset day %q", p.WeeklyResetDay)
}

// LoadConfig loads configuration from environment variables and config files
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read configuration
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Unmarshal configuration
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Rules = DefaultRuleTable()
	if err := config.Rules.Validate(); err != nil {
		return nil, fmt.Errorf("rule table: %w", err)
	}
	if err := config.validatePoints(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validatePoints() error {
	p := c.Points
	if p.PeakHourStart < 0 || p.PeakHourStart > 23 || p.PeakHourEnd < 0 || p.PeakHourEnd > 23 {
		return fmt.Errorf("peak hours out of range: %d-%d", p.PeakHourStart, p.PeakHourEnd)
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
	}
	if _, err := p.WeeklyResetWeekday(); err != nil {
		return err
	}
	if p.MaxApplyRetries < 1 {
		return fmt.Errorf("maxApplyRetries must be at least 1, got %d", p.MaxApplyRetries)
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "founditure-points")
	viper.SetDefault("LogLevel", "info")
	viper.SetDefault("Push.MockPush", true)
	viper.SetDefault("Points.Timezone", "UTC")
	viper.SetDefault("Points.PeakHourStart", 17)
	viper.SetDefault("Points.PeakHourEnd", 20)
	viper.SetDefault("Points.WeeklyResetDay", "Monday")
	viper.SetDefault("Points.LeaderboardCacheTTL", 60)
	viper.SetDefault("Points.MaxApplyRetries", 3)
}
