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
	JWT      JWTConfig
	Rewards  RewardsConfig
	Fraud    FraudConfig
	Spin     SpinConfig
	Cleanup  CleanupConfig
	LogLevel string
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

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int
}

// RewardsConfig holds credit award and cap configuration
type RewardsConfig struct {
	CheckInAward  int64
	DailyEarnCap  int64
	WeeklyEarnCap int64
	DailySpendCap int64
	Timezone      string
}

// FraudConfig holds anti-fraud gate configuration
type FraudConfig struct {
	ProximityMeters  float64
	Cooldown         time.Duration
	VelocityAttempts int
	VelocityWindow   time.Duration
}

// SpinConfig holds spin orchestration configuration
type SpinConfig struct {
	MaxAttempts            int
	RedemptionCodeLength   int
	DefaultPrizeExpiryDays int
}

// CleanupConfig holds expired-prize cleanup configuration
type CleanupConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	// A missing config file is fine, environment variables take over.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// validate rejects configurations the engine cannot run with.
func (c *Config) validate() error {
	if c.Rewards.CheckInAward <= 0 {
		return fmt.Errorf("rewards.checkinaward must be positive, got %d", c.Rewards.CheckInAward)
	}
	if c.Fraud.ProximityMeters <= 0 {
		return fmt.Errorf("fraud.proximitymeters must be positive, got %f", c.Fraud.ProximityMeters)
	}
	if c.Fraud.Cooldown <= 0 {
		return fmt.Errorf("fraud.cooldown must be positive, got %s", c.Fraud.Cooldown)
	}
	if c.Spin.MaxAttempts <= 0 {
		return fmt.Errorf("spin.maxattempts must be positive, got %d", c.Spin.MaxAttempts)
	}
	if _, err := time.LoadLocation(c.Rewards.Timezone); err != nil {
		return fmt.Errorf("rewards.timezone %q is invalid: %w", c.Rewards.Timezone, err)
	}
	return nil
}

// Location resolves the configured calendar timezone. Load has already
// validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Rewards.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"http://localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "spinpoint")
	viper.SetDefault("JWT.Secret", "change-me-in-production")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("Rewards.CheckInAward", 10)
	viper.SetDefault("Rewards.DailyEarnCap", 100)
	viper.SetDefault("Rewards.WeeklyEarnCap", 500)
	viper.SetDefault("Rewards.DailySpendCap", 200)
	viper.SetDefault("Rewards.Timezone", "UTC")
	viper.SetDefault("Fraud.ProximityMeters", 100.0)
	viper.SetDefault("Fraud.Cooldown", "30m")
	viper.SetDefault("Fraud.VelocityAttempts", 5)
	viper.SetDefault("Fraud.VelocityWindow", "10m")
	viper.SetDefault("Spin.MaxAttempts", 3)
	viper.SetDefault("Spin.RedemptionCodeLength", 10)
	viper.SetDefault("Spin.DefaultPrizeExpiryDays", 7)
	viper.SetDefault("Cleanup.Enabled", true)
	viper.SetDefault("Cleanup.Interval", "1h")
	viper.SetDefault("LogLevel", "info")
}
