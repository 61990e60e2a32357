package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	ServerAddress string
	Environment   string
	Database      DatabaseConfig
	Migration     MigrationConfig
	Engine        EngineConfig
	SMTP          SMTPConfig
	OpenAI        OpenAIConfig
	Batch         BatchConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Params   string
}

type MigrationConfig struct {
	Dir string
}

// EngineConfig carries the reconciliation engine knobs.
type EngineConfig struct {
	TolerancePercent      float64
	AlertThresholdPercent float64
	DuplicateKeyPolicy    string
	SettlementCurrency    string
}

type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	Sender    string
	Recipient string
	Enabled   bool
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type BatchConfig struct {
	MaxWorkers    int
	JobTTLMinutes int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_ADDRESS", ":8080")
	viper.SetDefault("ENGINE_TOLERANCE_PERCENT", 1.0)
	viper.SetDefault("ENGINE_ALERT_THRESHOLD_PERCENT", 95.0)
	viper.SetDefault("ENGINE_DUPLICATE_KEY_POLICY", "last-wins")
	viper.SetDefault("ENGINE_SETTLEMENT_CURRENCY", "INR")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("EMAIL_ENABLED", true)
	viper.SetDefault("OPENAI_MODEL", "gpt-3.5-turbo")
	viper.SetDefault("BATCH_MAX_WORKERS", 2)
	viper.SetDefault("BATCH_JOB_TTL_MINUTES", 60)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := &Config{
		ServerAddress: viper.GetString("SERVER_ADDRESS"),
		Environment:   viper.GetString("ENVIRONMENT"),
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			Params:   viper.GetString("DB_PARAMS"),
		},
		Migration: MigrationConfig{
			Dir: viper.GetString("MIGRATION_DIR"),
		},
		Engine: EngineConfig{
			TolerancePercent:      viper.GetFloat64("ENGINE_TOLERANCE_PERCENT"),
			AlertThresholdPercent: viper.GetFloat64("ENGINE_ALERT_THRESHOLD_PERCENT"),
			DuplicateKeyPolicy:    viper.GetString("ENGINE_DUPLICATE_KEY_POLICY"),
			SettlementCurrency:    viper.GetString("ENGINE_SETTLEMENT_CURRENCY"),
		},
		SMTP: SMTPConfig{
			Host:      viper.GetString("SMTP_HOST"),
			Port:      viper.GetInt("SMTP_PORT"),
			User:      viper.GetString("SMTP_USER"),
			Password:  viper.GetString("SMTP_PASS"),
			Sender:    viper.GetString("EMAIL_SENDER"),
			Recipient: viper.GetString("EMAIL_RECIPIENT"),
			Enabled:   viper.GetBool("EMAIL_ENABLED"),
		},
		OpenAI: OpenAIConfig{
			APIKey: viper.GetString("OPENAI_API_KEY"),
			Model:  viper.GetString("OPENAI_MODEL"),
		},
		Batch: BatchConfig{
			MaxWorkers:    viper.GetInt("BATCH_MAX_WORKERS"),
			JobTTLMinutes: viper.GetInt("BATCH_JOB_TTL_MINUTES"),
		},
	}

	return config, nil
}

// GetDSN returns the MySQL DSN string
func (c *Config) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Params,
	)
}

// GetMigrationDBURL returns the database URL for migrations
func (c *Config) GetMigrationDBURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.Params,
	)
}
