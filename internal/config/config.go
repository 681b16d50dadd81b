package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the server.
type Config struct {
	Port string `mapstructure:"port"`

	GeminiAPIKey        string  `mapstructure:"gemini_api_key"`
	GeminiModel         string  `mapstructure:"gemini_model"`
	GeminiTemperature   float32 `mapstructure:"gemini_temperature"`
	GeminiTopP          float32 `mapstructure:"gemini_top_p"`
	GeminiMaxTokens     int32   `mapstructure:"gemini_max_tokens"`
	GeminiValidateModel bool    `mapstructure:"gemini_validate_model"`

	ReferenceDate   string        `mapstructure:"rfm_reference_date"`
	HighValueScore  int           `mapstructure:"high_value_score"`
	LeaderboardSize int           `mapstructure:"leaderboard_size"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	MaxUploadMB     int64         `mapstructure:"max_upload_mb"`
}

var keys = []string{
	"port",
	"gemini_api_key",
	"gemini_model",
	"gemini_temperature",
	"gemini_top_p",
	"gemini_max_tokens",
	"gemini_validate_model",
	"rfm_reference_date",
	"high_value_score",
	"leaderboard_size",
	"session_ttl",
	"max_upload_mb",
}

// Load reads configuration.
// Precedence: environment (including a .env file in the working directory) > config file > defaults.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: Failed to read .env: %v", err)
	}

	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("gemini_model", "gemini-2.5-flash-lite")
	v.SetDefault("gemini_temperature", 0.7)
	v.SetDefault("gemini_top_p", 0.95)
	v.SetDefault("gemini_max_tokens", 2048)
	v.SetDefault("gemini_validate_model", false)
	v.SetDefault("rfm_reference_date", "2018-12-01")
	v.SetDefault("high_value_score", 12)
	v.SetDefault("leaderboard_size", 5)
	v.SetDefault("session_ttl", "30m")
	v.SetDefault("max_upload_mb", 32)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees env values for keys viper already knows about.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values that would otherwise fail on first use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.GeminiModel) == "" {
		return errors.New("GEMINI_MODEL must not be empty")
	}
	if c.GeminiTemperature < 0 || c.GeminiTemperature > 2 {
		return fmt.Errorf("GEMINI_TEMPERATURE must be between 0 and 2, got %g", c.GeminiTemperature)
	}
	if c.GeminiTopP < 0 || c.GeminiTopP > 1 {
		return fmt.Errorf("GEMINI_TOP_P must be between 0 and 1, got %g", c.GeminiTopP)
	}
	if c.GeminiMaxTokens <= 0 {
		return fmt.Errorf("GEMINI_MAX_TOKENS must be positive, got %d", c.GeminiMaxTokens)
	}
	if _, err := c.Reference(); err != nil {
		return err
	}
	if c.HighValueScore < 3 || c.HighValueScore > 15 {
		return fmt.Errorf("HIGH_VALUE_SCORE must be between 3 and 15, got %d", c.HighValueScore)
	}
	if c.LeaderboardSize < 0 {
		return fmt.Errorf("LEADERBOARD_SIZE must not be negative, got %d", c.LeaderboardSize)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}

// Reference parses RFM_REFERENCE_DATE as a UTC date.
func (c *Config) Reference() (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", c.ReferenceDate, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("RFM_REFERENCE_DATE must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}
