package config

import (
	"os"
	"strings"
	"time"

	"github.com/avtoyurist/docbot/utils"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	BotToken   string
	WebhookURL string
	Port       string

	DraftAPIURL string
	DraftAPIKey string
	DraftModel  string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// PayoutAccount is the display string shown in payment instructions.
	PayoutAccount string

	AdminToken    string
	OperatorEmail string

	// PayTTL bounds the time a user has to confirm a transfer.
	// AccessTTL bounds the time a verified order may be used for drafting.
	// Two distinct windows; both measured from the order's issue time.
	PayTTL    time.Duration
	AccessTTL time.Duration

	// DraftTimeout bounds a single drafting call.
	DraftTimeout time.Duration
}

// AppConfig is the loaded application configuration
var AppConfig *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// A missing .env file is fine in production where real env vars are set.
	_ = godotenv.Load()

	config := &Config{
		BotToken:      os.Getenv("BOT_TOKEN"),
		WebhookURL:    os.Getenv("WEBHOOK_URL"),
		Port:          os.Getenv("PORT"),
		DraftAPIURL:   os.Getenv("DRAFT_API_URL"),
		DraftAPIKey:   os.Getenv("DRAFT_API_KEY"),
		DraftModel:    os.Getenv("DRAFT_MODEL"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		PayoutAccount: os.Getenv("PAYOUT_ACCOUNT"),
		AdminToken:    os.Getenv("ADMIN_TOKEN"),
		OperatorEmail: os.Getenv("OPERATOR_EMAIL"),
		PayTTL:        30 * time.Minute,
		AccessTTL:     24 * time.Hour,
		DraftTimeout:  75 * time.Second,
	}

	if config.Port == "" {
		config.Port = "8080"
	}

	required := map[string]string{
		"BOT_TOKEN":      config.BotToken,
		"WEBHOOK_URL":    config.WebhookURL,
		"DRAFT_API_URL":  config.DraftAPIURL,
		"DRAFT_API_KEY":  config.DraftAPIKey,
		"DRAFT_MODEL":    config.DraftModel,
		"DB_HOST":        config.DBHost,
		"DB_PORT":        config.DBPort,
		"DB_USER":        config.DBUser,
		"DB_PASSWORD":    config.DBPassword,
		"DB_NAME":        config.DBName,
		"PAYOUT_ACCOUNT": config.PayoutAccount,
	}
	var missing []string
	for name, value := range required {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, utils.ConfigError("missing required environment variables: "+strings.Join(missing, ", "), nil)
	}

	AppConfig = config
	return config, nil
}
