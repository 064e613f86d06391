package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
// SMS, email, geocoding, Kafka, and Telegram are all optional: missing
// credentials mean the channel is disabled, not misconfigured.
type Config struct {
	DB struct {
		DSN string
	}
	SMS struct {
		AccountSID string
		AuthToken  string
		FromNumber string
	}
	Email struct {
		SMTPServer string
		SMTPPort   int
		Username   string
		Password   string
	}
	Geocoding struct {
		GoogleAPIKey string
		NominatimURL string
		Timeout      time.Duration
	}
	Kafka struct {
		Broker string
		Topic  string
	}
	Telegram struct {
		BotToken string
		OpsChat  int64
	}
	API struct {
		Port string
	}
	Notify struct {
		ChannelTimeout time.Duration
	}
	Logging struct {
		Dir   string
		Level string
	}
}

// SMSConfigured reports whether the Twilio credentials are complete.
func (c Config) SMSConfigured() bool {
	return c.SMS.AccountSID != "" && c.SMS.AuthToken != "" && c.SMS.FromNumber != ""
}

// EmailConfigured reports whether the SMTP credentials are complete.
func (c Config) EmailConfigured() bool {
	return c.Email.SMTPServer != "" && c.Email.SMTPPort != 0 && c.Email.Username != "" && c.Email.Password != ""
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	cfg.DB.DSN = os.Getenv("DB_DSN")

	// Twilio settings
	cfg.SMS.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	cfg.SMS.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	cfg.SMS.FromNumber = os.Getenv("TWILIO_PHONE_NUMBER")

	// Email settings
	cfg.Email.SMTPServer = os.Getenv("SMTP_SERVER")
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil {
		cfg.Email.SMTPPort = p
	}
	cfg.Email.Username = os.Getenv("EMAIL_USER")
	cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")

	// Geocoding settings
	cfg.Geocoding.GoogleAPIKey = os.Getenv("MAPS_API_KEY")
	cfg.Geocoding.NominatimURL = os.Getenv("NOMINATIM_URL")

	// Kafka settings
	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")

	// Telegram ops settings
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if id, err := strconv.ParseInt(os.Getenv("TELEGRAM_OPS_CHAT_ID"), 10, 64); err == nil {
		cfg.Telegram.OpsChat = id
	}

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")

	// Logging settings
	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Validate required settings
	missing := []string{}
	if cfg.DB.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.Email.SMTPServer != "" && cfg.Email.SMTPPort == 0 {
		cfg.Email.SMTPPort = 587
	}
	if cfg.Geocoding.NominatimURL == "" {
		cfg.Geocoding.NominatimURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.Geocoding.Timeout == 0 {
		cfg.Geocoding.Timeout = 10 * time.Second
	}
	if cfg.Kafka.Broker != "" && cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "sos_alerts"
	}
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.Notify.ChannelTimeout == 0 {
		cfg.Notify.ChannelTimeout = 10 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}
