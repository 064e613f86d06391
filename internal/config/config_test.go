package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/safety")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.API.Port)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocoding.NominatimURL)
	assert.Equal(t, 10*time.Second, cfg.Geocoding.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Notify.ChannelTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)

	// Channels default to disabled.
	assert.False(t, cfg.SMSConfigured())
	assert.False(t, cfg.EmailConfigured())
}

func TestLoadChannelConfiguration(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/safety")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("TWILIO_PHONE_NUMBER", "+10000000000")
	t.Setenv("SMTP_SERVER", "smtp.example.com")
	t.Setenv("EMAIL_USER", "alerts@example.com")
	t.Setenv("EMAIL_PASSWORD", "secret")
	t.Setenv("KAFKA_BROKER", "localhost:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.SMSConfigured())
	assert.True(t, cfg.EmailConfigured())
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.Equal(t, "sos_alerts", cfg.Kafka.Topic)
}
