package config

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "SERVER_HOST", "WEBHOOK_TOKEN", "LOG_LEVEL",
		"PD_EVENTS_URL", "PD_TIMEOUT_SECONDS", "PD_MAX_RESPONSE_BODY", "ROUTING_CONFIG_PATH", "OBSERVER_TIMEOUT_SECONDS",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "DB_MIGRATIONS_PATH",
		"RABBITMQ_URL", "RABBITMQ_HOST", "RABBITMQ_PORT", "RABBITMQ_USER", "RABBITMQ_PASSWORD",
		"RABBITMQ_VHOST", "RABBITMQ_EXCHANGE", "RABBITMQ_ROUTING_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Empty(t, cfg.Server.WebhookToken)
	assert.Equal(t, "https://events.pagerduty.com/v2/enqueue", cfg.PagerDuty.EventsURL)
	assert.Equal(t, 10*time.Second, cfg.PagerDuty.Timeout)
	assert.Equal(t, 4096, cfg.PagerDuty.MaxResponseBodySize)
	assert.Equal(t, 5*time.Second, cfg.ObserverTimeout)
	assert.Nil(t, cfg.Database)
	assert.Nil(t, cfg.RabbitMQ)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("WEBHOOK_TOKEN", "s3cret")
	t.Setenv("PD_EVENTS_URL", "http://localhost:1234/enqueue")
	t.Setenv("PD_TIMEOUT_SECONDS", "3")
	t.Setenv("ROUTING_CONFIG_PATH", "/etc/bridge/routing.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Server.WebhookToken)
	assert.Equal(t, "http://localhost:1234/enqueue", cfg.PagerDuty.EventsURL)
	assert.Equal(t, 3*time.Second, cfg.PagerDuty.Timeout)
	assert.Equal(t, "/etc/bridge/routing.yaml", cfg.Routing.FilePath)
}

func TestLoadInvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("PD_TIMEOUT_SECONDS", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PD_TIMEOUT_SECONDS")
}

func TestLoadDatabaseRequiresAllFields(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")

	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "bridge")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "bridge")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.Database)
	assert.Equal(t, "postgres://bridge:pw@db:5432/bridge?sslmode=disable", cfg.Database.MigrationURL())
	assert.Contains(t, cfg.Database.ConnectionString(), "host=db")
}

func TestMigrationURLEscapesCredentials(t *testing.T) {
	db := &DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "bridge",
		Password: "p@ss/w:rd?",
		DBName:   "bridge",
		SSLMode:  "disable",
	}

	u, err := url.Parse(db.MigrationURL())
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/bridge", u.Path)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "bridge", u.User.Username())
	password, ok := u.User.Password()
	assert.True(t, ok)
	assert.Equal(t, "p@ss/w:rd?", password)
}

func TestLoadRabbitMQ(t *testing.T) {
	clearEnv(t)
	t.Setenv("RABBITMQ_URL", "amqp://guest:guest@mq:5672/")
	t.Setenv("RABBITMQ_EXCHANGE", "bridge.events")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.RabbitMQ)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.RabbitMQ.ConnectionURL())
	assert.Equal(t, "alert.delivery", cfg.RabbitMQ.RoutingKey)

	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("RABBITMQ_HOST", "mq")
	t.Setenv("RABBITMQ_PORT", "5672")
	t.Setenv("RABBITMQ_USER", "u")
	t.Setenv("RABBITMQ_PASSWORD", "p")
	t.Setenv("RABBITMQ_VHOST", "/alerts")

	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "amqp://u:p@mq:5672/alerts", cfg.RabbitMQ.ConnectionURL())
}
