package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	PagerDuty PagerDutyConfig
	Routing   RoutingConfig
	LogLevel  string
	// ObserverTimeout bounds each audit insert or delivery publish
	ObserverTimeout time.Duration
	// Database and RabbitMQ are nil unless configured
	Database *DatabaseConfig
	RabbitMQ *RabbitMQConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	WebhookToken string
}

type PagerDutyConfig struct {
	EventsURL           string
	Timeout             time.Duration
	MaxResponseBodySize int
}

type RoutingConfig struct {
	// FilePath is an optional YAML routing file; empty means built-in assignees
	FilePath string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

type RabbitMQConfig struct {
	URL        string
	Host       string
	Port       string
	User       string
	Password   string
	VHost      string
	Exchange   string
	RoutingKey string
}

func Load() (*Config, error) {
	var missing []string
	var invalid []string

	get := func(key string) string {
		val := os.Getenv(key)
		if val == "" {
			missing = append(missing, key)
		}
		return val
	}

	intOr := func(key string, fallback int) int {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			return fallback
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			invalid = append(invalid, key)
			return fallback
		}
		return n
	}

	config := &Config{
		Server: ServerConfig{
			Port:         envOr("SERVER_PORT", "8000"),
			Host:         envOr("SERVER_HOST", "0.0.0.0"),
			WebhookToken: os.Getenv("WEBHOOK_TOKEN"),
		},
		PagerDuty: PagerDutyConfig{
			EventsURL:           envOr("PD_EVENTS_URL", "https://events.pagerduty.com/v2/enqueue"),
			Timeout:             time.Duration(intOr("PD_TIMEOUT_SECONDS", 10)) * time.Second,
			MaxResponseBodySize: intOr("PD_MAX_RESPONSE_BODY", 4096),
		},
		Routing: RoutingConfig{
			FilePath: os.Getenv("ROUTING_CONFIG_PATH"),
		},
		LogLevel:        os.Getenv("LOG_LEVEL"),
		ObserverTimeout: time.Duration(intOr("OBSERVER_TIMEOUT_SECONDS", 5)) * time.Second,
	}

	if os.Getenv("DB_HOST") != "" {
		config.Database = &DatabaseConfig{
			Host:           get("DB_HOST"),
			Port:           get("DB_PORT"),
			User:           get("DB_USER"),
			Password:       get("DB_PASSWORD"),
			DBName:         get("DB_NAME"),
			SSLMode:        envOr("DB_SSLMODE", "disable"),
			MigrationsPath: envOr("DB_MIGRATIONS_PATH", "db/migrations"),
		}
	}

	if os.Getenv("RABBITMQ_URL") != "" || os.Getenv("RABBITMQ_HOST") != "" {
		rmq := &RabbitMQConfig{
			URL:        os.Getenv("RABBITMQ_URL"),
			Exchange:   get("RABBITMQ_EXCHANGE"),
			RoutingKey: envOr("RABBITMQ_ROUTING_KEY", "alert.delivery"),
		}
		if rmq.URL == "" {
			rmq.Host = get("RABBITMQ_HOST")
			rmq.Port = get("RABBITMQ_PORT")
			rmq.User = get("RABBITMQ_USER")
			rmq.Password = get("RABBITMQ_PASSWORD")
			rmq.VHost = envOr("RABBITMQ_VHOST", "/")
		}
		config.RabbitMQ = rmq
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("environment variables must be positive integers: %v", invalid)
	}

	return config, nil
}

func envOr(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// ConnectionString returns a DSN string for GORM
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.DBName, c.Port, c.SSLMode)
}

// MigrationURL returns the URL form golang-migrate expects
func (c *DatabaseConfig) MigrationURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

func (c *RabbitMQConfig) ConnectionURL() string {
	if c.URL != "" {
		return c.URL
	}
	vhost := c.VHost
	if vhost == "/" {
		vhost = ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%s/%s",
		c.User, c.Password, c.Host, c.Port, strings.TrimPrefix(vhost, "/"))
}
