package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/hhafez300/thena-pagerduty-bridge/internal/config"
)

// ErrNotConnected is returned by Publish while no usable channel is open
var ErrNotConnected = errors.New("rabbitmq channel is not available")

// Connection owns one AMQP connection and channel and re-dials them when the broker drops them
type Connection struct {
	conn         *amqp.Connection
	channel      *amqp.Channel
	config       *config.RabbitMQConfig
	logger       *zap.Logger
	stopChan     chan struct{}
	mu           sync.RWMutex
	reconnecting bool
	reconnectMu  sync.Mutex
}

func NewConnection(cfg *config.RabbitMQConfig, logger *zap.Logger) *Connection {
	return &Connection{
		config:   cfg,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Connect dials the broker, retrying with exponential backoff, then watches the connection
func (c *Connection) Connect() error {
	backoff := time.Second
	maxBackoff := 30 * time.Second
	const maxAttempts = 5

	for attempt := 1; ; attempt++ {
		err := c.dial()
		if err == nil {
			c.logger.Info("Connected to RabbitMQ", zap.Int("attempt", attempt))
			break
		}
		if attempt >= maxAttempts {
			return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxAttempts, err)
		}

		c.logger.Warn("RabbitMQ connection failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
		)
		time.Sleep(backoff)
		backoff = min(backoff*2, maxBackoff)
	}

	go c.monitor()
	return nil
}

func (c *Connection) dial() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		_ = c.channel.Close()
	}
	if c.conn != nil && !c.conn.IsClosed() {
		_ = c.conn.Close()
	}

	conn, err := amqp.DialConfig(c.config.ConnectionURL(), amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Properties: amqp.Table{
			"connection_name": "thena-pagerduty-bridge",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to dial RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	c.conn = conn
	c.channel = ch
	return nil
}

func (c *Connection) monitor() {
	for {
		c.mu.RLock()
		if c.conn == nil || c.channel == nil {
			c.mu.RUnlock()
			return
		}
		connClose := c.conn.NotifyClose(make(chan *amqp.Error, 1))
		channelClose := c.channel.NotifyClose(make(chan *amqp.Error, 1))
		c.mu.RUnlock()

		var reason *amqp.Error
		select {
		case <-c.stopChan:
			return
		case reason = <-connClose:
		case reason = <-channelClose:
		}
		if reason == nil {
			// graceful close from our side
			return
		}

		c.logger.Error("RabbitMQ connection lost, reconnecting",
			zap.String("reason", reason.Reason),
			zap.Int("code", reason.Code),
		)
		if !c.reconnect() {
			return
		}
	}
}

// reconnect keeps dialling until it succeeds or the connection is closed
func (c *Connection) reconnect() bool {
	c.reconnectMu.Lock()
	if c.reconnecting {
		c.reconnectMu.Unlock()
		return false
	}
	c.reconnecting = true
	c.reconnectMu.Unlock()

	defer func() {
		c.reconnectMu.Lock()
		c.reconnecting = false
		c.reconnectMu.Unlock()
	}()

	backoff := time.Second
	maxBackoff := 30 * time.Second

	for attempt := 1; ; attempt++ {
		select {
		case <-c.stopChan:
			return false
		default:
		}

		if err := c.dial(); err != nil {
			c.logger.Warn("RabbitMQ reconnect failed, retrying",
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			time.Sleep(backoff)
			backoff = min(backoff*2, maxBackoff)
			continue
		}

		c.logger.Info("Reconnected to RabbitMQ", zap.Int("attempt", attempt))
		return true
	}
}

// Publish sends one persistent JSON message. It does not retry; callers treat failures as best effort.
func (c *Connection) Publish(ctx context.Context, exchange, routingKey string, body []byte) error {
	c.mu.RLock()
	ch := c.channel
	c.mu.RUnlock()

	if ch == nil || ch.IsClosed() {
		return ErrNotConnected
	}

	err := ch.PublishWithContext(ctx, exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// IsHealthy checks if the connection and channel are open
func (c *Connection) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && !c.conn.IsClosed() && c.channel != nil && !c.channel.IsClosed()
}

// HealthCheck adapts IsHealthy to the health endpoint
func (c *Connection) HealthCheck(_ context.Context) error {
	if !c.IsHealthy() {
		return errors.New("connection closed")
	}
	return nil
}

// Close stops reconnection and closes the channel and connection
func (c *Connection) Close() {
	select {
	case <-c.stopChan:
	default:
		close(c.stopChan)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		_ = c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
		c.logger.Info("RabbitMQ connection closed")
	}
}
