package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hhafez300/thena-pagerduty-bridge/internal/config"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/database"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/dedup"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/dispatcher"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/engine"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/handlers"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/rabbitmq"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/routing"
)

// Service holds all application dependencies
type Service struct {
	Config *config.Config
	Logger *zap.Logger
	Engine *engine.Engine
	Health *handlers.HealthHandler
	DB     *gorm.DB
	RMQ    *rabbitmq.Connection
}

// New wires the routing table, dispatcher and engine, plus the optional audit
// database and RabbitMQ publisher when they are configured.
func New(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	table, err := routing.Load(cfg.Routing.FilePath, nil)
	if err != nil {
		return nil, err
	}
	for _, group := range table.MissingCredentials() {
		logger.Warn("Service group has no routing key; its tickets will fail until one is set",
			zap.String("service_group", string(group)),
			zap.String("env", routing.RoutingKeyEnvPrefix+string(group)),
		)
	}

	s := &Service{Config: cfg, Logger: logger}
	var observers []engine.Observer
	checks := make(map[string]handlers.HealthCheckFunc)

	if cfg.Database != nil {
		if err := database.RunMigrations(cfg.Database, logger); err != nil {
			return nil, err
		}
		db, err := database.Connect(cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		s.DB = db
		observers = append(observers, database.NewAuditLog(db))
		checks["database"] = func(ctx context.Context) error { return database.HealthCheck(ctx, db) }
	}

	if cfg.RabbitMQ != nil {
		conn := rabbitmq.NewConnection(cfg.RabbitMQ, logger)
		if err := conn.Connect(); err != nil {
			s.Close()
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		s.RMQ = conn
		observers = append(observers, rabbitmq.NewDeliveryPublisher(conn, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.RoutingKey))
		checks["rabbitmq"] = conn.HealthCheck
	}

	pd := dispatcher.NewPagerDuty(cfg.PagerDuty.EventsURL, cfg.PagerDuty.Timeout, cfg.PagerDuty.MaxResponseBodySize, logger)
	s.Engine = engine.New(table, dedup.NewMemoryStore(), pd, logger, observers...)
	s.Engine.SetObserverTimeout(cfg.ObserverTimeout)
	s.Health = handlers.NewHealthHandler(checks)

	return s, nil
}

// Close releases the optional connections
func (s *Service) Close() {
	if s.RMQ != nil {
		s.RMQ.Close()
	}
	if s.DB != nil {
		if err := database.Close(s.DB, s.Logger); err != nil {
			s.Logger.Error("Error closing database", zap.Error(err))
		}
	}
}
