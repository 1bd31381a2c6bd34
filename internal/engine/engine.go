package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hhafez300/thena-pagerduty-bridge/internal/assignee"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/dedup"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/dispatcher"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/models"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/routing"
	"github.com/hhafez300/thena-pagerduty-bridge/internal/severity"
)

// Router resolves assignees to PagerDuty services
type Router interface {
	GroupFor(assignee string) (routing.Group, bool)
	CredentialFor(group routing.Group) (string, error)
}

// Observer is told about every delivery attempt, successful or not.
// Observer errors are logged and never change the outcome.
type Observer interface {
	ObserveDelivery(ctx context.Context, record models.DeliveryRecord) error
}

// DefaultObserverTimeout bounds each observer call
const DefaultObserverTimeout = 5 * time.Second

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, record models.DeliveryRecord) error

func (f ObserverFunc) ObserveDelivery(ctx context.Context, record models.DeliveryRecord) error {
	return f(ctx, record)
}

// Engine decides, per ticket event, whether PagerDuty gets a trigger
type Engine struct {
	router          Router
	store           dedup.Store
	dispatcher      dispatcher.Dispatcher
	locks           *dedup.KeyedMutex
	observers       []Observer
	observerTimeout time.Duration
	logger          *zap.Logger
}

// attempt is one dispatch, reported to observers after the ticket lock is released
type attempt struct {
	ev     models.TicketEvent
	who    string
	group  routing.Group
	result *dispatcher.Result
	err    error
}

// New creates an engine. store is owned by the engine; share it only between engines
// that should share dedup history.
func New(router Router, store dedup.Store, disp dispatcher.Dispatcher, logger *zap.Logger, observers ...Observer) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		router:          router,
		store:           store,
		dispatcher:      disp,
		locks:           dedup.NewKeyedMutex(),
		observers:       observers,
		observerTimeout: DefaultObserverTimeout,
		logger:          logger,
	}
}

// SetObserverTimeout changes how long a single observer call may take. Zero or less restores the default.
func (e *Engine) SetObserverTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultObserverTimeout
	}
	e.observerTimeout = d
}

// Handle returns exactly one outcome per event. Ignore decisions are outcomes, not errors.
// Errors wrap routing.ErrMissingCredential or dispatcher.ErrDispatchFailed, and in both
// cases the ticket stays unmarked so a later event can try again.
func (e *Engine) Handle(ctx context.Context, ev models.TicketEvent) (Outcome, error) {
	if !ev.EventType.IsTicketLifecycle() {
		return ignore(ev, ReasonUnsupportedEventType), nil
	}

	out, att, err := e.decide(ctx, ev)
	if att != nil {
		e.observe(ctx, *att)
	}
	return out, err
}

// decide runs check, dispatch and mark under the ticket lock so they never interleave
// for the same ticket. A non-nil attempt means PagerDuty was called.
func (e *Engine) decide(ctx context.Context, ev models.TicketEvent) (Outcome, *attempt, error) {
	unlock := e.locks.Lock(ev.TicketID)
	defer unlock()

	triggered, err := e.store.HasTriggered(ctx, ev.TicketID)
	if err != nil {
		return Outcome{}, nil, fmt.Errorf("failed to check trigger state for ticket %s: %w", ev.TicketID, err)
	}
	if triggered {
		return ignore(ev, ReasonAlreadyTriggered), nil, nil
	}

	who, ok := assignee.Resolve(ev.AssignedTo)
	if !ok {
		return ignore(ev, ReasonNoAssignee), nil, nil
	}

	group, ok := e.router.GroupFor(who)
	if !ok {
		out := ignore(ev, ReasonUnmappedAssignee)
		out.Assignee = who
		return out, nil, nil
	}

	routingKey, err := e.router.CredentialFor(group)
	if err != nil {
		e.logger.Error("Service group has no routing key",
			zap.String("ticket_id", ev.TicketID),
			zap.String("service_group", string(group)),
			zap.Error(err),
		)
		return Outcome{}, nil, err
	}

	result, err := e.dispatcher.Trigger(ctx, dispatcher.Request{
		RoutingKey: routingKey,
		Ticket:     ev,
		Assignee:   who,
	})
	if result == nil {
		result = &dispatcher.Result{Alert: dispatcher.BuildAlertEvent(routingKey, ev, who)}
	}
	att := &attempt{ev: ev, who: who, group: group, result: result, err: err}
	if err != nil {
		e.logger.Warn("PagerDuty trigger failed, ticket left untriggered",
			zap.String("ticket_id", ev.TicketID),
			zap.String("assignee", who),
			zap.String("service_group", string(group)),
			zap.Error(err),
		)
		return Outcome{}, att, fmt.Errorf("ticket %s: %w", ev.TicketID, err)
	}

	if err := e.store.MarkTriggered(ctx, ev.TicketID); err != nil {
		// the incident exists at PagerDuty; a repeat trigger reuses the dedup key
		e.logger.Error("Failed to mark ticket as triggered",
			zap.String("ticket_id", ev.TicketID),
			zap.Error(err),
		)
	}

	e.logger.Info("PagerDuty incident triggered",
		zap.String("ticket_id", ev.TicketID),
		zap.String("event_type", ev.EventType.String()),
		zap.String("assignee", who),
		zap.String("service_group", string(group)),
		zap.String("severity", result.Alert.Payload.Severity),
		zap.Int("latency_ms", result.LatencyMs),
	)

	return Outcome{
		Action:       ActionTriggered,
		EventType:    ev.EventType,
		TicketID:     ev.TicketID,
		Assignee:     who,
		ServiceGroup: group,
		Severity:     severity.Level(result.Alert.Payload.Severity),
		DedupKey:     result.Alert.DedupKey,
		Response:     result.Response,
	}, att, nil
}

// observe reports an attempt to every observer. Each call gets its own deadline and
// survives cancellation of the request context.
func (e *Engine) observe(ctx context.Context, att attempt) {
	if len(e.observers) == 0 {
		return
	}

	result := att.result
	record := models.DeliveryRecord{
		ID:           uuid.New(),
		TicketID:     att.ev.TicketID,
		DedupKey:     result.Alert.DedupKey,
		ServiceGroup: string(att.group),
		Assignee:     att.who,
		EventType:    att.ev.EventType.String(),
		Severity:     result.Alert.Payload.Severity,
		Succeeded:    att.err == nil,
		HTTPStatus:   result.HTTPStatus,
		LatencyMs:    result.LatencyMs,
		StartedAt:    result.StartedAt,
		FinishedAt:   result.FinishedAt,
	}
	if att.err != nil {
		msg := att.err.Error()
		record.LastError = &msg
	}

	base := context.WithoutCancel(ctx)
	for _, o := range e.observers {
		octx, cancel := context.WithTimeout(base, e.observerTimeout)
		err := o.ObserveDelivery(octx, record)
		cancel()
		if err != nil {
			e.logger.Warn("Delivery observer failed",
				zap.String("ticket_id", att.ev.TicketID),
				zap.Duration("timeout", e.observerTimeout),
				zap.Error(err),
			)
		}
	}
}
