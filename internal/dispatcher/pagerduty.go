package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hhafez300/thena-pagerduty-bridge/internal/models"
)

const DefaultEventsURL = "https://events.pagerduty.com/v2/enqueue"

// PagerDuty posts triggers to the Events API v2
type PagerDuty struct {
	url                 string
	client              *http.Client
	maxResponseBodySize int
	logger              *zap.Logger
}

// NewPagerDuty creates a dispatcher whose every request is bounded by timeout
func NewPagerDuty(url string, timeout time.Duration, maxResponseBodySize int, logger *zap.Logger) *PagerDuty {
	if url == "" {
		url = DefaultEventsURL
	}
	if maxResponseBodySize <= 0 {
		maxResponseBodySize = 4096
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PagerDuty{
		url:                 url,
		client:              &http.Client{Timeout: timeout},
		maxResponseBodySize: maxResponseBodySize,
		logger:              logger,
	}
}

// Trigger performs exactly one POST. Only 202 Accepted counts as success.
func (p *PagerDuty) Trigger(ctx context.Context, req Request) (*Result, error) {
	alert := BuildAlertEvent(req.RoutingKey, req.Ticket, req.Assignee)
	result := &Result{Alert: alert}

	body, err := json.Marshal(alert)
	if err != nil {
		return result, fmt.Errorf("%w: failed to marshal alert event: %w", ErrDispatchFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return result, fmt.Errorf("%w: failed to create HTTP request: %w", ErrDispatchFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	result.StartedAt = time.Now()
	resp, err := p.client.Do(httpReq)
	result.FinishedAt = time.Now()
	result.LatencyMs = int(result.FinishedAt.Sub(result.StartedAt).Milliseconds())
	if err != nil {
		return result, fmt.Errorf("%w: HTTP request failed: %w", ErrDispatchFailed, err)
	}
	defer resp.Body.Close()

	status := resp.StatusCode
	result.HTTPStatus = &status

	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, int64(p.maxResponseBodySize)))
	if readErr != nil {
		p.logger.Warn("Failed to read PagerDuty response body",
			zap.Error(readErr),
			zap.String("dedup_key", alert.DedupKey),
		)
	}

	if status != http.StatusAccepted {
		return result, &StatusError{StatusCode: status, Body: string(respBody)}
	}

	var accepted models.AlertResponse
	if err := json.Unmarshal(respBody, &accepted); err != nil {
		p.logger.Warn("PagerDuty accepted the event but returned an unreadable body",
			zap.Error(err),
			zap.String("dedup_key", alert.DedupKey),
		)
		accepted = models.AlertResponse{DedupKey: alert.DedupKey}
	}
	result.Response = &accepted

	return result, nil
}
