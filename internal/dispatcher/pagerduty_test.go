package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hhafez300/thena-pagerduty-bridge/internal/models"
)

func testTicket() models.TicketEvent {
	return models.TicketEvent{
		EventType:     models.TicketUpdated,
		TicketID:      "T1",
		Title:         "Checkout is down",
		PriorityLabel: "P0",
		TeamName:      "Payments",
		CustomerEmail: "buyer@shop.io",
	}
}

func TestBuildAlertEvent(t *testing.T) {
	alert := BuildAlertEvent("key-a", testTicket(), "hossamhafez@luciq.ai")

	assert.Equal(t, "key-a", alert.RoutingKey)
	assert.Equal(t, "trigger", alert.EventAction)
	assert.Equal(t, "thena-ticket-T1", alert.DedupKey)
	assert.Equal(t, "Thena → PagerDuty Bridge", alert.Client)
	assert.Equal(t, "[hossamhafez@luciq.ai] Checkout is down", alert.Payload.Summary)
	assert.Equal(t, "thena", alert.Payload.Source)
	assert.Equal(t, "critical", alert.Payload.Severity)

	details := alert.Payload.CustomDetails
	assert.Equal(t, "ticket:updated", details.EventType)
	assert.Equal(t, "T1", details.TicketID)
	require.NotNil(t, details.Priority)
	assert.Equal(t, "P0", *details.Priority)
	require.NotNil(t, details.Team)
	assert.Equal(t, "Payments", *details.Team)
	require.NotNil(t, details.CustomerEmail)
	assert.Equal(t, "buyer@shop.io", *details.CustomerEmail)
}

func TestBuildAlertEventDefaults(t *testing.T) {
	alert := BuildAlertEvent("key-a", models.TicketEvent{EventType: models.TicketCreated, TicketID: "T7"}, "u-1")

	assert.Equal(t, "[u-1] Thena ticket T7", alert.Payload.Summary)
	assert.Equal(t, "info", alert.Payload.Severity)
	assert.Nil(t, alert.Payload.CustomDetails.Priority)
	assert.Nil(t, alert.Payload.CustomDetails.Team)

	raw, err := json.Marshal(alert.Payload.CustomDetails)
	require.NoError(t, err)
	assert.JSONEq(t, `{"eventType":"ticket:created","ticketId":"T7","priority":null,"assignee":"u-1","team":null,"customer_email":null}`, string(raw))
}

func TestTriggerAccepted(t *testing.T) {
	var received models.AlertEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"status":"success","message":"Event processed","dedup_key":"thena-ticket-T1"}`))
	}))
	defer srv.Close()

	pd := NewPagerDuty(srv.URL, 2*time.Second, 0, zap.NewNop())
	result, err := pd.Trigger(context.Background(), Request{RoutingKey: "key-a", Ticket: testTicket(), Assignee: "hossamhafez@luciq.ai"})
	require.NoError(t, err)

	require.NotNil(t, result.Response)
	assert.Equal(t, "success", result.Response.Status)
	assert.Equal(t, "thena-ticket-T1", result.Response.DedupKey)
	require.NotNil(t, result.HTTPStatus)
	assert.Equal(t, http.StatusAccepted, *result.HTTPStatus)

	assert.Equal(t, "key-a", received.RoutingKey)
	assert.Equal(t, "thena-ticket-T1", received.DedupKey)
}

func TestTriggerNonAcceptedStatus(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusBadRequest, http.StatusTooManyRequests, http.StatusInternalServerError} {
		code := code
		t.Run(http.StatusText(code), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
				_, _ = w.Write([]byte(`{"status":"invalid event"}`))
			}))
			defer srv.Close()

			pd := NewPagerDuty(srv.URL, 2*time.Second, 0, zap.NewNop())
			result, err := pd.Trigger(context.Background(), Request{RoutingKey: "key-a", Ticket: testTicket(), Assignee: "a"})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDispatchFailed)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, code, statusErr.StatusCode)
			assert.Contains(t, statusErr.Body, "invalid event")

			require.NotNil(t, result)
			assert.Nil(t, result.Response)
		})
	}
}

func TestTriggerTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	pd := NewPagerDuty(url, time.Second, 0, zap.NewNop())
	result, err := pd.Trigger(context.Background(), Request{RoutingKey: "key-a", Ticket: testTicket(), Assignee: "a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDispatchFailed)
	require.NotNil(t, result)
	assert.Nil(t, result.HTTPStatus)
}

func TestTriggerTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()
	defer close(release)

	pd := NewPagerDuty(srv.URL, 50*time.Millisecond, 0, zap.NewNop())
	_, err := pd.Trigger(context.Background(), Request{RoutingKey: "key-a", Ticket: testTicket(), Assignee: "a"})
	assert.ErrorIs(t, err, ErrDispatchFailed)
}
