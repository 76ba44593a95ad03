package outbox

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/md-rashed-zaman/meetslots/libs/kafkax"
	otelx "github.com/md-rashed-zaman/meetslots/libs/otel"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func TestUserUpsertedEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	evt, err := UserUpserted(model.User{ID: 42}, true, at)
	if err != nil {
		t.Fatalf("UserUpserted failed: %v", err)
	}
	if evt.EventType != EventUserUpserted || evt.AggregateID != "42" || evt.AggregateType != AggregateUser {
		t.Fatalf("unexpected envelope: %+v", evt)
	}

	var payload struct {
		User       model.User `json:"user"`
		Created    bool       `json:"created"`
		OccurredAt string     `json:"occurred_at"`
	}
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if payload.User.ID != 42 || !payload.Created || payload.OccurredAt != "2024-05-01T12:00:00Z" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestUsersDeletedEvent(t *testing.T) {
	evt, err := UsersDeleted(3, time.Now())
	if err != nil {
		t.Fatalf("UsersDeleted failed: %v", err)
	}
	if evt.EventType != EventUsersDeleted || evt.AggregateID != "*" {
		t.Fatalf("unexpected envelope: %+v", evt)
	}
}

func TestMessageForCarriesMetaAndTrace(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	traceparent := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	msg := messageFor(context.Background(), Record{
		EventID:     "evt-1",
		AggregateID: "7",
		EventType:   EventUserUpserted,
		Payload:     []byte(`{}`),
		Trace:       otelx.Carried{Traceparent: traceparent},
	})

	if msg.Topic != EventUserUpserted || string(msg.Key) != "7" {
		t.Fatalf("unexpected message routing: topic=%s key=%s", msg.Topic, msg.Key)
	}
	meta := kafkax.ExtractEventMeta(msg)
	if meta.EventID != "evt-1" || meta.EventType != EventUserUpserted {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if got := kafkax.HeaderValue(msg.Headers, "traceparent"); got != traceparent {
		t.Fatalf("expected traceparent header %q, got %q", traceparent, got)
	}
}
