package outbox

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/model"
)

const (
	AggregateUser = "user"

	// The Kafka topic name equals the event type.
	EventUserUpserted = "calendar.user.upserted.v1"
	EventUsersDeleted = "calendar.users.deleted.v1"
)

// Event is the envelope written to outbox_events.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type userUpsertedPayload struct {
	User       model.User `json:"user"`
	Created    bool       `json:"created"`
	OccurredAt string     `json:"occurred_at"`
}

type usersDeletedPayload struct {
	Deleted    int64  `json:"deleted"`
	OccurredAt string `json:"occurred_at"`
}

func UserUpserted(u model.User, created bool, at time.Time) (Event, error) {
	payload, err := json.Marshal(userUpsertedPayload{User: u, Created: created, OccurredAt: at.UTC().Format(time.RFC3339)})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: AggregateUser,
		AggregateID:   strconv.Itoa(u.ID),
		EventType:     EventUserUpserted,
		Payload:       payload,
	}, nil
}

func UsersDeleted(n int64, at time.Time) (Event, error) {
	payload, err := json.Marshal(usersDeletedPayload{Deleted: n, OccurredAt: at.UTC().Format(time.RFC3339)})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: AggregateUser,
		AggregateID:   "*",
		EventType:     EventUsersDeleted,
		Payload:       payload,
	}, nil
}
