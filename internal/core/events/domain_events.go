package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserCreated = "user.created"
	EventTypeUserUpdated = "user.updated"
	EventTypeUserDeleted = "user.deleted"

	EventTypeWorkItemCreated       = "workitem.created"
	EventTypeWorkItemUpdated       = "workitem.updated"
	EventTypeWorkItemStatusChanged = "workitem.status_changed"
	EventTypeWorkItemDeleted       = "workitem.deleted"
)

// AuditedEventTypes lists every event the services raise.
var AuditedEventTypes = []string{
	EventTypeUserCreated,
	EventTypeUserUpdated,
	EventTypeUserDeleted,
	EventTypeWorkItemCreated,
	EventTypeWorkItemUpdated,
	EventTypeWorkItemStatusChanged,
	EventTypeWorkItemDeleted,
}

// EntityEvent records a change to one user or work item.
type EntityEvent struct {
	BaseEvent
	ActorID  int64 `json:"actor_id"`
	EntityID int64 `json:"entity_id"`
}

func NewEntityEvent(eventType string, actorID, entityID int64, data map[string]interface{}) *EntityEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["actor_id"] = actorID
	data["entity_id"] = entityID
	return &EntityEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now().UTC(),
			Data:      data,
		},
		ActorID:  actorID,
		EntityID: entityID,
	}
}

// SubscribeAuditLog writes one structured log line per committed change.
func SubscribeAuditLog(bus *EventBus, logger *slog.Logger) {
	handler := func(ctx context.Context, event Event) error {
		logger.InfoContext(ctx, "audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}
	for _, t := range AuditedEventTypes {
		bus.Subscribe(t, handler)
	}
}
