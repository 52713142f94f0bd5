package notifications

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/gigboard/gigboard-backend/pkg/logger"
)

// EventType identifies the notification families emitted by the core.
type EventType string

const (
	EventOrderCreated           EventType = "order.created"
	EventOrderStatusChanged     EventType = "order.status_changed"
	EventOrderDelivered         EventType = "order.delivered"
	EventOrderRevisionRequested EventType = "order.revision_requested"
	EventBankRequestVerified    EventType = "bank_request.verified"
	EventBankRequestRejected    EventType = "bank_request.rejected"
)

// Event is the best-effort notification payload. OrderID may be Nil for
// events not tied to an order.
type Event struct {
	Type        EventType      `json:"type"`
	OrderID     uuid.UUID      `json:"order_id,omitempty"`
	ActorID     uuid.UUID      `json:"actor_id"`
	RecipientID uuid.UUID      `json:"recipient_id"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Data        map[string]any `json:"data,omitempty"`
}

// Emitter fires notifications as a side channel. Implementations never return
// errors to the caller: a failed emit must not undo the mutation it follows.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

const publishTimeout = 10 * time.Second

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type publisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) publishResult
}

type pubsubEmitter struct {
	pub  publisher
	logg *logger.Logger
}

// NewPubSubEmitter wraps a topic publisher into a best-effort emitter.
func NewPubSubEmitter(pub *pubsub.Publisher, logg *logger.Logger) Emitter {
	return &pubsubEmitter{pub: wrapPublisher(pub), logg: logg}
}

func (e *pubsubEmitter) Emit(ctx context.Context, event Event) {
	if e.pub == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		e.logg.Error(ctx, "marshal notification event", err)
		return
	}

	msg := &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type":  string(event.Type),
			"order_id":    event.OrderID.String(),
			"occurred_at": event.OccurredAt.Format(time.RFC3339Nano),
		},
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	result := e.pub.Publish(publishCtx, msg)
	if result == nil {
		e.logg.Error(ctx, "notification publisher returned nil result", nil)
		return
	}
	if _, err := result.Get(publishCtx); err != nil {
		ctx = e.logg.WithField(ctx, "event_type", string(event.Type))
		e.logg.Error(ctx, "notification publish failed", err)
	}
}

func wrapPublisher(p *pubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{pub: p}
}

type gcpPublisher struct {
	pub *pubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *pubsub.Message) publishResult {
	return p.pub.Publish(ctx, msg)
}

// NoopEmitter discards events; used when no broker is configured.
type NoopEmitter struct{}

func (NoopEmitter) Emit(context.Context, Event) {}
