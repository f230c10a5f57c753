package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minhtrandev/shopora-backend/pkg/db"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	"github.com/minhtrandev/shopora-backend/pkg/logger"
	"github.com/minhtrandev/shopora-backend/pkg/outbox"
)

// Event is one recorded shopper behavior.
type Event struct {
	AccountID  uuid.UUID          `json:"accountId"`
	ProductID  uuid.UUID          `json:"productId"`
	VariantID  uuid.UUID          `json:"variantId,omitempty"`
	Type       enums.BehaviorType `json:"type"`
	OccurredAt time.Time          `json:"occurredAt"`
}

// Recorder queues behavior events onto the transactional outbox. Callers treat
// recording as best effort: Record never returns an error, failures only log.
type Recorder struct {
	db     *db.Client
	outbox *outbox.Service
	logg   *logger.Logger
}

func NewRecorder(client *db.Client, outboxSvc *outbox.Service, logg *logger.Logger) *Recorder {
	return &Recorder{db: client, outbox: outboxSvc, logg: logg}
}

// Record queues the event in its own short transaction, outside whatever
// transaction the caller may be running. A dropped behavior event must never
// fail a cart or order mutation.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if !event.Type.IsValid() {
		r.logg.Warn(r.logg.WithField(ctx, "behavior_type", event.Type.String()), "behavior event dropped: unknown type")
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		return r.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBehaviorRecorded,
			AggregateType: enums.AggregateBehavior,
			AggregateID:   event.AccountID,
			Actor:         &outbox.ActorRef{AccountID: event.AccountID},
			Data:          event,
			Version:       1,
			OccurredAt:    event.OccurredAt,
		})
	})
	if err != nil {
		r.logg.Error(r.logg.WithAccountID(ctx, event.AccountID.String()), "behavior event dropped", err)
	}
}
