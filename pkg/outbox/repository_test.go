package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbpkg "github.com/minhtrandev/shopora-backend/pkg/db"
	"github.com/minhtrandev/shopora-backend/pkg/db/models"
	"github.com/minhtrandev/shopora-backend/pkg/enums"
	"github.com/minhtrandev/shopora-backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:outbox_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	stmts := []string{
		`CREATE TABLE outbox_events (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			aggregate_type TEXT NOT NULL,
			aggregate_id TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at DATETIME,
			published_at DATETIME,
			attempt_count INTEGER NOT NULL DEFAULT 0,
			last_error TEXT
		)`,
		`CREATE UNIQUE INDEX ux_outbox_events_event_aggregate
			ON outbox_events (event_type, aggregate_type, aggregate_id)
			WHERE event_type IN ('order_placed', 'order_cancelled', 'order_return_requested', 'order_completed')`,
	}
	for _, stmt := range stmts {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedEvent(t *testing.T, db *gorm.DB, eventType enums.OutboxEventType, createdAt time.Time, attempts int, published *time.Time) models.OutboxEvent {
	t.Helper()
	row := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		CreatedAt:     createdAt,
		PublishedAt:   published,
		AttemptCount:  attempts,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestFetchUnpublishedSkipsExhaustedRows(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewRepository(db)
	now := time.Now()

	older := seedEvent(t, db, enums.EventOrderPlaced, now.Add(-2*time.Minute), 0, nil)
	newer := seedEvent(t, db, enums.EventOrderStatusChanged, now.Add(-time.Minute), 2, nil)
	seedEvent(t, db, enums.EventOrderCancelled, now.Add(-3*time.Minute), 3, nil)
	seedEvent(t, db, enums.EventOrderCompleted, now.Add(-4*time.Minute), 0, &now)

	rows, err := repo.FetchUnpublished(10, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, older.ID, rows[0].ID)
	require.Equal(t, newer.ID, rows[1].ID)
}

func TestMarkFailedIncrementsAttemptCount(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewRepository(db)

	row := seedEvent(t, db, enums.EventOrderPlaced, time.Now(), 0, nil)
	require.NoError(t, repo.MarkFailed(row.ID, errors.New("topic unavailable")))
	require.NoError(t, repo.MarkFailed(row.ID, errors.New("topic unavailable")))

	var got models.OutboxEvent
	require.NoError(t, db.First(&got, "id = ?", row.ID).Error)
	require.Equal(t, 2, got.AttemptCount)
	require.NotNil(t, got.LastError)
	require.Equal(t, "topic unavailable", *got.LastError)
	require.Nil(t, got.PublishedAt)
}

func TestMarkPublishedRemovesRowFromFetch(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewRepository(db)

	row := seedEvent(t, db, enums.EventOrderPlaced, time.Now(), 0, nil)
	require.NoError(t, repo.MarkPublished(row.ID))

	rows, err := repo.FetchUnpublished(10, 10)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDeletePublishedBeforePrunesOldAndTerminalRows(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewRepository(db)
	now := time.Now()
	cutoff := now.Add(-24 * time.Hour)
	old := now.Add(-48 * time.Hour)

	seedEvent(t, db, enums.EventOrderPlaced, old, 0, &old)
	seedEvent(t, db, enums.EventOrderCancelled, old, 10, nil)
	fresh := seedEvent(t, db, enums.EventOrderStatusChanged, now, 0, &now)
	pending := seedEvent(t, db, enums.EventOrderCompleted, old, 1, nil)

	var deleted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		deleted, txErr = repo.DeletePublishedBefore(context.Background(), tx, cutoff, 10)
		return txErr
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	var remaining []models.OutboxEvent
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 2)
	ids := []uuid.UUID{remaining[0].ID, remaining[1].ID}
	require.Contains(t, ids, fresh.ID)
	require.Contains(t, ids, pending.ID)
}

func TestEmitWrapsPayloadInEnvelope(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(NewRepository(db), logger.New(logger.Options{ServiceName: "outbox-test", Output: io.Discard}))
	accountID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Actor:         &ActorRef{AccountID: accountID, Role: "customer"},
			Data:          map[string]any{"total": 180000},
			Version:       1,
		})
	})
	require.NoError(t, err)

	var row models.OutboxEvent
	require.NoError(t, db.First(&row).Error)
	require.Equal(t, enums.EventOrderPlaced, row.EventType)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(row.Payload, &envelope))
	require.Equal(t, 1, envelope.Version)
	require.NotEmpty(t, envelope.EventID)
	require.False(t, envelope.OccurredAt.IsZero())
	require.NotNil(t, envelope.Actor)
	require.Equal(t, accountID, envelope.Actor.AccountID)
	require.JSONEq(t, `{"total":180000}`, string(envelope.Data))
}

func TestDuplicateCompletionEventRejectedByIndex(t *testing.T) {
	t.Parallel()
	conn := newTestDB(t)
	svc := NewService(NewRepository(conn), nil)
	aggregateID := uuid.New()
	completed := DomainEvent{
		EventType:     enums.EventOrderCompleted,
		AggregateType: enums.AggregateOrder,
		AggregateID:   aggregateID,
		Data:          map[string]any{"orderId": aggregateID.String()},
		Version:       1,
	}

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, completed)
	}))
	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, completed)
	})
	require.Error(t, err)
	require.True(t, dbpkg.IsUniqueViolation(err, "ux_outbox_events_event_aggregate"))

	// Status changes repeat per order and pass the partial index.
	statusChange := DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   aggregateID,
		Data:          map[string]any{"orderId": aggregateID.String()},
		Version:       1,
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
			return svc.Emit(context.Background(), tx, statusChange)
		}))
	}
}

func TestEmitIfNotExistsIsIdempotentPerAggregate(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := NewService(NewRepository(db), nil)
	aggregateID := uuid.New()
	event := DomainEvent{
		EventType:     enums.EventOrderCompleted,
		AggregateType: enums.AggregateOrder,
		AggregateID:   aggregateID,
		Data:          map[string]any{"orderId": aggregateID.String()},
		Version:       1,
	}

	for i := 0; i < 2; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			return svc.EmitIfNotExists(context.Background(), tx, event)
		})
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
