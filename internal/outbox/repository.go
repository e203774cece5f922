package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"storefront-core/internal/db"

	"github.com/google/uuid"
)

// Enqueue records an event through q, normally the caller's transaction.
func Enqueue(ctx context.Context, q db.DBTX, eventType, aggregateID string, payload any) (*Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedEnqueue, err)
	}

	e := &Event{
		ID:          uuid.New(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     body,
	}

	err = q.QueryRowContext(ctx, `
		INSERT INTO outbox_events (id, aggregate_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		e.ID, e.AggregateID, e.EventType, []byte(e.Payload),
	).Scan(&e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedEnqueue, err)
	}

	return e, nil
}

type Repository interface {
	FetchUnpublished(ctx context.Context, limit int) ([]*Event, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// FetchUnpublished returns the oldest unpublished events first.
func (r *repository) FetchUnpublished(ctx context.Context, limit int) ([]*Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at, published_at
		FROM outbox_events
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*Event, 0)
	for rows.Next() {
		var (
			e       Event
			payload []byte
		)
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &payload, &e.CreatedAt, &e.PublishedAt); err != nil {
			return nil, err
		}
		e.Payload = payload
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (r *repository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET published_at = NOW() WHERE id = $1`, id)
	return err
}
