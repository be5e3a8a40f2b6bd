package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chiragjain10/avrcraft-sub000/internal/entity"
	"github.com/chiragjain10/avrcraft-sub000/internal/repository"
)

type orderEventLog struct {
	db *sql.DB
}

// NewOrderEventLog creates a new OrderEventLog backed by Postgres.
func NewOrderEventLog(db *sql.DB) repository.OrderEventLog {
	return &orderEventLog{db: db}
}

func (s *orderEventLog) Append(ctx context.Context, orderID string, expectedVersion int, events ...entity.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentVersion int
	err = tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM order_events WHERE order_id = $1", orderID).Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current order version: %w", err)
	}
	if currentVersion != expectedVersion {
		return fmt.Errorf("%w: expected version %d, got %d", repository.ErrVersionConflict, expectedVersion, currentVersion)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO order_events (id, order_id, version, event_type, payload, created_at) VALUES ($1, $2, $3, $4, $5, $6)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	version := expectedVersion
	now := time.Now().UTC()
	for _, event := range events {
		version++

		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
		}

		_, err = stmt.ExecContext(ctx, uuid.NewString(), orderID, version, event.EventType(), payload, now)
		if err != nil {
			return fmt.Errorf("failed to insert event %s: %w", event.EventType(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *orderEventLog) History(ctx context.Context, orderID string) ([]entity.EventRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, order_id, version, event_type, payload, created_at FROM order_events WHERE order_id = $1 ORDER BY version ASC", orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events for order %s: %w", orderID, err)
	}
	defer rows.Close()

	var records []entity.EventRecord
	for rows.Next() {
		var (
			record  entity.EventRecord
			payload []byte
		)
		if err := rows.Scan(&record.ID, &record.OrderID, &record.Version, &record.EventType, &payload, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event record: %w", err)
		}
		record.Payload = json.RawMessage(payload)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return records, nil
}
