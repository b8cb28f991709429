package store

import (
	"context"
	"fmt"

	"wasmindexer/internal/types"
)

// EventStore appends matched events. It never updates or deletes, and
// performs no dedup -- inserts are concurrency-safe by construction.
type EventStore struct {
	db *Database
}

// NewEventStore builds an EventStore over db.
func NewEventStore(db *Database) *EventStore {
	return &EventStore{db: db}
}

// Append inserts one immutable EventRecord document.
func (s *EventStore) Append(ctx context.Context, rec types.EventRecord) error {
	if _, err := s.db.events().InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("store: appending event for tx %s: %w", rec.TxHash, err)
	}
	return nil
}
