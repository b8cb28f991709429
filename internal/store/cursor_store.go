package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"wasmindexer/internal/types"
)

// CursorStore implements the Indexer Loop's durable
// (chain_id -> last_indexed_height) watermark.
type CursorStore struct {
	db *Database
}

// NewCursorStore builds a CursorStore over db.
func NewCursorStore(db *Database) *CursorStore {
	return &CursorStore{db: db}
}

// FetchOrCreate returns the existing cursor for chainID, or atomically
// inserts one at height 0 if none exists yet. The upsert makes
// lookup-then-insert race-free even though a single writer is the only
// caller in practice.
func (s *CursorStore) FetchOrCreate(ctx context.Context, chainID string) (types.Cursor, error) {
	var cur types.Cursor
	err := s.db.cursors().FindOne(ctx, bson.M{"_id": chainID}).Decode(&cur)
	if err == nil {
		return cur, nil
	}
	if err != mongo.ErrNoDocuments {
		return types.Cursor{}, fmt.Errorf("store: fetching cursor %s: %w", chainID, err)
	}

	now := time.Now().UTC()
	_, err = s.db.cursors().UpdateOne(ctx,
		bson.M{"_id": chainID},
		bson.M{"$setOnInsert": bson.M{"indexedHeight": uint64(0), "updatedAt": now}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return types.Cursor{}, fmt.Errorf("store: creating cursor %s: %w", chainID, err)
	}

	if err := s.db.cursors().FindOne(ctx, bson.M{"_id": chainID}).Decode(&cur); err != nil {
		return types.Cursor{}, fmt.Errorf("store: reading created cursor %s: %w", chainID, err)
	}
	return cur, nil
}

// UpdateHeight sets indexedHeight to h and updatedAt to now, in a single
// write. Idempotent for repeated calls with equal h.
func (s *CursorStore) UpdateHeight(ctx context.Context, chainID string, h uint64) error {
	_, err := s.db.cursors().UpdateOne(ctx,
		bson.M{"_id": chainID},
		bson.M{"$set": bson.M{"indexedHeight": h, "updatedAt": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("store: updating cursor %s to height %d: %w", chainID, h, err)
	}
	return nil
}
