// Package store persists cursors and matched events to MongoDB: an
// append-only events collection and a single-document-per-chain cursors
// collection.
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	cursorsCollection = "cursors"
	eventsCollection  = "events"
)

// Database wraps the Mongo connection and exposes the two collections the
// Cursor Store and Event Store need.
type Database struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri and selects database dbName, applying connection-pool
// settings suitable for many concurrent callers.
func Connect(ctx context.Context, uri, dbName string) (*Database, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("store: connecting to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("store: pinging mongo: %w", err)
	}

	return &Database{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects the underlying client.
func (d *Database) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

func (d *Database) cursors() *mongo.Collection {
	return d.db.Collection(cursorsCollection)
}

func (d *Database) events() *mongo.Collection {
	return d.db.Collection(eventsCollection)
}
