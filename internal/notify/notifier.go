// Package notify implements the optional, best-effort height-advance
// publisher: a sum type over {AwsSqs | Nats | None} dispatched through a
// single interface rather than an inheritance hierarchy.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

// Notifier publishes a chain's newly-committed height. Implementations
// must be best-effort: a Publish failure is logged by the caller and never
// blocks or reverts a cursor advance.
type Notifier interface {
	Publish(ctx context.Context, chainID string, height uint64) error
}

// Payload is the wire shape of a notification.
type Payload struct {
	ChainID           string `json:"chain_id"`
	LastIndexedHeight uint64 `json:"last_indexed_height"`
}

func encode(chainID string, height uint64) ([]byte, error) {
	body, err := json.Marshal(Payload{ChainID: chainID, LastIndexedHeight: height})
	if err != nil {
		return nil, fmt.Errorf("notify: encoding payload: %w", err)
	}
	return body, nil
}

// None is a no-op Notifier, used when notifications are disabled.
type None struct{}

// Publish does nothing and never fails.
func (None) Publish(context.Context, string, uint64) error { return nil }

var (
	_ Notifier = None{}
)
