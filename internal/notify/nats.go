package notify

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATS publishes notifications to a single NATS subject.
type NATS struct {
	conn    *nats.Conn
	subject string
}

// NewNATS dials url and builds a notifier that publishes to subject.
func NewNATS(url, subject string) (*NATS, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("notify: connecting to nats: %w", err)
	}

	return &NATS{conn: conn, subject: subject}, nil
}

var _ Notifier = (*NATS)(nil)

// Publish sends the payload as a single NATS message.
func (n *NATS) Publish(_ context.Context, chainID string, height uint64) error {
	body, err := encode(chainID, height)
	if err != nil {
		return err
	}

	if err := n.conn.Publish(n.subject, body); err != nil {
		return fmt.Errorf("notify: nats publish: %w", err)
	}
	return nil
}

// Close closes the underlying connection; it does not drain subscriptions
// first.
func (n *NATS) Close() {
	n.conn.Close()
}
