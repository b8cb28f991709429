// Package types holds the wire- and storage-level shapes shared across the
// indexer: what comes back from the chain, what gets grouped, and what gets
// persisted.
package types

import "time"

// Attribute is a single key/value pair from a wasm event. Either field may
// be absent if the source RPC's base64 payload failed to decode; an absent
// attribute is never propagated past the Tx Processor.
type Attribute struct {
	Key      string
	Value    string
	KeyOK    bool
	ValueOK  bool
}

// Present reports whether both the key and value decoded successfully.
func (a Attribute) Present() bool {
	return a.KeyOK && a.ValueOK
}

// Event is one event emitted by a transaction. Only Type == "wasm" events
// are processed by the Tx Processor.
type Event struct {
	Type       string
	Attributes []Attribute
}

// Tx is a transaction as returned by tx_search, after sorting and
// code-filtering.
type Tx struct {
	Hash   string
	Height uint64
	Index  uint64
	Code   int64
	Events []Event
}

// Succeeded reports whether the transaction committed successfully.
func (t Tx) Succeeded() bool {
	return t.Code == 0
}

// AttributeGroup is the ordered slice of attributes belonging to one
// contract invocation inside a wasm event, delimited by "_contract_address".
type AttributeGroup []Attribute

// Pattern is one exact key/value requirement inside a MatcherEvent.
type Pattern struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// MatcherEvent is one named catalogue entry: a candidate group matches when
// the number of its pairs equal to some pattern in Patterns is exactly
// len(Patterns). Each pair counts once; repeated pairs satisfying the same
// pattern each count.
type MatcherEvent struct {
	Name     string    `yaml:"name"`
	Key      string    `yaml:"key"`
	Patterns []Pattern `yaml:"patterns"`
}

// MatcherConfig is the full, immutable pattern catalogue loaded once at
// startup.
type MatcherConfig struct {
	Events []MatcherEvent `yaml:"events"`
}

// Cursor is the durable (chain_id -> last_indexed_height) watermark. It is
// owned exclusively by the Indexer Loop.
type Cursor struct {
	ChainID       string    `bson:"_id"`
	IndexedHeight uint64    `bson:"indexedHeight"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// EventRecord is one persisted match: a group of attributes from one
// contract invocation that satisfied a MatcherEvent's patterns.
type EventRecord struct {
	ChainID     string      `bson:"chainId"`
	BlockHeight uint64      `bson:"blockHeight"`
	TxHash      string      `bson:"txHash"`
	Key         string      `bson:"key"`
	Logs        []LogEntry  `bson:"logs"`
	FullLogs    []LogEntry  `bson:"fullLogs"`
	CreatedAt   time.Time   `bson:"createdAt"`
}

// LogEntry is the persisted shape of a single attribute: decoded key/value,
// no presence flags (absent attributes never reach storage).
type LogEntry struct {
	Key   string `bson:"key"`
	Value string `bson:"value"`
}

// ToLogEntries drops attributes whose key or value failed to decode and
// converts the rest to the persisted LogEntry shape, preserving order.
func ToLogEntries(attrs []Attribute) []LogEntry {
	out := make([]LogEntry, 0, len(attrs))
	for _, a := range attrs {
		if !a.Present() {
			continue
		}
		out = append(out, LogEntry{Key: a.Key, Value: a.Value})
	}
	return out
}
