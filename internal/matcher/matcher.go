// Package matcher implements the stateless pattern matcher: given a group
// of attributes from one contract invocation, decide which MatcherEvents
// in the catalogue it satisfies.
package matcher

import (
	"context"
	"time"

	"wasmindexer/internal/types"
)

// EventStore is the append-only sink for matches. It is the only side
// effect the Matcher performs.
type EventStore interface {
	Append(ctx context.Context, rec types.EventRecord) error
}

// Matcher holds a compiled view of the MatcherConfig catalogue, keyed by
// event name the way the webhook condition Registry keys its matchers by
// EventType -- here there is one match strategy, so the registry holds
// compiled pattern sets rather than polymorphic matcher implementations.
// It is immutable and safe for concurrent use once built.
type Matcher struct {
	order    []string
	registry map[string]entry
	store    EventStore
	onMatch  func()
}

type entry struct {
	key      string
	patterns []types.Pattern
}

// Option configures a Matcher at construction.
type Option func(*Matcher)

// WithMatchCounter registers a hook invoked once per catalogue entry
// satisfied by a group, so a caller can feed it into a metrics sink without
// this package depending on one.
func WithMatchCounter(f func()) Option {
	return func(m *Matcher) { m.onMatch = f }
}

// New compiles cfg into a Matcher that writes confirmed matches to store.
func New(cfg *types.MatcherConfig, store EventStore, opts ...Option) *Matcher {
	m := &Matcher{
		registry: make(map[string]entry, len(cfg.Events)),
		store:    store,
	}
	for _, evt := range cfg.Events {
		m.order = append(m.order, evt.Name)
		m.registry[evt.Name] = entry{key: evt.Key, patterns: evt.Patterns}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MatchContext carries the enclosing transaction's identity, threaded
// through so persisted EventRecords can be attributed to a block/tx.
type MatchContext struct {
	ChainID     string
	BlockHeight uint64
	TxHash      string
}

// Match evaluates grouped against every catalogue entry and appends an
// EventRecord to the store for each satisfied entry. It returns the first
// store error encountered, so the caller (the Tx Processor, inside the
// errgroup fan-out) can treat it as an iteration failure.
func (m *Matcher) Match(ctx context.Context, mc MatchContext, grouped types.AttributeGroup, full []types.Attribute) error {
	for _, name := range m.order {
		e := m.registry[name]
		if !e.satisfiedBy(grouped) {
			continue
		}
		if m.onMatch != nil {
			m.onMatch()
		}

		rec := types.EventRecord{
			ChainID:     mc.ChainID,
			BlockHeight: mc.BlockHeight,
			TxHash:      mc.TxHash,
			Key:         e.key,
			Logs:        types.ToLogEntries(grouped),
			FullLogs:    types.ToLogEntries(full),
			CreatedAt:   time.Now().UTC(),
		}

		if err := m.store.Append(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// satisfiedBy counts the pairs in grouped whose (key,value) equals some
// pattern, each grouped pair counted at most once however many patterns it
// satisfies. The group matches iff that count equals len(patterns) --
// several pairs satisfying the same pattern each add to the count, so they
// can stand in for a pattern no pair satisfies; this is a deliberate
// preservation of the upstream system's counting semantics, not bijective
// per-pattern matching.
func (e entry) satisfiedBy(grouped types.AttributeGroup) bool {
	if len(e.patterns) == 0 {
		return false
	}

	count := 0
	for _, attr := range grouped {
		if !attr.Present() {
			continue
		}
		if attributeSatisfiesAny(attr, e.patterns) {
			count++
		}
	}
	return count == len(e.patterns)
}

func attributeSatisfiesAny(attr types.Attribute, patterns []types.Pattern) bool {
	for _, p := range patterns {
		if attr.Key == p.Key && attr.Value == p.Value {
			return true
		}
	}
	return false
}
