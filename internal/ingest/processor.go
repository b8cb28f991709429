// Package ingest turns one transaction into zero or more attribute groups
// and dispatches each to the Matcher.
package ingest

import (
	"context"

	"golang.org/x/sync/errgroup"

	"wasmindexer/internal/matcher"
	"wasmindexer/internal/types"
)

const wasmEventType = "wasm"

// GroupMatcher is the subset of matcher.Matcher the Tx Processor depends
// on, narrowed to an interface so tests can substitute a fake.
type GroupMatcher interface {
	Match(ctx context.Context, mc matcher.MatchContext, grouped types.AttributeGroup, full []types.Attribute) error
}

// Processor turns transactions into matched events.
type Processor struct {
	chainID string
	matcher GroupMatcher
}

// NewProcessor builds a Processor bound to chainID, dispatching matches to m.
func NewProcessor(chainID string, m GroupMatcher) *Processor {
	return &Processor{chainID: chainID, matcher: m}
}

// ProcessTx groups every wasm event in tx and dispatches one concurrent
// Matcher invocation per group, joining all before returning. A tx with a
// non-zero code is skipped entirely even if it carries events.
func (p *Processor) ProcessTx(ctx context.Context, tx types.Tx) error {
	if !tx.Succeeded() {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, event := range tx.Events {
		if event.Type != wasmEventType || len(event.Attributes) == 0 {
			continue
		}

		groups, full := group(event)
		mc := matcher.MatchContext{
			ChainID:     p.chainID,
			BlockHeight: tx.Height,
			TxHash:      tx.Hash,
		}

		for _, grp := range groups {
			grp := grp
			g.Go(func() error {
				return p.matcher.Match(gctx, mc, grp, full)
			})
		}
	}

	return g.Wait()
}

// ProcessRange dispatches one worker per tx in txs through p, bounded by
// limit. It is the method form of the package-level ProcessRange, letting
// callers depend on an interface rather than this concrete type.
func (p *Processor) ProcessRange(ctx context.Context, txs []types.Tx, limit int) error {
	return ProcessRange(ctx, p, txs, limit)
}

// ProcessRange dispatches one concurrent worker per transaction, each
// running ProcessTx, and waits for all to finish before returning. limit
// bounds in-flight workers; <= 0 means unbounded.
func ProcessRange(ctx context.Context, p *Processor, txs []types.Tx, limit int) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, tx := range txs {
		tx := tx
		g.Go(func() error {
			return p.ProcessTx(gctx, tx)
		})
	}

	return g.Wait()
}
