// Package indexer is the control core: tip discovery, mode selection,
// range assembly, fan-out dispatch, cursor advance, notification, pacing.
package indexer

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"

	"wasmindexer/internal/cometrpc"
	"wasmindexer/internal/logger"
	"wasmindexer/internal/types"
)

// CursorStore is the subset of store.CursorStore the loop depends on.
type CursorStore interface {
	FetchOrCreate(ctx context.Context, chainID string) (types.Cursor, error)
	UpdateHeight(ctx context.Context, chainID string, h uint64) error
}

// TxProcessor is the subset of ingest.Processor the loop depends on.
type TxProcessor interface {
	ProcessRange(ctx context.Context, txs []types.Tx, limit int) error
}

// Notifier is the subset of notify.Notifier the loop depends on.
type Notifier interface {
	Publish(ctx context.Context, chainID string, height uint64) error
}

const defaultFanOutMultiplier = 4

// Config bundles the immutable per-run parameters the loop reads every
// iteration.
type Config struct {
	ChainID           string
	StartHeight       uint64
	BlockLagBatchSize uint64

	FetchBatchTimeout  time.Duration
	FetchSingleTimeout time.Duration

	NotificationsEnabled bool

	// FanOutLimit bounds in-flight per-tx workers. <= 0 picks
	// runtime.NumCPU() * defaultFanOutMultiplier.
	FanOutLimit int
}

// Loop is the streaming indexer engine: it reconciles a moving chain tip
// against a durable cursor, one iteration at a time.
type Loop struct {
	cfg Config

	rpc        cometrpc.Client
	cursors    CursorStore
	processor  TxProcessor
	notifier   Notifier

	clock   func() time.Time
	sleeper func(time.Duration)

	metrics *RunMetrics
}

// Option customises a Loop at construction, mainly for deterministic
// tests.
type Option func(*Loop)

// WithClock overrides the loop's time source.
func WithClock(clock func() time.Time) Option {
	return func(l *Loop) { l.clock = clock }
}

// WithSleeper overrides the loop's pacing sleep, letting tests run an
// iteration without wall-clock delay.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(l *Loop) { l.sleeper = sleeper }
}

// WithMetrics injects a RunMetrics constructed ahead of the Loop, so the
// same instance can also be wired into the RPC client and Matcher. Without
// this option the Loop allocates its own.
func WithMetrics(m *RunMetrics) Option {
	return func(l *Loop) { l.metrics = m }
}

// New builds a Loop. notifier may be nil, in which case a no-op is used.
func New(cfg Config, rpc cometrpc.Client, cursors CursorStore, processor TxProcessor, notifier Notifier, opts ...Option) *Loop {
	if cfg.FanOutLimit <= 0 {
		cfg.FanOutLimit = runtime.NumCPU() * defaultFanOutMultiplier
	}

	l := &Loop{
		cfg:       cfg,
		rpc:       rpc,
		cursors:   cursors,
		processor: processor,
		notifier:  notifier,
		clock:     time.Now,
		sleeper:   time.Sleep,
		metrics:   NewRunMetrics(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Snapshot returns the current RunMetrics.
func (l *Loop) Snapshot() MetricsSnapshot {
	return l.metrics.snapshot()
}

// Run drives the loop forever until ctx is cancelled. Startup reads or
// creates the persisted cursor and clamps it against cfg.StartHeight.
func (l *Loop) Run(ctx context.Context) error {
	log := logger.WithComponent(logger.FromContext(ctx), "indexer")

	cursor, err := l.cursors.FetchOrCreate(ctx, l.cfg.ChainID)
	if err != nil {
		return err
	}

	lastIndexed := cursor.IndexedHeight
	if l.cfg.StartHeight > lastIndexed {
		lastIndexed = l.cfg.StartHeight
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		next, paceFor, err := l.runIteration(ctx, log, lastIndexed)
		if err != nil {
			log.Warn("iteration failed, retrying at steady cadence", zap.Error(err))
			l.sleeper(l.cfg.FetchSingleTimeout)
			continue
		}
		lastIndexed = next

		l.sleeper(paceFor)
	}
}

// RunOnce executes exactly one iteration starting from lastIndexed and
// returns the new watermark. It exists so tests can drive the loop
// deterministically, one step at a time, without a background goroutine.
func (l *Loop) RunOnce(ctx context.Context, lastIndexed uint64) (uint64, error) {
	log := logger.WithComponent(logger.FromContext(ctx), "indexer")
	next, paceFor, err := l.runIteration(ctx, log, lastIndexed)
	if err != nil {
		return lastIndexed, err
	}
	l.sleeper(paceFor)
	return next, nil
}

func (l *Loop) runIteration(ctx context.Context, log *zap.Logger, lastIndexed uint64) (next uint64, paceFor time.Duration, err error) {
	l.metrics.iterations.Add(1)

	tip, err := l.rpc.Tip(ctx)
	if err != nil {
		return lastIndexed, l.cfg.FetchSingleTimeout, err
	}
	l.metrics.lastTip.Store(tip)

	mode, from, to := planRange(tip, lastIndexed, l.cfg.BlockLagBatchSize)
	l.metrics.mode.Store(int32(mode))

	if tip <= lastIndexed {
		return lastIndexed, l.cfg.FetchSingleTimeout, nil
	}

	if mode == Batch {
		log.Warn("behind tip, fetching in batch mode")
	} else {
		log.Info("caught up, streaming")
	}

	txs, err := l.rpc.TxSearch(ctx, from, to)
	if err != nil {
		return lastIndexed, l.cfg.FetchSingleTimeout, err
	}
	l.metrics.txsProcessed.Add(uint64(len(txs)))

	if err := l.processor.ProcessRange(ctx, txs, l.cfg.FanOutLimit); err != nil {
		return lastIndexed, l.cfg.FetchSingleTimeout, err
	}

	if err := l.cursors.UpdateHeight(ctx, l.cfg.ChainID, to); err != nil {
		return lastIndexed, l.cfg.FetchSingleTimeout, err
	}

	if l.cfg.NotificationsEnabled && l.notifier != nil {
		if err := l.notifier.Publish(ctx, l.cfg.ChainID, to); err != nil {
			log.Warn("notification publish failed, cursor still advanced", zap.Error(err))
		}
	}

	paceFor = l.cfg.FetchSingleTimeout
	if to-from > 1 {
		paceFor = l.cfg.FetchBatchTimeout
	}

	return to, paceFor, nil
}
