package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"wasmindexer/internal/cometrpc"
	"wasmindexer/internal/config"
	"wasmindexer/internal/indexer"
	"wasmindexer/internal/ingest"
	"wasmindexer/internal/logger"
	"wasmindexer/internal/matcher"
	"wasmindexer/internal/notify"
	"wasmindexer/internal/store"
)

func main() {
	log, err := logger.New(logger.Config{Level: os.Getenv("LOG_LEVEL")})
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Fatal("fatal startup error", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	cfg, err := config.LoadIndexerConfig()
	if err != nil {
		return fmt.Errorf("loading indexer config: %w", err)
	}
	log.Info("indexer config loaded",
		zap.String("chain_id", cfg.ChainID),
		zap.String("rpc_endpoint", cfg.RPCEndpoint),
		zap.Uint64("start_height", cfg.StartHeight),
		zap.Uint64("block_lag_batch_size", cfg.BlockLagBatchSize))

	matcherConfigPath := os.Getenv("MATCHER_CONFIG_PATH")
	if matcherConfigPath == "" {
		matcherConfigPath = "matcher.yaml"
	}
	matcherCfg, err := config.LoadMatcherConfig(matcherConfigPath)
	if err != nil {
		return fmt.Errorf("loading matcher config: %w", err)
	}
	log.Info("matcher config loaded", zap.Int("event_count", len(matcherCfg.Events)))

	db, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return fmt.Errorf("connecting to mongo: %w", err)
	}
	defer db.Close(context.Background())
	log.Info("connected to mongo", zap.String("database", cfg.MongoDatabase))

	cursorStore := store.NewCursorStore(db)
	eventStore := store.NewEventStore(db)

	metrics := indexer.NewRunMetrics()
	rpcClient := cometrpc.NewHTTPClient(cfg.RPCEndpoint, cometrpc.WithDecodeFailureCounter(metrics.IncDecodeFailures))
	m := matcher.New(matcherCfg, eventStore, matcher.WithMatchCounter(metrics.IncEventsMatched))
	processor := ingest.NewProcessor(cfg.ChainID, m)

	notifier, err := buildNotifier(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building notifier: %w", err)
	}

	loop := indexer.New(indexer.Config{
		ChainID:              cfg.ChainID,
		StartHeight:          cfg.StartHeight,
		BlockLagBatchSize:    cfg.BlockLagBatchSize,
		FetchBatchTimeout:    cfg.FetchBatchTimeout,
		FetchSingleTimeout:   cfg.FetchSingleTimeout,
		NotificationsEnabled: cfg.NotificationsEnabled,
		FanOutLimit:          cfg.FanOutLimit,
	}, rpcClient, cursorStore, processor, notifier, indexer.WithMetrics(metrics))

	log.Info("starting indexer loop")
	return loop.Run(ctx)
}

func buildNotifier(ctx context.Context, cfg *config.IndexerConfig) (notify.Notifier, error) {
	if !cfg.NotificationsEnabled {
		return notify.None{}, nil
	}

	switch os.Getenv("NOTIFIER_KIND") {
	case "sqs":
		queueURL := os.Getenv("NOTIFIER_SQS_QUEUE_URL")
		return notify.NewSQS(ctx, queueURL, cfg.ChainID)
	case "nats":
		url := os.Getenv("NOTIFIER_NATS_URL")
		return notify.NewNATS(url, cfg.NotificationsTopic)
	default:
		return notify.None{}, nil
	}
}
