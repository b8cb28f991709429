// Package config loads the indexer's static configuration: IndexerConfig
// from environment variables, and the matcher catalogue from a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// IndexerConfig is built once at startup and shared immutably by every
// worker for the process lifetime.
type IndexerConfig struct {
	ChainID    string
	RPCEndpoint string

	MongoURI      string
	MongoDatabase string

	StartHeight       uint64
	BlockLagBatchSize uint64

	FetchBatchTimeout  time.Duration
	FetchSingleTimeout time.Duration

	NotificationsEnabled bool
	NotificationsTopic   string

	// FanOutLimit bounds per-range in-flight workers, a bounded refinement
	// over unbounded spawning. 0 means "pick a sane default".
	FanOutLimit int
}

// LoadIndexerConfig reads IndexerConfig from the process environment.
// Missing or malformed required variables are a fatal Config error.
func LoadIndexerConfig() (*IndexerConfig, error) {
	cfg := &IndexerConfig{}

	var err error
	if cfg.ChainID, err = requireEnv("CHAIN_ID"); err != nil {
		return nil, err
	}
	if cfg.RPCEndpoint, err = requireEnv("RPC_ENDPOINT"); err != nil {
		return nil, err
	}
	if cfg.MongoURI, err = requireEnv("MONGO_URI"); err != nil {
		return nil, err
	}
	if cfg.MongoDatabase, err = requireEnv("MONGO_DATABASE"); err != nil {
		return nil, err
	}

	if cfg.StartHeight, err = parseUintEnv("START_HEIGHT", 0); err != nil {
		return nil, err
	}
	if cfg.BlockLagBatchSize, err = parseUintEnv("BLOCK_LAG_BATCH_SIZE", 50); err != nil {
		return nil, err
	}

	batchMS, err := parseUintEnv("FETCH_BATCH_TIMEOUT", 1000)
	if err != nil {
		return nil, err
	}
	singleMS, err := parseUintEnv("FETCH_SINGLE_TIMEOUT", 2000)
	if err != nil {
		return nil, err
	}
	cfg.FetchBatchTimeout = time.Duration(batchMS) * time.Millisecond
	cfg.FetchSingleTimeout = time.Duration(singleMS) * time.Millisecond

	cfg.NotificationsEnabled = parseBoolEnv("BLOCK_NOTIFICATIONS_ENABLED", false)
	cfg.NotificationsTopic = os.Getenv("NOTIFICATIONS_TOPIC")

	fanOut, err := parseUintEnv("FAN_OUT_LIMIT", 0)
	if err != nil {
		return nil, err
	}
	cfg.FanOutLimit = int(fanOut)

	return cfg, nil
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("config: missing required env var %s", key)
	}
	return v, nil
}

func parseUintEnv(key string, def uint64) (uint64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s=%q: %w", key, raw, err)
	}
	return v, nil
}

func parseBoolEnv(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}
