// Command reset-cursor forces a chain's cursor back to a given height, for
// operators recovering from a bad range without waiting for a full replay.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"wasmindexer/internal/store"
)

func main() {
	chainID := flag.String("chain-id", os.Getenv("CHAIN_ID"), "chain to reset")
	height := flag.Uint64("height", 0, "height to reset the cursor to")
	flag.Parse()

	if *chainID == "" {
		log.Fatal("reset-cursor: -chain-id is required")
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDatabase := os.Getenv("MONGO_DATABASE")
	if mongoURI == "" || mongoDatabase == "" {
		log.Fatal("reset-cursor: MONGO_URI and MONGO_DATABASE must be set")
	}

	ctx := context.Background()
	db, err := store.Connect(ctx, mongoURI, mongoDatabase)
	if err != nil {
		log.Fatalf("reset-cursor: connecting to mongo: %v", err)
	}
	defer db.Close(ctx)

	cursors := store.NewCursorStore(db)
	if _, err := cursors.FetchOrCreate(ctx, *chainID); err != nil {
		log.Fatalf("reset-cursor: fetching cursor for %s: %v", *chainID, err)
	}

	if err := cursors.UpdateHeight(ctx, *chainID, *height); err != nil {
		log.Fatalf("reset-cursor: resetting cursor for %s: %v", *chainID, err)
	}

	fmt.Printf("cursor for %s reset to height %d\n", *chainID, *height)
}
