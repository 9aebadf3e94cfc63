// Package persistence defines the key/value blob contract the engine snapshots
// its collections through, plus the codec and the simple gateways.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"kasa/internal/logger"
)

// Keys under which each collection is independently persisted.
const (
	KeyTransactions = "transactions"
	KeyCategories   = "categories"
	KeyBudgets      = "budgets"
)

// Keys lists every key the engine writes, in save order.
var Keys = []string{KeyTransactions, KeyCategories, KeyBudgets}

// Gateway is an opaque key/value blob store. Read reports found=false for an
// absent key. There is no cross-key transactionality.
type Gateway interface {
	Read(ctx context.Context, key string) (payload []byte, found bool, err error)
	Write(ctx context.Context, key string, payload []byte) error
}

// Load decodes the blob stored under key. It returns ok=false when the key is
// absent, unreadable, or fails to decode; failures are logged, never returned.
func Load[T any](ctx context.Context, g Gateway, key string) (T, bool) {
	var zero T
	payload, found, err := g.Read(ctx, key)
	if err != nil {
		logger.Named("persistence").Warnw("snapshot read failed", "key", key, "error", err)
		return zero, false
	}
	if !found {
		return zero, false
	}

	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		logger.Named("persistence").Warnw("snapshot decode failed", "key", key, "error", err)
		return zero, false
	}
	return out, true
}

// Save encodes value and writes it under key.
func Save(ctx context.Context, g Gateway, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := g.Write(ctx, key, payload); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
