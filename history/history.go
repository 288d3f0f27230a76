// Package history maintains the locally reconstructed payment history. The
// cache is a strict function of ledger state at fetch time: each refresh
// replaces the snapshot wholesale and never invents entries.
package history

import (
	"context"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vijay-talsangi/tourist-app/logger"
	"github.com/vijay-talsangi/tourist-app/metrics"
	"github.com/vijay-talsangi/tourist-app/registry"
	"github.com/vijay-talsangi/tourist-app/types"
)

// Cache fetches and orders the caller's payments, keeping the last good
// snapshot in a Store for degraded reads.
type Cache struct {
	ledger  registry.Ledger
	store   Store
	log     logger.Logger
	metrics metrics.Recorder
}

// New builds a Cache. A nil store gets an in-memory one.
func New(ledger registry.Ledger, store Store, log logger.Logger, rec metrics.Recorder) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	if log == nil {
		log = logger.NoopLogger{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Cache{ledger: ledger, store: store, log: log, metrics: rec}
}

// Refresh fetches every payment the caller participates in and replaces the
// snapshot. On a read failure the previous snapshot is returned alongside
// the error so callers can degrade instead of crashing; a concurrent write
// completing mid-refresh is simply picked up by the next one.
func (c *Cache) Refresh(ctx context.Context, caller common.Address) ([]types.Payment, error) {
	payments, err := c.ledger.GetMyPayments(ctx, caller)
	if err != nil {
		c.metrics.IncCounter("history_refresh", map[string]string{"outcome": "error"})
		if snap, ok, serr := c.store.Load(ctx, caller); serr == nil && ok {
			return snap, err
		}
		return nil, err
	}

	ordered := Order(payments)
	if serr := c.store.Save(ctx, caller, ordered); serr != nil {
		c.log.Warn("history snapshot save failed", map[string]any{"error": serr.Error()})
	}

	c.metrics.IncCounter("history_refresh", map[string]string{"outcome": "ok"})
	return ordered, nil
}

// Snapshot returns the last stored refresh result without touching the
// ledger.
func (c *Cache) Snapshot(ctx context.Context, caller common.Address) ([]types.Payment, bool, error) {
	return c.store.Load(ctx, caller)
}

// Invalidate drops the snapshot so the next read reflects new ledger state.
func (c *Cache) Invalidate(ctx context.Context, owner common.Address) error {
	return c.store.Drop(ctx, owner)
}

// PaymentsOf returns payments sent by one address, ordered. Uncached.
func (c *Cache) PaymentsOf(ctx context.Context, user common.Address) ([]types.Payment, error) {
	payments, err := c.ledger.GetPaymentsOf(ctx, user)
	if err != nil {
		return nil, err
	}
	return Order(payments), nil
}

// PaymentsTo returns payments addressed to one receiver, ordered. Uncached.
func (c *Cache) PaymentsTo(ctx context.Context, id types.ReceiverID) ([]types.Payment, error) {
	payments, err := c.ledger.GetPaymentsTo(ctx, id)
	if err != nil {
		return nil, err
	}
	return Order(payments), nil
}

// dedupeKey is the stable identity of a record for display purposes. Amount
// is deliberately excluded: two records differing only in amount under the
// same reference and timestamp are treated as one.
type dedupeKey struct {
	from      common.Address
	to        common.Address
	receiver  types.ReceiverID
	reference string
	timestamp uint64
}

// Order deduplicates and sorts payments newest first. The ledger hands
// records back in insertion order; among equal timestamps the later
// insertion wins the earlier display slot.
func Order(payments []types.Payment) []types.Payment {
	out := make([]types.Payment, 0, len(payments))
	seen := make(map[dedupeKey]struct{}, len(payments))

	for i := len(payments) - 1; i >= 0; i-- {
		p := payments[i]
		k := dedupeKey{
			from:      p.From,
			to:        p.To,
			receiver:  p.ReceiverID,
			reference: p.UPITxnID,
			timestamp: p.Timestamp,
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}
