// Package store owns the durable transaction collection. The store is
// an explicit object with an injected persistence slot, constructed once
// per process and passed to whoever needs the data.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/mikezucc/spendingtracker/internal/core"
	applog "github.com/mikezucc/spendingtracker/internal/log"
)

// Store holds the ordered, deduplicated transaction list and persists it
// to its slot on every successful mutation.
type Store struct {
	mu     sync.Mutex
	slot   Slot
	logger *applog.Logger
	items  []core.Transaction
}

// Open loads previously persisted transactions from the slot. A missing
// slot means a fresh start; a corrupt one is logged and treated the same
// way rather than surfaced as an error.
func Open(ctx context.Context, slot Slot) *Store {
	s := &Store{
		slot:   slot,
		logger: applog.Default(applog.ComponentStore),
	}

	data, err := slot.Read(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed reading persisted transactions, starting empty", applog.FieldError, err)
		return s
	}
	if data == nil {
		return s
	}
	if err := json.Unmarshal(data, &s.items); err != nil {
		s.logger.WarnContext(ctx, "Persisted transactions unparsable, starting empty", applog.FieldError, err)
		s.items = nil
		return s
	}
	s.logger.InfoContext(ctx, "Loaded persisted transactions", "count", len(s.items))
	return s
}

// Ingest normalizes the raw rows, unions them with the stored records,
// drops exact duplicates (first occurrence wins), re-sorts ascending by
// date and persists the result. Rows that fail normalization are dropped
// silently; the count of records actually added is returned.
func (s *Store) Ingest(ctx context.Context, rows []core.RawRow) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]core.Transaction, len(s.items))
	copy(merged, s.items)

	dropped := 0
	for _, row := range rows {
		txn, err := core.Normalize(row)
		if err != nil {
			dropped++
			s.logger.DebugContext(ctx, "Row dropped during normalization", applog.FieldError, err, "row", row)
			continue
		}
		merged = append(merged, txn)
	}

	seen := make(map[string]struct{}, len(merged))
	deduped := merged[:0]
	for _, txn := range merged {
		key := txn.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, txn)
	}

	// ISO dates order lexicographically; stable sort keeps same-day
	// records in ingestion order.
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Date < deduped[j].Date
	})

	added := len(deduped) - len(s.items)
	s.items = deduped
	if err := s.persist(ctx); err != nil {
		return added, err
	}

	s.logger.InfoContext(ctx, "Ingested transaction rows",
		applog.FieldRows, len(rows), "added", added, "dropped", dropped, "stored", len(s.items))
	return added, nil
}

// Clear forgets every stored transaction and persists the empty list.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Transaction store cleared")
	return nil
}

// List returns a copy of the stored transactions in date order.
func (s *Store) List() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("marshal transactions: %w", err)
	}
	if err := s.slot.Write(ctx, data); err != nil {
		return fmt.Errorf("persist transactions: %w", err)
	}
	return nil
}
