package memory

import (
	"context"
	"sync"

	"salesdash/internal/core"
)

// Store keeps transactions in insertion order.
type Store struct {
	mu    sync.RWMutex
	items []core.Transaction
}

func New(ts ...core.Transaction) *Store {
	return &Store{items: inUTC(ts)}
}

// inUTC copies ts with every sale date in UTC, matching what the SQLite
// store reads back.
func inUTC(ts []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(ts))
	for i, t := range ts {
		t.DateOfSale = t.DateOfSale.UTC()
		out[i] = t
	}
	return out
}

// Find returns copies of the matching records in insertion order.
func (s *Store) Find(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Transaction{}
	for _, t := range s.items {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, f core.Filter) (int, error) {
	ts, err := s.Find(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(ts), nil
}

func (s *Store) FindPage(ctx context.Context, f core.Filter, offset, limit int) ([]core.Transaction, error) {
	ts, err := s.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	if offset < 0 || offset >= len(ts) || limit <= 0 {
		return []core.Transaction{}, nil
	}
	end := len(ts)
	if limit < end-offset {
		end = offset + limit
	}
	return ts[offset:end], nil
}

// ReplaceAll swaps the whole dataset. Invalid records are rejected before
// anything is replaced.
func (s *Store) ReplaceAll(ctx context.Context, ts []core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, t := range ts {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = inUTC(ts)
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
