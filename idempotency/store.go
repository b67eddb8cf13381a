// Package idempotency provides ready-made duplicate-check predicates built
// on per-sender nonce tracking. The verifier core only sees the
// types.DuplicateCheck signature; storage discipline lives here.
package idempotency

import (
	"context"
	"strings"
	"sync"

	pvtypes "github.com/vitwit/payverify/types"
)

// Store decides atomically whether a nonce is new for a sender and records
// it. The compare and the write must happen as one operation: concurrent
// Accept calls for the same sender and nonce must admit exactly one.
type Store interface {
	// Accept reports whether nonce is strictly greater than the last one
	// recorded for sender, recording it when so.
	Accept(ctx context.Context, sender string, nonce uint64) (bool, error)
}

// Predicate adapts a Store into a DuplicateCheck: a payment is new only if
// its nonce is strictly greater than the last one accepted for the sender.
func Predicate(store Store) pvtypes.DuplicateCheck {
	return func(ctx context.Context, tx *pvtypes.TransactionDetail) (bool, error) {
		return store.Accept(ctx, strings.ToLower(tx.From), tx.Nonce)
	}
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore is a process-local Store. The mutex is held across the
// compare and the write, so replayed payments race to a single winner.
type MemoryStore struct {
	mu     sync.Mutex
	nonces map[string]uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nonces: make(map[string]uint64)}
}

func (s *MemoryStore) Accept(_ context.Context, sender string, nonce uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, found := s.nonces[sender]
	if found && nonce <= last {
		return false, nil
	}
	s.nonces[sender] = nonce
	return true, nil
}
