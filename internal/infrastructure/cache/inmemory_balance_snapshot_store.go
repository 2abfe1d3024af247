package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InMemoryBalanceSnapshotStore implements BalanceSnapshotStore in process
// memory. Suitable for single-instance deployments and tests.
type InMemoryBalanceSnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]decimal.Decimal
}

// NewInMemoryBalanceSnapshotStore creates a new in-memory snapshot store
func NewInMemoryBalanceSnapshotStore() *InMemoryBalanceSnapshotStore {
	return &InMemoryBalanceSnapshotStore{
		snapshots: make(map[string]decimal.Decimal),
	}
}

func snapshotKey(siteID uuid.UUID, year, month int) string {
	return fmt.Sprintf("%s:%04d-%02d", siteID, year, month)
}

// Get returns the cached closing balance for the site's period
func (s *InMemoryBalanceSnapshotStore) Get(_ context.Context, siteID uuid.UUID, year, month int) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	closing, ok := s.snapshots[snapshotKey(siteID, year, month)]
	if !ok {
		return decimal.Zero, ErrSnapshotMiss
	}
	return closing, nil
}

// Set stores the closing balance for the site's period
func (s *InMemoryBalanceSnapshotStore) Set(_ context.Context, siteID uuid.UUID, year, month int, closing decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[snapshotKey(siteID, year, month)] = closing
	return nil
}

// InvalidateFrom drops the snapshots of (year, month) and every later
// month of the same site.
func (s *InMemoryBalanceSnapshotStore) InvalidateFrom(_ context.Context, siteID uuid.UUID, year, month int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := siteID.String() + ":"
	cutoff := fmt.Sprintf("%04d-%02d", year, month)
	for key := range s.snapshots {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix && key[len(prefix):] >= cutoff {
			delete(s.snapshots, key)
		}
	}
	return nil
}

// Close is a no-op for the in-memory store
func (s *InMemoryBalanceSnapshotStore) Close() error {
	return nil
}
