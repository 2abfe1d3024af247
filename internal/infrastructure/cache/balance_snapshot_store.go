package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// ErrSnapshotMiss is returned when no snapshot is cached for the period.
var ErrSnapshotMiss = errors.New("balance snapshot not cached")

// BalanceSnapshotStore caches per-site month-closing balances so that
// opening-balance lookups do not replay the whole ledger every time.
// A snapshot is only a cache: report aggregation recomputes and
// overwrites it, and any balance-affecting write for a past period must
// invalidate the affected months.
type BalanceSnapshotStore interface {
	Get(ctx context.Context, siteID uuid.UUID, year, month int) (decimal.Decimal, error)
	Set(ctx context.Context, siteID uuid.UUID, year, month int, closing decimal.Decimal) error
	// InvalidateFrom drops the snapshots of (year, month) and every later
	// month of the same site.
	InvalidateFrom(ctx context.Context, siteID uuid.UUID, year, month int) error
	Close() error
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisBalanceSnapshotStore implements BalanceSnapshotStore on Redis.
// Suitable for distributed deployments where several instances share
// the snapshot state.
type RedisBalanceSnapshotStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

const defaultSnapshotTTL = 30 * 24 * time.Hour

// NewRedisBalanceSnapshotStore creates a new Redis-backed snapshot store
func NewRedisBalanceSnapshotStore(cfg RedisConfig) (*RedisBalanceSnapshotStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisBalanceSnapshotStoreWithClient(client, ""), nil
}

// NewRedisBalanceSnapshotStoreWithClient creates a store with an existing
// client. Useful for testing or when sharing a client across components.
func NewRedisBalanceSnapshotStoreWithClient(client *redis.Client, keyPrefix string) *RedisBalanceSnapshotStore {
	if keyPrefix == "" {
		keyPrefix = "report:closing:"
	}
	return &RedisBalanceSnapshotStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       defaultSnapshotTTL,
	}
}

func (s *RedisBalanceSnapshotStore) key(siteID uuid.UUID, year, month int) string {
	return fmt.Sprintf("%s%s:%04d-%02d", s.keyPrefix, siteID, year, month)
}

// Get returns the cached closing balance for the site's period
func (s *RedisBalanceSnapshotStore) Get(ctx context.Context, siteID uuid.UUID, year, month int) (decimal.Decimal, error) {
	val, err := s.client.Get(ctx, s.key(siteID, year, month)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, ErrSnapshotMiss
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read balance snapshot: %w", err)
	}

	closing, err := decimal.NewFromString(val)
	if err != nil {
		// A corrupt value is treated as a miss; the caller recomputes.
		return decimal.Zero, ErrSnapshotMiss
	}
	return closing, nil
}

// Set stores the closing balance for the site's period
func (s *RedisBalanceSnapshotStore) Set(ctx context.Context, siteID uuid.UUID, year, month int, closing decimal.Decimal) error {
	if err := s.client.Set(ctx, s.key(siteID, year, month), closing.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store balance snapshot: %w", err)
	}
	return nil
}

// InvalidateFrom drops the snapshots of (year, month) and every later
// month of the same site. The scan ends at the current month: writers
// never store a period past the present.
func (s *RedisBalanceSnapshotStore) InvalidateFrom(ctx context.Context, siteID uuid.UUID, year, month int) error {
	now := time.Now().UTC()
	keys := make([]string, 0, 16)
	for y, m := year, month; y < now.Year() || (y == now.Year() && m <= int(now.Month())); {
		keys = append(keys, s.key(siteID, y, m))
		m++
		if m > 12 {
			m = 1
			y++
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate balance snapshots: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (s *RedisBalanceSnapshotStore) Close() error {
	return s.client.Close()
}
