package hedge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotStore mirrors the live position book to Redis so open tranches
// survive a process restart. It is strictly best-effort: the in-memory
// Book remains authoritative (spec §5 single-writer, no lock), and every
// method here degrades to a logged-by-caller error rather than altering
// live accounting. A Redis outage costs restart recovery, never
// correctness.
type SnapshotStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewSnapshotStore builds a store against an already-configured client.
func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{client: client, keyPrefix: "hedge:"}
}

// redisKey renders the "hedge:{spot}:{futures}:{base}" key convention.
func (s *SnapshotStore) redisKey(key Key) string {
	return fmt.Sprintf("%s%s:%s:%s", s.keyPrefix, key.SpotVenue, key.FuturesVenue, key.Base)
}

// snapshotPosition is the wire shape written to Redis — a flat copy of
// Position, since Key is reconstructible from the Redis key itself but is
// carried redundantly here to make a standalone GET self-describing.
type snapshotPosition struct {
	Key         Key       `json:"key"`
	NotionalUSD float64   `json:"notional_usd"`
	Tranches    []Tranche `json:"tranches"`
}

// Write mirrors one position to Redis, or deletes its key if the position
// has gone to zero. Call after every RecordEntry/RecordExit.
func (s *SnapshotStore) Write(ctx context.Context, p *Position) error {
	redisKey := s.redisKey(p.Key)
	if p.IsZero() {
		return s.client.Del(ctx, redisKey).Err()
	}
	payload, err := json.Marshal(snapshotPosition{
		Key:         p.Key,
		NotionalUSD: p.NotionalUSD,
		Tranches:    p.Tranches,
	})
	if err != nil {
		return fmt.Errorf("hedge: marshal snapshot: %w", err)
	}
	return s.client.Set(ctx, redisKey, payload, 0).Err()
}

// Restore rehydrates a Book from every "hedge:*" key found in Redis. Errors
// from individual keys are skipped rather than aborting the whole scan —
// a corrupt or unreadable snapshot for one position should not block
// startup recovery for the rest.
func (s *SnapshotStore) Restore(ctx context.Context) (*Book, error) {
	book := NewBook()

	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue
		}
		var snap snapshotPosition
		if json.Unmarshal(raw, &snap) != nil {
			continue
		}
		p := book.GetOrCreate(snap.Key)
		p.NotionalUSD = snap.NotionalUSD
		p.Tranches = snap.Tranches
	}
	if err := iter.Err(); err != nil {
		return book, fmt.Errorf("hedge: scan snapshots: %w", err)
	}
	return book, nil
}

// NewClient is a thin convenience wrapper over redis.NewClient matching
// this module's connection-setting conventions (dial/read/write timeouts
// mirroring the teacher's cache client).
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}
