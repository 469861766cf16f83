package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/streamreco/recommend-engine/config"
	"github.com/streamreco/recommend-engine/internal/models"
	"github.com/streamreco/recommend-engine/pkg/redis"
)

const maxLedgerRead = 1000

// LedgerRepository is the thin Redis-backed store behind a device's
// recommendation ledger. It knows the key layout and the sign convention's
// score encoding; the merge/drain protocols themselves live in the service
// layer on top of it.
type LedgerRepository struct {
	redis *redis.Client
	cfg   *config.LedgerConfig
}

func NewLedgerRepository(client *redis.Client, cfg *config.LedgerConfig) *LedgerRepository {
	return &LedgerRepository{redis: client, cfg: cfg}
}

// ShardFor applies the hex-prefix routing rule: devices whose id starts
// with '0'-'7' use the V1 engine, everything else uses V2.
func (r *LedgerRepository) ShardFor(device string) models.ShardEngine {
	if len(device) == 0 {
		return models.ShardV2
	}
	if strings.ContainsRune(r.cfg.V1ShardPrefixChars, rune(device[0])) {
		return models.ShardV1
	}
	return models.ShardV2
}

// Key returns the sorted-set key for a device's ledger under the given shard.
func (r *LedgerRepository) Key(device string, shard models.ShardEngine) string {
	if shard == models.ShardV2 {
		return fmt.Sprintf("device|%s|recommend|v2", device)
	}
	return fmt.Sprintf("device|%s|recommend", device)
}

// ServedScore computes the "recently served" score for now, per the
// shard's encoding variant.
func ServedScore(shard models.ShardEngine, now int64) float64 {
	base := float64(now - 2_147_483_647)
	if shard == models.ShardV2 {
		return base / 2e8
	}
	return base
}

// TopPending returns up to n entries with strictly positive score,
// highest first.
func (r *LedgerRepository) TopPending(ctx context.Context, device string, shard models.ShardEngine, n int) ([]models.LedgerEntry, error) {
	key := r.Key(device, shard)
	zs, err := r.redis.ZRevRangeByScoreWithScores(ctx, key, "+inf", "(0", int64(n))
	if err != nil {
		return nil, fmt.Errorf("ledger top pending: %w", err)
	}
	return toEntries(zs), nil
}

// ReadAll fetches the entire ledger (capped at 1000 entries), highest
// score first.
func (r *LedgerRepository) ReadAll(ctx context.Context, device string, shard models.ShardEngine) ([]models.LedgerEntry, error) {
	key := r.Key(device, shard)
	zs, err := r.redis.ZRevRangeByScoreWithScores(ctx, key, "+inf", "-inf", maxLedgerRead)
	if err != nil {
		return nil, fmt.Errorf("ledger read all: %w", err)
	}
	return toEntries(zs), nil
}

// MarkServed rewrites each id's score to the shard's current served score.
func (r *LedgerRepository) MarkServed(ctx context.Context, device string, shard models.ShardEngine, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	key := r.Key(device, shard)
	score := ServedScore(shard, time.Now().Unix())
	members := make([]goredis.Z, len(ids))
	for i, id := range ids {
		members[i] = goredis.Z{Score: score, Member: id}
	}
	if err := r.redis.ZAddMany(ctx, key, members); err != nil {
		return fmt.Errorf("ledger mark served: %w", err)
	}
	return nil
}

// Replace atomically rewrites the ledger key with exactly the given
// entries, the final step of the merge protocol.
func (r *LedgerRepository) Replace(ctx context.Context, device string, shard models.ShardEngine, entries []models.LedgerEntry) error {
	key := r.Key(device, shard)
	members := make([]goredis.Z, len(entries))
	for i, e := range entries {
		members[i] = goredis.Z{Score: e.Score, Member: e.VideoID}
	}
	if err := r.redis.ReplaceSortedSet(ctx, key, members); err != nil {
		return fmt.Errorf("ledger replace: %w", err)
	}
	return nil
}

// Delete removes a device's ledger key entirely.
func (r *LedgerRepository) Delete(ctx context.Context, device string, shard models.ShardEngine) error {
	return r.redis.Delete(ctx, r.Key(device, shard))
}

// Seed populates an empty ledger from a hot-pool sample, each entry at
// score +1.0 (pending), and applies the device TTL.
func (r *LedgerRepository) Seed(ctx context.Context, device string, shard models.ShardEngine, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	key := r.Key(device, shard)
	members := make([]goredis.Z, len(ids))
	for i, id := range ids {
		members[i] = goredis.Z{Score: 1.0, Member: id}
	}
	if err := r.redis.ZAddMany(ctx, key, members); err != nil {
		return fmt.Errorf("ledger seed: %w", err)
	}
	ttl := time.Duration(r.cfg.DeviceTTLSeconds) * time.Second
	if err := r.redis.Expire(ctx, key, ttl); err != nil {
		return fmt.Errorf("ledger seed expire: %w", err)
	}
	return nil
}

func toEntries(zs []goredis.Z) []models.LedgerEntry {
	out := make([]models.LedgerEntry, len(zs))
	for i, z := range zs {
		out[i] = models.LedgerEntry{VideoID: fmt.Sprint(z.Member), Score: z.Score}
	}
	return out
}
