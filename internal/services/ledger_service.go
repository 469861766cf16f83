package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/streamreco/recommend-engine/config"
	"github.com/streamreco/recommend-engine/internal/models"
	"github.com/streamreco/recommend-engine/internal/repository"
	"github.com/streamreco/recommend-engine/pkg/metrics"
)

const hotPoolSampleSize = 200

// LedgerService (C5) implements the merge and drain protocols over a
// device's ledger. The sign convention — score > 0 is pending, score <= 0
// is recently served — is the central invariant both protocols preserve.
type LedgerService struct {
	repo    *repository.LedgerRepository
	hotPool *HotPoolService
	cfg     *config.LedgerConfig
}

func NewLedgerService(repo *repository.LedgerRepository, hotPool *HotPoolService, cfg *config.LedgerConfig) *LedgerService {
	return &LedgerService{repo: repo, hotPool: hotPool, cfg: cfg}
}

// MergeCandidates is the behavior-update protocol: it folds a set of
// recall candidates into the device's ledger, forces the just-interacted
// seed into the served half, sorts the working set, and atomically
// replaces the ledger with the capped admitted entries. A read failure or
// an empty ledger is a no-op — this never creates a ledger.
func (l *LedgerService) MergeCandidates(ctx context.Context, device, seedID string, op models.Operation, candidates models.CandidateSet) error {
	shard := l.repo.ShardFor(device)

	existing, err := l.repo.ReadAll(ctx, device, shard)
	if err != nil || len(existing) == 0 {
		metrics.LedgerMergeTotal.WithLabelValues(shard.String(), "empty_ledger").Inc()
		return nil
	}

	now := time.Now().Unix()
	servedScore := repository.ServedScore(shard, now)

	working := mergeWorkingSet(existing, seedID, servedScore, shard, op, candidates)
	admitted := admitCapped(sortedEntries(working), l.cfg.PendingHalfCap, l.cfg.ServedHalfCap)

	if err := l.repo.Replace(ctx, device, shard, admitted); err != nil {
		metrics.LedgerMergeTotal.WithLabelValues(shard.String(), "error").Inc()
		return err
	}
	metrics.LedgerMergeTotal.WithLabelValues(shard.String(), "merged").Inc()
	return nil
}

// DrainForRead returns up to n pending ids, highest score first. If the
// ledger is empty it reseeds from a random hot-pool sample: it returns
// the first n of a 200-id draw, seeds the remainder into the ledger at
// score +1.0, and applies the device TTL. Every returned id is then
// marked served so it will not reappear on the next call.
func (l *LedgerService) DrainForRead(ctx context.Context, device string, n int) ([]string, error) {
	shard := l.repo.ShardFor(device)

	entries, err := l.repo.TopPending(ctx, device, shard, n)
	if err != nil {
		entries = nil
	}

	var result []string
	if len(entries) == 0 {
		metrics.LedgerDrainTotal.WithLabelValues(shard.String(), "reseeded").Inc()

		_ = l.repo.Delete(ctx, device, shard)

		sample := l.hotPool.SampleHot(hotPoolSampleSize)
		if len(sample) > n {
			result = append(result, sample[:n]...)
			if err := l.repo.Seed(ctx, device, shard, sample[n:]); err != nil {
				return result, err
			}
		} else {
			result = append(result, sample...)
		}
	} else {
		metrics.LedgerDrainTotal.WithLabelValues(shard.String(), "pending").Inc()
		for _, e := range entries {
			result = append(result, e.VideoID)
		}
	}

	if err := l.repo.MarkServed(ctx, device, shard, result); err != nil {
		return result, err
	}
	return result, nil
}

func sortedEntries(working map[string]float64) []models.LedgerEntry {
	out := make([]models.LedgerEntry, 0, len(working))
	for id, score := range working {
		out = append(out, models.LedgerEntry{VideoID: id, Score: score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// mergeWorkingSet applies step 2-4 of the merge protocol (§4.5) in
// isolation from the repository: build the working map from the existing
// ledger, force the seed into the served half, then fold each candidate
// in per the shard's merge rule. Pulled out of MergeCandidates so the
// central algorithm can be exercised without a live store.
func mergeWorkingSet(existing []models.LedgerEntry, seedID string, servedScore float64, shard models.ShardEngine, op models.Operation, candidates models.CandidateSet) map[string]float64 {
	working := make(map[string]float64, len(existing)+len(candidates))
	for _, e := range existing {
		working[e.VideoID] = e.Score
	}
	working[seedID] = servedScore

	weight := op.Weight()
	for candID, popularity := range candidates {
		logPop := math.Log10(float64(popularity))
		if current, ok := working[candID]; ok && (shard == models.ShardV2 || current > 0) {
			working[candID] = current + weight*logPop
			continue
		}
		working[candID] = logPop
	}
	return working
}

// admitCapped walks score-descending entries and admits up to pendingCap
// into the pending (score > 0) half and up to servedCap into the served
// (score <= 0) half, dropping the rest — step 6 of the merge protocol.
func admitCapped(sorted []models.LedgerEntry, pendingCap, servedCap int) []models.LedgerEntry {
	admitted := make([]models.LedgerEntry, 0, len(sorted))
	pendingCount, servedCount := 0, 0
	for _, e := range sorted {
		if e.Pending() {
			if pendingCount >= pendingCap {
				continue
			}
			pendingCount++
		} else {
			if servedCount >= servedCap {
				continue
			}
			servedCount++
		}
		admitted = append(admitted, e)
	}
	return admitted
}
