package services

import (
	"context"

	"github.com/streamreco/recommend-engine/internal/models"
	"github.com/streamreco/recommend-engine/internal/repository"
)

// RecommendationService (C7) composes the hot pool, similarity recall,
// ledger, and ingest services into the three externally-visible
// operations.
type RecommendationService struct {
	hotPool *HotPoolService
	recall  *ContentRecallService
	ledger  *LedgerService
	ingest  *IngestService
	publish *repository.PublishIDRepository
}

func NewRecommendationService(hotPool *HotPoolService, recall *ContentRecallService, ledger *LedgerService, ingest *IngestService, publish *repository.PublishIDRepository) *RecommendationService {
	return &RecommendationService{hotPool: hotPool, recall: recall, ledger: ledger, ingest: ingest, publish: publish}
}

// GuessLike returns videos similar to a seed, falling back to a random
// hot-pool sample (excluding the seed) when recall yields nothing.
func (s *RecommendationService) GuessLike(ctx context.Context, seedID string, size int) []string {
	candidates := s.recall.SimilarVideos(ctx, seedID, size)
	if len(candidates) > 0 {
		out := make([]string, 0, len(candidates))
		for id := range candidates {
			out = append(out, id)
		}
		return out
	}

	sample := s.hotPool.SampleHot(size + 1)
	out := make([]string, 0, size)
	for _, id := range sample {
		if id == seedID {
			continue
		}
		out = append(out, id)
		if len(out) == size {
			break
		}
	}
	return out
}

// Recommend drains up to size pending ids from the device's ledger,
// reseeding from the hot pool when the ledger is empty.
func (s *RecommendationService) Recommend(ctx context.Context, device string, size int) ([]string, error) {
	return s.ledger.DrainForRead(ctx, device, size)
}

// RecommendWithPublishID is Recommend enriched with resolved publish ids,
// used for clients at or above the enrichment version ceiling.
func (s *RecommendationService) RecommendWithPublishID(ctx context.Context, device string, size int) ([]models.RecommendationItem, error) {
	ids, err := s.Recommend(ctx, device, size)
	if err != nil {
		return nil, err
	}

	publishIDs, err := s.publish.Resolve(ctx, ids)
	if err != nil {
		publishIDs = map[string]string{}
	}

	items := make([]models.RecommendationItem, len(ids))
	for i, id := range ids {
		items[i] = models.RecommendationItem{VideoID: id, PublishID: publishIDs[id]}
	}
	return items, nil
}

// Observe dispatches a behavior event to the ingest pipeline.
func (s *RecommendationService) Observe(ctx context.Context, device, seedID string, op models.Operation) error {
	return s.ingest.Ingest(ctx, models.BehaviorEvent{Device: device, VideoID: seedID, Operation: op})
}
