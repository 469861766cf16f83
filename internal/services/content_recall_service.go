package services

import (
	"context"
	"fmt"
	"time"

	"github.com/streamreco/recommend-engine/internal/models"
	"github.com/streamreco/recommend-engine/internal/repository"
	"github.com/streamreco/recommend-engine/pkg/metrics"
	"github.com/streamreco/recommend-engine/pkg/redis"
)

const recallCacheTTL = 3600 * time.Second

// ContentRecallService (C4) turns a seed video into a candidate map of
// similar videos via C1 (tag extraction) and C2 (tag-match query).
type ContentRecallService struct {
	content *repository.ContentIndexRepository
	tagging *TaggingService
	publish *repository.PublishIDRepository
	cache   *redis.Client
}

func NewContentRecallService(content *repository.ContentIndexRepository, tagging *TaggingService, publish *repository.PublishIDRepository, cache *redis.Client) *ContentRecallService {
	return &ContentRecallService{content: content, tagging: tagging, publish: publish, cache: cache}
}

// SimilarVideos extracts tags from the seed, runs a tag-match query, drops
// the seed id from the result, and returns the (id, hot) map. Any failure
// along the way — missing seed, empty tags, transport error, empty
// query result — yields the empty map, never an error.
func (s *ContentRecallService) SimilarVideos(ctx context.Context, seedID string, size int) models.CandidateSet {
	start := time.Now()
	outcome := "empty"
	defer func() {
		metrics.RecallDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	cacheKey := fmt.Sprintf("recall|%s|%d", seedID, size)
	var cached models.CandidateSet
	if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && len(cached) > 0 {
		outcome = "hit"
		return cached
	}

	doc, err := s.content.GetByID(ctx, seedID)
	if err != nil {
		return models.CandidateSet{}
	}

	tags := s.tagging.ExtractSlice(doc)
	if len(tags) == 0 {
		return models.CandidateSet{}
	}

	candidates, err := s.content.TagMatch(ctx, tags, size)
	if err != nil || len(candidates) == 0 {
		outcome = "error"
		return models.CandidateSet{}
	}

	delete(candidates, seedID)
	if len(candidates) == 0 {
		return models.CandidateSet{}
	}

	outcome = "hit"
	_ = s.cache.SetJSON(ctx, cacheKey, candidates, recallCacheTTL)
	return candidates
}

// SimilarVideosWithPublishID is SimilarVideos, rekeying each entry to
// "{id}|{publish_id}" via C8 and dropping entries that fail to resolve.
func (s *ContentRecallService) SimilarVideosWithPublishID(ctx context.Context, seedID string, size int) models.CandidateSet {
	candidates := s.SimilarVideos(ctx, seedID, size)
	if len(candidates) == 0 {
		return candidates
	}

	ids := make([]string, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}

	publishIDs, err := s.publish.Resolve(ctx, ids)
	if err != nil {
		return models.CandidateSet{}
	}

	out := make(models.CandidateSet, len(publishIDs))
	for id, hot := range candidates {
		pubID, ok := publishIDs[id]
		if !ok {
			continue
		}
		out[fmt.Sprintf("%s|%s", id, pubID)] = hot
	}
	return out
}
