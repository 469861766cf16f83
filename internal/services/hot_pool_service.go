package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	goredis "github.com/redis/go-redis/v9"
	"github.com/streamreco/recommend-engine/internal/repository"
	"github.com/streamreco/recommend-engine/pkg/metrics"
	"github.com/streamreco/recommend-engine/pkg/redis"
)

const hotPoolKey = "hot_video_zset"

// HotPoolQuery is one of the four unioned hot queries used to build the
// pool from scratch.
type HotPoolQuery struct {
	Tag  string
	Size int
}

// HotPoolQueries returns the four unioned query shapes specified for a
// cold build: all tags, india, bollywood, series.
func HotPoolQueries(allSize, indiaSize, bollywoodSize, seriesSize int) []HotPoolQuery {
	return []HotPoolQuery{
		{Tag: "", Size: allSize},
		{Tag: "india", Size: indiaSize},
		{Tag: "bollywood", Size: bollywoodSize},
		{Tag: "series", Size: seriesSize},
	}
}

// HotPoolService (C3) is the process-local mirror of the globally popular
// video set. It is loaded once at engine construction and is read-only
// thereafter; refreshing it requires restarting the process.
type HotPoolService struct {
	content *repository.ContentIndexRepository
	redis   *redis.Client

	mu      sync.RWMutex
	mirror  map[string]float64
	members []string
}

func NewHotPoolService(content *repository.ContentIndexRepository, redisClient *redis.Client) *HotPoolService {
	return &HotPoolService{
		content: content,
		redis:   redisClient,
		mirror:  make(map[string]float64),
	}
}

// Load builds the in-process mirror: read the well-known key if present,
// otherwise rebuild it from the content index and persist it. A load
// failure at startup is fatal for the engine, so this returns an error
// rather than falling back silently.
func (s *HotPoolService) Load(ctx context.Context, queries []HotPoolQuery) error {
	card, err := s.redis.ZCard(ctx, hotPoolKey)
	if err == nil && card > 0 {
		zs, err := s.redis.ZRangeByScoreWithScores(ctx, hotPoolKey, "-inf", "+inf", 0)
		if err != nil {
			return fmt.Errorf("load hot pool mirror: %w", err)
		}
		s.setMirror(zs)
		metrics.HotPoolLoadTotal.WithLabelValues("cached").Inc()
		metrics.HotPoolSize.Set(float64(len(s.members)))
		return nil
	}

	merged := make(map[string]float64)
	for _, q := range queries {
		hits, err := s.content.HotVideos(ctx, q.Tag, q.Size)
		if err != nil {
			return fmt.Errorf("build hot pool (tag=%q): %w", q.Tag, err)
		}
		for id, score := range hits {
			merged[id] = score
		}
	}
	if len(merged) == 0 {
		return fmt.Errorf("hot pool build yielded no entries")
	}

	members := make([]goredis.Z, 0, len(merged))
	for id, score := range merged {
		members = append(members, goredis.Z{Score: score, Member: id})
	}
	if err := s.redis.ReplaceSortedSet(ctx, hotPoolKey, members); err != nil {
		return fmt.Errorf("persist hot pool: %w", err)
	}

	s.setMirror(members)
	metrics.HotPoolLoadTotal.WithLabelValues("rebuilt").Inc()
	metrics.HotPoolSize.Set(float64(len(s.members)))
	return nil
}

func (s *HotPoolService) setMirror(zs []goredis.Z) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirror = make(map[string]float64, len(zs))
	s.members = make([]string, 0, len(zs))
	for _, z := range zs {
		id := fmt.Sprint(z.Member)
		s.mirror[id] = z.Score
		s.members = append(s.members, id)
	}
}

// SampleHot draws n members uniformly without replacement from the
// in-memory mirror.
func (s *HotPoolService) SampleHot(n int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n >= len(s.members) {
		out := make([]string, len(s.members))
		copy(out, s.members)
		return out
	}

	idx := rand.Perm(len(s.members))[:n]
	out := make([]string, n)
	for i, j := range idx {
		out[i] = s.members[j]
	}
	return out
}

// Size returns the number of entries currently mirrored.
func (s *HotPoolService) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}
