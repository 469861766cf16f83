package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/streamreco/recommend-engine/config"
	"github.com/streamreco/recommend-engine/internal/models"
	"github.com/streamreco/recommend-engine/internal/repository"
	"github.com/streamreco/recommend-engine/pkg/metrics"
	"github.com/streamreco/recommend-engine/pkg/redis"
)

// RecommendationTaskStream is the Redis Stream carrying
// update_video_recommendation tasks to cmd/recommend-worker.
const RecommendationTaskStream = "update_video_recommendation"

// IngestService (C6) debounces behavior events and dispatches accepted
// ones onto the asynchronous task stream.
type IngestService struct {
	redis      *redis.Client
	ledgerRepo *repository.LedgerRepository
	audit      *repository.BehaviorAuditRepository
	cfg        *config.IngestConfig
}

func NewIngestService(redisClient *redis.Client, ledgerRepo *repository.LedgerRepository, audit *repository.BehaviorAuditRepository, cfg *config.IngestConfig) *IngestService {
	return &IngestService{redis: redisClient, ledgerRepo: ledgerRepo, audit: audit, cfg: cfg}
}

// Ingest applies the debounce guard and, if the event is accepted,
// enqueues it onto the task stream and best-effort records it to the
// audit log. It returns as soon as the event is either dropped or
// enqueued — the merge itself happens out of process in the worker.
func (s *IngestService) Ingest(ctx context.Context, event models.BehaviorEvent) error {
	if !event.Operation.Valid() {
		return fmt.Errorf("invalid operation code %d", int(event.Operation))
	}

	debounceKey := fmt.Sprintf("operation|%s|%s|%d", event.Device, event.VideoID, int(event.Operation))
	ttl := time.Duration(s.cfg.DebounceTTLSeconds) * time.Second

	accepted, err := s.redis.SetNX(ctx, debounceKey, 1, ttl)
	if err != nil {
		return fmt.Errorf("debounce check: %w", err)
	}
	if !accepted {
		metrics.IngestDebounceDroppedTotal.WithLabelValues(event.Operation.String()).Inc()
		return nil
	}

	shard := s.ledgerRepo.ShardFor(event.Device)

	_, err = s.redis.XAdd(ctx, RecommendationTaskStream, map[string]interface{}{
		"device":    event.Device,
		"video_id":  event.VideoID,
		"operation": strconv.Itoa(int(event.Operation)),
	})
	if err != nil {
		return fmt.Errorf("enqueue behavior task: %w", err)
	}
	metrics.IngestEnqueuedTotal.WithLabelValues(event.Operation.String()).Inc()

	if s.audit != nil {
		if err := s.audit.Record(ctx, event, shard); err != nil {
			log.Printf("behavior audit write failed (non-fatal): %v", err)
		}
	}

	return nil
}
