package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/streamreco/recommend-engine/config"
	"github.com/streamreco/recommend-engine/internal/models"
	"github.com/streamreco/recommend-engine/internal/repository"
	"github.com/streamreco/recommend-engine/internal/services"
	"github.com/streamreco/recommend-engine/pkg/metrics"
	"github.com/streamreco/recommend-engine/pkg/opensearch"
	"github.com/streamreco/recommend-engine/pkg/redis"
	"github.com/streamreco/recommend-engine/pkg/sentry"
	"github.com/streamreco/recommend-engine/pkg/utils"
)

const (
	consumerGroup   = "recommend-worker"
	readBlockPeriod = 5 * time.Second
	readBatchSize   = 10
	recallSize      = 20
)

// worker consumes update_video_recommendation tasks off the Redis Stream
// and applies the merge protocol, generalizing the teacher's
// ticker+stopChan hub idiom into a task-consumer pool.
type worker struct {
	id      string
	redis   *redis.Client
	ledger  *services.LedgerService
	recall  *services.ContentRecallService
	logger  *utils.StructuredLogger
	stopped chan struct{}
}

func (w *worker) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	defer close(w.stopped)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := w.redis.XReadGroup(ctx, consumerGroup, w.id, services.RecommendationTaskStream, readBatchSize, readBlockPeriod)
		if err != nil {
			w.logger.Error("stream read failed", err, map[string]interface{}{"worker": w.id})
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				w.process(ctx, msg.ID, msg.Values)
			}
		}
	}
}

func (w *worker) process(ctx context.Context, msgID string, values map[string]interface{}) {
	start := time.Now()
	device, _ := values["device"].(string)
	videoID, _ := values["video_id"].(string)
	opRaw, _ := values["operation"].(string)

	defer func() {
		if err := w.redis.XAck(ctx, services.RecommendationTaskStream, consumerGroup, msgID); err != nil {
			w.logger.Error("ack failed", err, map[string]interface{}{"msg_id": msgID})
		}
		metrics.JobExecutionDuration.WithLabelValues("update_video_recommendation").Observe(time.Since(start).Seconds())
	}()

	opInt, err := strconv.Atoi(opRaw)
	if err != nil {
		metrics.JobExecutionTotal.WithLabelValues("update_video_recommendation", "failed").Inc()
		return
	}
	op := models.Operation(opInt)
	if !op.Valid() || device == "" || videoID == "" {
		metrics.JobExecutionTotal.WithLabelValues("update_video_recommendation", "failed").Inc()
		return
	}

	candidates := w.recall.SimilarVideos(ctx, videoID, recallSize)
	if err := w.ledger.MergeCandidates(ctx, device, videoID, op, candidates); err != nil {
		w.logger.Error("merge failed", err, map[string]interface{}{"device": device, "video_id": videoID})
		metrics.JobExecutionTotal.WithLabelValues("update_video_recommendation", "failed").Inc()
		return
	}
	metrics.JobExecutionTotal.WithLabelValues("update_video_recommendation", "success").Inc()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	utils.InitLogger(utils.LogLevelInfo)
	logger := utils.GetLogger()

	if err := sentry.Init(&cfg.Sentry); err != nil {
		logger.Warn("sentry init failed, continuing without error tracking", map[string]interface{}{"error": err.Error()})
	}
	defer sentry.Close()

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect to redis", err)
	}
	defer redisClient.Close()

	osClient, err := opensearch.NewClient(&opensearch.Config{
		URL:                cfg.OpenSearch.URL,
		Username:           cfg.OpenSearch.Username,
		Password:           cfg.OpenSearch.Password,
		InsecureSkipVerify: cfg.OpenSearch.InsecureSkipVerify,
	})
	if err != nil {
		logger.Fatal("failed to create opensearch client", err)
	}

	contentRepo := repository.NewContentIndexRepository(osClient, &cfg.HotPool)
	ledgerRepo := repository.NewLedgerRepository(redisClient, &cfg.Ledger)
	publishRepo := repository.NewPublishIDRepository(os.Getenv("PUBLISH_RESOLVER_URL"), cfg.Publish.BatchSize)
	taggingSvc := services.NewTaggingService()
	hotPoolSvc := services.NewHotPoolService(contentRepo, redisClient)

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	queries := services.HotPoolQueries(cfg.HotPool.AllSize, cfg.HotPool.IndiaSize, cfg.HotPool.BollywoodSize, cfg.HotPool.SeriesSize)
	if err := hotPoolSvc.Load(startupCtx, queries); err != nil {
		cancel()
		logger.Fatal("hot pool failed to load at startup", err)
	}
	cancel()

	recallSvc := services.NewContentRecallService(contentRepo, taggingSvc, publishRepo, redisClient)
	ledgerSvc := services.NewLedgerService(ledgerRepo, hotPoolSvc, &cfg.Ledger)

	ctx, stop := context.WithCancel(context.Background())

	if err := redisClient.XGroupCreateMkStream(ctx, services.RecommendationTaskStream, consumerGroup); err != nil {
		logger.Fatal("failed to create consumer group", err)
	}

	workerCount := cfg.Ingest.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	workers := make([]*worker, 0, workerCount)
	for i := 0; i < workerCount; i++ {
		w := &worker{
			id:      fmt.Sprintf("worker-%d", i),
			redis:   redisClient,
			ledger:  ledgerSvc,
			recall:  recallSvc,
			logger:  logger,
			stopped: make(chan struct{}),
		}
		workers = append(workers, w)
		wg.Add(1)
		go w.run(ctx, &wg)
	}

	logger.Info("recommend-worker started", map[string]interface{}{"workers": workerCount})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down recommend-worker", nil)
	stop()
	wg.Wait()
	logger.Info("recommend-worker exited", nil)
}
