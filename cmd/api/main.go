package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streamreco/recommend-engine/config"
	"github.com/streamreco/recommend-engine/internal/handlers"
	"github.com/streamreco/recommend-engine/internal/middleware"
	"github.com/streamreco/recommend-engine/internal/repository"
	"github.com/streamreco/recommend-engine/internal/services"
	"github.com/streamreco/recommend-engine/pkg/database"
	"github.com/streamreco/recommend-engine/pkg/opensearch"
	"github.com/streamreco/recommend-engine/pkg/redis"
	"github.com/streamreco/recommend-engine/pkg/sentry"
	"github.com/streamreco/recommend-engine/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	utils.InitLogger(utils.LogLevelInfo)
	logger := utils.GetLogger()
	logger.Info("starting recommend-engine api", map[string]interface{}{"environment": cfg.Server.Environment})

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

	var auditRepo *repository.BehaviorAuditRepository
	if db, err := database.NewDB(&cfg.Database); err != nil {
		logger.Warn("behavior audit log disabled: database unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		defer db.Close()
		auditRepo = repository.NewBehaviorAuditRepository(db.Pool)
	}

	taggingSvc := services.NewTaggingService()
	hotPoolSvc := services.NewHotPoolService(contentRepo, redisClient)

	// The hot pool must load successfully before the engine can serve
	// anything; a failure here is fatal per §7.
	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	queries := services.HotPoolQueries(cfg.HotPool.AllSize, cfg.HotPool.IndiaSize, cfg.HotPool.BollywoodSize, cfg.HotPool.SeriesSize)
	if err := hotPoolSvc.Load(startupCtx, queries); err != nil {
		cancel()
		logger.Fatal("hot pool failed to load at startup", err)
	}
	cancel()
	logger.Info("hot pool loaded", map[string]interface{}{"size": hotPoolSvc.Size()})

	recallSvc := services.NewContentRecallService(contentRepo, taggingSvc, publishRepo, redisClient)
	ledgerSvc := services.NewLedgerService(ledgerRepo, hotPoolSvc, &cfg.Ledger)
	ingestSvc := services.NewIngestService(redisClient, ledgerRepo, auditRepo, &cfg.Ingest)
	engine := services.NewRecommendationService(hotPoolSvc, recallSvc, ledgerSvc, ingestSvc, publishRepo)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(requestid.New())
	if cfg.Sentry.Enabled {
		router.Use(middleware.SentryMiddleware())
		router.Use(middleware.RecoverWithSentry())
	} else {
		router.Use(middleware.JSONRecoveryMiddleware())
	}
	router.Use(logger.GinLogger())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	guessLikeLimiter := middleware.NewDeviceRateLimiter(cfg.RateLimit.GuessLikeLimit, splitIPs(cfg.RateLimit.WhitelistIPs))
	recommendLimiter := middleware.NewDeviceRateLimiter(cfg.RateLimit.RecommendLimit, splitIPs(cfg.RateLimit.WhitelistIPs))
	behaviorLimiter := middleware.NewDeviceRateLimiter(cfg.RateLimit.BehaviorLimit, splitIPs(cfg.RateLimit.WhitelistIPs))

	recoHandler := handlers.NewRecommendationHandler(engine, cfg.Publish.EnrichVersionCeiling)
	router.GET("/recommend/video/guess-like", guessLikeLimiter.Middleware(), recoHandler.GuessLike)
	router.GET("/recommend/device/video/recommend", recommendLimiter.Middleware(), recoHandler.Recommend)
	router.POST("/recommend/device/video/behavior", behaviorLimiter.Middleware(), recoHandler.Behavior)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", err)
	}
	logger.Info("server exited", nil)
}

func splitIPs(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, ip := range strings.Split(raw, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			out = append(out, ip)
		}
	}
	return out
}
