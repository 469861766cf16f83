package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/streamreco/recommend-engine/internal/models"
	"github.com/streamreco/recommend-engine/internal/services"
)

const (
	defaultGuessLikeSize = 10
	defaultRecommendSize = 10
	maxRequestSize       = 100
)

// RecommendationHandler exposes the three externally-visible operations
// of §6: guess-like, device recommend, and behavior ingestion.
type RecommendationHandler struct {
	engine                *services.RecommendationService
	publishIDVersionFloor int
}

// NewRecommendationHandler creates a new recommendation handler. Devices
// reporting a client version at or above publishIDVersionFloor get
// publish-id-enriched recommendations; older clients get bare video ids.
func NewRecommendationHandler(engine *services.RecommendationService, publishIDVersionFloor int) *RecommendationHandler {
	return &RecommendationHandler{engine: engine, publishIDVersionFloor: publishIDVersionFloor}
}

// GuessLike handles GET /recommend/video/guess-like?id=...&size=...
func (h *RecommendationHandler) GuessLike(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "result": "id is required"})
		return
	}
	size := parseSize(c.Query("size"), defaultGuessLikeSize)

	data := h.engine.GuessLike(c.Request.Context(), id, size)
	c.JSON(http.StatusOK, gin.H{"code": 0, "result": "ok", "data": data})
}

// Recommend handles GET /recommend/device/video/recommend?device=...&size=...&version=...
func (h *RecommendationHandler) Recommend(c *gin.Context) {
	device := c.Query("device")
	if device == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "result": "device is required"})
		return
	}
	size := parseSize(c.Query("size"), defaultRecommendSize)
	version, _ := strconv.Atoi(c.Query("version"))

	if version >= h.publishIDVersionFloor {
		items, err := h.engine.RecommendWithPublishID(c.Request.Context(), device, size)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"code": 0, "result": "ok", "data": []models.RecommendationItem{}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "result": "ok", "data": items})
		return
	}

	ids, err := h.engine.Recommend(c.Request.Context(), device, size)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 0, "result": "ok", "data": []string{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "result": "ok", "data": ids})
}

type behaviorRequest struct {
	Device    string `json:"device" binding:"required"`
	VideoID   string `json:"video_id" binding:"required"`
	Operation int    `json:"operation"`
}

// Behavior handles POST /recommend/device/video/behavior. An unrecognized
// operation code is rejected here and never reaches the engine, per §7.
func (h *RecommendationHandler) Behavior(c *gin.Context) {
	var req behaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "result": err.Error()})
		return
	}

	op := models.Operation(req.Operation)
	if !op.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "result": "unrecognized operation code"})
		return
	}

	if err := h.engine.Observe(c.Request.Context(), req.Device, req.VideoID, op); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 0, "result": "accepted"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "result": "ok"})
}

func parseSize(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > maxRequestSize {
		return maxRequestSize
	}
	return n
}
