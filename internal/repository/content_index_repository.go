package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/streamreco/recommend-engine/config"
	"github.com/streamreco/recommend-engine/internal/models"
	"github.com/streamreco/recommend-engine/pkg/opensearch"
)

const videoIndex = "video"

// ContentIndexRepository issues the two query shapes the engine needs
// against the content index: a hot-video query and a tag-match query.
type ContentIndexRepository struct {
	client *opensearch.Client
	cfg    *config.HotPoolConfig
}

func NewContentIndexRepository(client *opensearch.Client, cfg *config.HotPoolConfig) *ContentIndexRepository {
	return &ContentIndexRepository{client: client, cfg: cfg}
}

type searchHit struct {
	ID     string               `json:"_id"`
	Score  float64              `json:"_score"`
	Source models.VideoDocument `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

// HotVideos selects mv/youtube documents, optionally filtered to a single
// tag, sorted by hot descending, truncated to size. Admission requires
// hot >= 20,000,000; admitted entries carry score log10(hot). Returns an
// empty map on transport failure, never an error.
func (r *ContentIndexRepository) HotVideos(ctx context.Context, tag string, size int) (map[string]float64, error) {
	must := []map[string]interface{}{
		{"term": map[string]interface{}{"type": "mv"}},
		{"term": map[string]interface{}{"genre": "youtube"}},
	}
	if tag != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"tag": tag}})
	}

	body := map[string]interface{}{
		"size":  size,
		"query": map[string]interface{}{"bool": map[string]interface{}{"must": must}},
		"sort":  []map[string]interface{}{{"hot": "desc"}},
	}

	hits, err := r.search(ctx, body)
	if err != nil {
		return map[string]float64{}, nil
	}

	out := make(map[string]float64, len(hits))
	for _, h := range hits {
		if h.Source.Hot < r.cfg.HotAdmissionFloor {
			continue
		}
		out[h.ID] = math.Log10(float64(h.Source.Hot))
	}
	return out, nil
}

// TagMatch runs a bool query requiring type=mv, genre=youtube, status=1,
// with a should clause over tags (at least one must match), imposing the
// index's 20.0 minimum-score threshold. Returned items carry raw hot;
// items at or below 100,000 are discarded. Returns an empty map on
// transport failure.
func (r *ContentIndexRepository) TagMatch(ctx context.Context, tags []string, size int) (models.CandidateSet, error) {
	if len(tags) == 0 {
		return models.CandidateSet{}, nil
	}

	should := make([]map[string]interface{}, 0, len(tags))
	for _, t := range tags {
		should = append(should, map[string]interface{}{"term": map[string]interface{}{"tag": t}})
	}

	body := map[string]interface{}{
		"size":       size,
		"min_score":  r.cfg.TagMatchMinScore,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{"term": map[string]interface{}{"type": "mv"}},
					{"term": map[string]interface{}{"genre": "youtube"}},
					{"term": map[string]interface{}{"status": 1}},
				},
				"should":               should,
				"minimum_should_match": 1,
			},
		},
	}

	hits, err := r.search(ctx, body)
	if err != nil {
		return models.CandidateSet{}, nil
	}

	out := make(models.CandidateSet, len(hits))
	for _, h := range hits {
		if h.Source.Hot <= r.cfg.TagMatchHotFloor {
			continue
		}
		out[h.ID] = h.Source.Hot
	}
	return out, nil
}

// GetByID fetches a single video document by id, the input the tag
// extractor needs for a seed video. Returns the zero document and
// ErrContentIndexUnavailable on transport failure or miss.
func (r *ContentIndexRepository) GetByID(ctx context.Context, id string) (models.VideoDocument, error) {
	body := map[string]interface{}{
		"size":  1,
		"query": map[string]interface{}{"term": map[string]interface{}{"_id": id}},
	}

	hits, err := r.search(ctx, body)
	if err != nil || len(hits) == 0 {
		return models.VideoDocument{}, ErrContentIndexUnavailable
	}
	return hits[0].Source, nil
}

func (r *ContentIndexRepository) search(ctx context.Context, body map[string]interface{}) ([]searchHit, error) {
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{videoIndex},
		Body:  bytes.NewReader(bodyJSON),
	}

	res, err := req.Do(ctx, r.client.GetClient())
	if err != nil {
		return nil, fmt.Errorf("content index search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("content index search returned %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode content index response: %w", err)
	}

	return parsed.Hits.Hits, nil
}
