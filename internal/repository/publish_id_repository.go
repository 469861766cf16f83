package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const publishResolveTimeout = 3 * time.Second

// PublishIDRepository resolves video ids to a secondary "publish id" via an
// external HTTP endpoint. Missing entries mean "unresolvable", never an
// error — callers drop them silently, per the resolver's silent-failure
// contract.
//
// A prior revision of this resolver returned immediately (resolving
// nothing) when given a non-empty id list, almost certainly an inverted
// guard condition; that bug is not reproduced here.
type PublishIDRepository struct {
	baseURL   string
	batchSize int
	http      *http.Client
}

func NewPublishIDRepository(baseURL string, batchSize int) *PublishIDRepository {
	return &PublishIDRepository{
		baseURL:   baseURL,
		batchSize: batchSize,
		http:      &http.Client{Timeout: publishResolveTimeout},
	}
}

type publishResolveRequest struct {
	VideoIDs []string `json:"video_ids"`
}

type publishResolveEntry struct {
	VideoID   string `json:"video_id"`
	PublishID string `json:"publish_id"`
}

type publishResolveResponse struct {
	Data []publishResolveEntry `json:"data"`
}

// Resolve maps video ids to their first publish id, posting batches of at
// most batchSize. Ids without a resolvable publish id are simply absent
// from the returned map.
func (r *PublishIDRepository) Resolve(ctx context.Context, videoIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(videoIDs))
	if len(videoIDs) == 0 {
		return out, nil
	}

	for start := 0; start < len(videoIDs); start += r.batchSize {
		end := start + r.batchSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}
		batch := videoIDs[start:end]

		resolved, err := r.resolveBatch(ctx, batch)
		if err != nil {
			continue
		}
		for k, v := range resolved {
			out[k] = v
		}
	}

	return out, nil
}

func (r *PublishIDRepository) resolveBatch(ctx context.Context, ids []string) (map[string]string, error) {
	payload, err := json.Marshal(publishResolveRequest{VideoIDs: ids})
	if err != nil {
		return nil, fmt.Errorf("marshal publish resolve request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build publish resolve request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("publish resolve request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("publish resolve returned status %d", resp.StatusCode)
	}

	var parsed publishResolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode publish resolve response: %w", err)
	}

	out := make(map[string]string, len(parsed.Data))
	for _, e := range parsed.Data {
		if e.PublishID == "" {
			continue
		}
		out[e.VideoID] = e.PublishID
	}
	return out, nil
}
