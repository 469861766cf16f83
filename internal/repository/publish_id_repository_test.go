package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolveEmptyInputNeverDialsOut locks in the fixed behavior described
// in the repository's doc comment: an empty id list returns an empty map
// without ever reaching the network, unlike the inverted-guard revision
// it replaces.
func TestResolveEmptyInputNeverDialsOut(t *testing.T) {
	repo := NewPublishIDRepository("http://127.0.0.1:0/unreachable", 50)

	out, err := repo.Resolve(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestResolveFiltersUnresolvedEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req publishResolveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := publishResolveResponse{Data: []publishResolveEntry{
			{VideoID: req.VideoIDs[0], PublishID: "pub-1"},
			{VideoID: req.VideoIDs[1], PublishID: ""},
		}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	repo := NewPublishIDRepository(server.URL, 50)

	out, err := repo.Resolve(context.Background(), []string{"v1", "v2"})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"v1": "pub-1"}, out)
}

func TestResolveBatchesRequests(t *testing.T) {
	var batches [][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req publishResolveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		batches = append(batches, req.VideoIDs)

		entries := make([]publishResolveEntry, len(req.VideoIDs))
		for i, id := range req.VideoIDs {
			entries[i] = publishResolveEntry{VideoID: id, PublishID: "pub-" + id}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(publishResolveResponse{Data: entries}))
	}))
	defer server.Close()

	repo := NewPublishIDRepository(server.URL, 2)

	out, err := repo.Resolve(context.Background(), []string{"v1", "v2", "v3"})

	require.NoError(t, err)
	assert.Len(t, batches, 2)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 1)
	assert.Equal(t, "pub-v1", out["v1"])
	assert.Equal(t, "pub-v3", out["v3"])
}

func TestResolveSkipsFailedBatchWithoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := NewPublishIDRepository(server.URL, 50)

	out, err := repo.Resolve(context.Background(), []string{"v1"})

	require.NoError(t, err)
	assert.Empty(t, out)
}
