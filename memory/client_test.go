package memory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient("sm_test_key", WithBaseURL(srv.URL))
}

func TestSaveBatch_RequestShape(t *testing.T) {
	var got batchRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/documents/batch", r.URL.Path)
		assert.Equal(t, "Bearer sm_test_key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	})

	docs := []Payload{
		{ContainerTags: []string{"tag"}, Content: "one", Metadata: Metadata{"tweet_id": "1"}, CustomID: "1"},
		{ContainerTags: []string{"tag"}, Content: "two", Metadata: Metadata{"tweet_id": "2"}, CustomID: "2"},
	}
	require.NoError(t, c.SaveBatch(context.Background(), docs))

	require.Len(t, got.Documents, 2)
	assert.Equal(t, "1", got.Documents[0].CustomID)
	assert.Equal(t, "two", got.Documents[1].Content)
	assert.Equal(t, "consumer", got.Metadata["sm_source"])
	assert.Equal(t, "twitter_bookmarks", got.Metadata["sm_internal_group_id"])
}

func TestSaveBatch_ConflictIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "duplicate", http.StatusConflict)
	})

	err := c.SaveBatch(context.Background(), []Payload{{Content: "x"}})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "save batch", apiErr.Op)
}

func TestSaveMemory_ConflictSkipped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/documents", r.URL.Path)
		http.Error(w, "exists", http.StatusConflict)
	})

	assert.NoError(t, c.SaveMemory(context.Background(), Payload{Content: "x", CustomID: "1"}))
}

func TestSaveMemory_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := c.SaveMemory(context.Background(), Payload{Content: "x"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "boom")
}

func TestUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.FetchProjects(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestEmptyKey(t *testing.T) {
	c := NewClient("  ")
	assert.ErrorIs(t, c.SaveBatch(context.Background(), nil), ErrUnauthorized)
}

func TestFetchProjects(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v3/projects", r.URL.Path)
		_, _ = w.Write([]byte(`{"projects":[{"id":"p1","name":"Reading","containerTag":"sm_project_reading","documentCount":3}]}`))
	})

	projects, err := c.FetchProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "p1", projects[0].ID)
	assert.Equal(t, "sm_project_reading", projects[0].ContainerTag)
	assert.Equal(t, 3, projects[0].DocumentCount)
}
