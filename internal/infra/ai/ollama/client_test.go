package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCandidatesParsesLines(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"response": "header:x\n\n  status:y  \n",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "llama3.1:8b")
	got, err := c.GenerateCandidates(context.Background(), "telemetry here")
	require.NoError(t, err)
	assert.Equal(t, []string{"header:x", "status:y"}, got)

	assert.Equal(t, "llama3.1:8b", gotBody["model"])
	assert.Equal(t, false, gotBody["stream"])
	assert.Contains(t, gotBody["prompt"], "telemetry here")
}

func TestSummarizeEmptyFindingsSkipsBackend(t *testing.T) {
	// Host that would fail if contacted.
	c := NewClient("http://127.0.0.1:0", "llama3.1:8b")
	got, err := c.Summarize(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "No findings recorded.", got)
}

func TestGenerateNon200IsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "missing")
	_, err := c.GenerateCandidates(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
