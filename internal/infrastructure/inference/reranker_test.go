package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Chat/internal/domain/document"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
)

func cand(text string) document.Candidate {
	return &document.VectorMatch{U: &document.Unit{Text: text}, Sim: 0.1}
}

func TestReranker_Rerank_OrdersByRelevance(t *testing.T) {
	var got rerankRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rerank", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{"index": 2, "relevance_score": 0.95},
				{"index": 0, "relevance_score": 0.40},
				{"index": 1, "relevance_score": 0.10},
			},
		})
	}))
	defer srv.Close()

	r := NewReranker(RerankerConfig{BaseURL: srv.URL, Model: "bge-reranker"}, logging.NewNopLogger())
	in := []document.Candidate{cand("a"), cand("b"), cand("c")}

	out, err := r.Rerank(context.Background(), "질문", in, 2)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "c", out[0].Unit().Text)
	assert.Equal(t, 0.95, out[0].Score())
	assert.Equal(t, "a", out[1].Unit().Text)

	assert.Equal(t, "bge-reranker", got.Model)
	assert.Equal(t, []string{"a", "b", "c"}, got.Documents)
	assert.Equal(t, 2, got.TopN)
}

func TestReranker_Rerank_EmptyInputSkipsCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("service must not be called for an empty candidate list")
	}))
	defer srv.Close()

	r := NewReranker(RerankerConfig{BaseURL: srv.URL}, logging.NewNopLogger())
	out, err := r.Rerank(context.Background(), "질문", nil, 5)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestReranker_Rerank_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewReranker(RerankerConfig{BaseURL: srv.URL}, logging.NewNopLogger())
	_, err := r.Rerank(context.Background(), "질문", []document.Candidate{cand("a")}, 1)
	require.Error(t, err)
}

func TestReranker_Rerank_OutOfRangeIndexRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{{"index": 7, "relevance_score": 0.9}},
		})
	}))
	defer srv.Close()

	r := NewReranker(RerankerConfig{BaseURL: srv.URL}, logging.NewNopLogger())
	_, err := r.Rerank(context.Background(), "질문", []document.Candidate{cand("a")}, 1)
	require.Error(t, err)
}
