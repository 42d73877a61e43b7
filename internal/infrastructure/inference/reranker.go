package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/turtacn/KeyIP-Chat/internal/domain/document"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

// RerankerConfig holds the cross-encoder service parameters.
type RerankerConfig struct {
	BaseURL        string
	Model          string
	RequestTimeout time.Duration
}

// Reranker calls the cross-encoder scoring service over its /rerank HTTP API
// and reorders candidates by relevance, keeping the top N.
type Reranker struct {
	cfg    RerankerConfig
	http   *http.Client
	logger logging.Logger
}

// NewReranker constructs the adapter.
func NewReranker(cfg RerankerConfig, logger logging.Logger) *Reranker {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return &Reranker{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger.Named("reranker"),
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Rerank scores every candidate's text against the query and returns the top
// topN candidates ordered by relevance descending.  The returned candidates
// share their units with the input but carry the cross-encoder scores.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []document.Candidate, topN int) ([]document.Candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	docs := make([]string, len(candidates))
	for i, c := range candidates {
		docs[i] = c.Unit().Text
	}

	body, err := json.Marshal(rerankRequest{
		Model:     r.cfg.Model,
		Query:     query,
		Documents: docs,
		TopN:      topN,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal rerank request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRerankFailed, "failed to build rerank request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRerankFailed, "rerank request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrCodeRerankFailed, "rerank service returned status %d", resp.StatusCode)
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode rerank response")
	}

	sort.SliceStable(parsed.Results, func(i, j int) bool {
		return parsed.Results[i].RelevanceScore > parsed.Results[j].RelevanceScore
	})

	out := make([]document.Candidate, 0, topN)
	for _, res := range parsed.Results {
		if len(out) >= topN {
			break
		}
		if res.Index < 0 || res.Index >= len(candidates) {
			return nil, errors.Newf(errors.ErrCodeRerankFailed, "rerank result index %d out of range", res.Index)
		}
		out = append(out, &document.VectorMatch{
			U:   candidates[res.Index].Unit(),
			Sim: res.RelevanceScore,
		})
	}
	return out, nil
}
