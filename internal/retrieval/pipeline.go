package retrieval

import (
	"context"

	"github.com/turtacn/KeyIP-Chat/internal/domain/document"
)

// VectorRetriever performs approximate nearest-neighbor search over the
// ingested units.  Implemented by the Milvus adapter.
type VectorRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]document.Candidate, error)
}

// Reranker reorders candidates by cross-encoder relevance, keeping topN.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []document.Candidate, topN int) ([]document.Candidate, error)
}

// MetadataScanner executes the exact-match scan over doc_meta units: the
// backend filters to section == "doc_meta" and requires at least one of the
// token × identity-field equality clauses to hold.  Hits carry no relevance
// score.
type MetadataScanner interface {
	ScanDocMeta(ctx context.Context, tokens []string, limit int) ([]document.Candidate, error)
}

// SearchMetadata runs the exact-match path for a raw user query.  The query
// is normalized first; an empty token set short-circuits to no results
// without touching the backend.
func SearchMetadata(ctx context.Context, scanner MetadataScanner, query string, limit int) ([]document.Candidate, error) {
	tokens := NormalizeQuery(query)
	if len(tokens) == 0 {
		return nil, nil
	}
	return scanner.ScanDocMeta(ctx, tokens, limit)
}
