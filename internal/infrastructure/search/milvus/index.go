package milvus

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/turtacn/KeyIP-Chat/internal/domain/document"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

// Collection field names.
const (
	fieldID                = "id"
	fieldSource            = "source"
	fieldText              = "text"
	fieldMetadata          = "metadata"
	fieldSection           = "section"
	fieldPatentNo          = "patent_no"
	fieldApplicationNumber = "application_number"
	fieldApplicants        = "applicants"
	fieldInventors         = "inventors"
	fieldAgents            = "agents"
	fieldEmbedding         = "embedding"
)

// QueryEmbedder computes the dense vector for a search query.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// IndexConfig holds the unit-collection parameters.
type IndexConfig struct {
	Collection    string
	EmbeddingDim  int
	SearchTimeout time.Duration
}

// Index is the Milvus-backed unit index.  It implements the ingestion write
// contract (ReplaceSource), the vector retrieval contract (Retrieve) and the
// exact-match scan contract (ScanDocMeta).
type Index struct {
	client   *Client
	embedder QueryEmbedder
	cfg      IndexConfig
	logger   logging.Logger
}

// NewIndex constructs the index adapter.  Call EnsureCollection once before
// serving; the collection is never created lazily on first use.
func NewIndex(c *Client, embedder QueryEmbedder, cfg IndexConfig, logger logging.Logger) *Index {
	if cfg.SearchTimeout == 0 {
		cfg.SearchTimeout = 10 * time.Second
	}
	return &Index{client: c, embedder: embedder, cfg: cfg, logger: logger.Named("milvus")}
}

// EnsureCollection creates the unit collection, its vector index and loads it
// into memory if it does not exist yet.  Idempotent; part of the explicit
// startup initialization phase.
func (ix *Index) EnsureCollection(ctx context.Context) error {
	mc := ix.client.Raw()

	has, err := mc.HasCollection(ctx, ix.cfg.Collection)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to check collection existence")
	}
	if !has {
		schema := entity.NewSchema().
			WithName(ix.cfg.Collection).
			WithDescription("patent document units with propagated metadata").
			WithField(entity.NewField().WithName(fieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(fieldSource).WithDataType(entity.FieldTypeVarChar).WithMaxLength(512)).
			WithField(entity.NewField().WithName(fieldText).WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
			WithField(entity.NewField().WithName(fieldMetadata).WithDataType(entity.FieldTypeJSON)).
			WithField(entity.NewField().WithName(fieldSection).WithDataType(entity.FieldTypeVarChar).WithMaxLength(128)).
			WithField(entity.NewField().WithName(fieldPatentNo).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName(fieldApplicationNumber).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64)).
			WithField(entity.NewField().WithName(fieldApplicants).WithDataType(entity.FieldTypeJSON)).
			WithField(entity.NewField().WithName(fieldInventors).WithDataType(entity.FieldTypeJSON)).
			WithField(entity.NewField().WithName(fieldAgents).WithDataType(entity.FieldTypeJSON)).
			WithField(entity.NewField().WithName(fieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(ix.cfg.EmbeddingDim)))

		if err := mc.CreateCollection(ctx, schema, 1); err != nil {
			return errors.Wrap(err, errors.ErrCodeIndexWriteFailed, "failed to create collection")
		}

		idx, err := entity.NewIndexHNSW(entity.COSINE, 16, 200)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeIndexWriteFailed, "failed to build index definition")
		}
		if err := mc.CreateIndex(ctx, ix.cfg.Collection, fieldEmbedding, idx, false); err != nil {
			return errors.Wrap(err, errors.ErrCodeIndexWriteFailed, "failed to create vector index")
		}
		ix.logger.Info("collection created", logging.String("collection", ix.cfg.Collection))
	}

	if err := mc.LoadCollection(ctx, ix.cfg.Collection, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to load collection")
	}
	return nil
}

// ReplaceSource atomically replaces every unit of one source document: the
// previous units are deleted by source before the new batch is inserted, so
// re-ingestion never leaves stale units behind.
func (ix *Index) ReplaceSource(ctx context.Context, source string, units []document.Unit, vectors [][]float32) error {
	if len(units) != len(vectors) {
		return errors.Newf(errors.ErrCodeIndexWriteFailed,
			"unit/vector count mismatch: %d units, %d vectors", len(units), len(vectors))
	}

	mc := ix.client.Raw()

	if err := mc.Delete(ctx, ix.cfg.Collection, "", sourceExpr(source)); err != nil {
		return errors.Wrap(err, errors.ErrCodeIndexWriteFailed, "failed to delete stale units")
	}

	n := len(units)
	ids := make([]string, n)
	sources := make([]string, n)
	texts := make([]string, n)
	metadatas := make([][]byte, n)
	sections := make([]string, n)
	patentNos := make([]string, n)
	appNumbers := make([]string, n)
	applicants := make([][]byte, n)
	inventors := make([][]byte, n)
	agents := make([][]byte, n)

	for i, u := range units {
		md := u.Metadata
		mdJSON, err := json.Marshal(md)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal unit metadata")
		}
		ids[i] = uuid.NewString()
		sources[i] = md.Source
		texts[i] = u.Text
		metadatas[i] = mdJSON
		sections[i] = md.Section
		patentNos[i] = md.PatentNo
		appNumbers[i] = md.ApplicationNumber
		applicants[i] = marshalList(md.Applicants)
		inventors[i] = marshalList(md.Inventors)
		agents[i] = marshalList(md.Agents)
	}

	columns := []entity.Column{
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnVarChar(fieldSource, sources),
		entity.NewColumnVarChar(fieldText, texts),
		entity.NewColumnJSONBytes(fieldMetadata, metadatas),
		entity.NewColumnVarChar(fieldSection, sections),
		entity.NewColumnVarChar(fieldPatentNo, patentNos),
		entity.NewColumnVarChar(fieldApplicationNumber, appNumbers),
		entity.NewColumnJSONBytes(fieldApplicants, applicants),
		entity.NewColumnJSONBytes(fieldInventors, inventors),
		entity.NewColumnJSONBytes(fieldAgents, agents),
		entity.NewColumnFloatVector(fieldEmbedding, ix.cfg.EmbeddingDim, vectors),
	}

	if _, err := mc.Insert(ctx, ix.cfg.Collection, "", columns...); err != nil {
		return errors.Wrap(err, errors.ErrCodeIndexWriteFailed, "failed to insert units")
	}
	if err := mc.Flush(ctx, ix.cfg.Collection, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeIndexWriteFailed, "failed to flush collection")
	}

	ix.logger.Debug("source replaced",
		logging.String("source", source),
		logging.Int("units", n),
	)
	return nil
}

// marshalList renders a string list as a JSON array, never null, so
// json_contains works uniformly on empty lists.
func marshalList(list []string) []byte {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return b
}

// Retrieve performs approximate nearest-neighbor search for the query and
// returns similarity-scored candidates.
func (ix *Index) Retrieve(ctx context.Context, query string, topK int) ([]document.Candidate, error) {
	vec, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeVectorSearchFailed, "failed to embed query")
	}

	ctx, cancel := context.WithTimeout(ctx, ix.cfg.SearchTimeout)
	defer cancel()

	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeVectorSearchFailed, "failed to build search params")
	}

	results, err := ix.client.Raw().Search(
		ctx, ix.cfg.Collection, nil, "",
		[]string{fieldText, fieldMetadata},
		[]entity.Vector{entity.FloatVector(vec)},
		fieldEmbedding, entity.COSINE, topK, sp,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeVectorSearchFailed, "milvus search failed")
	}

	var candidates []document.Candidate
	for _, res := range results {
		textCol := res.Fields.GetColumn(fieldText)
		metaCol := res.Fields.GetColumn(fieldMetadata)
		for i := 0; i < res.ResultCount; i++ {
			unit, err := decodeUnit(textCol, metaCol, i)
			if err != nil {
				ix.logger.Warn("skipping undecodable search hit", logging.Err(err))
				continue
			}
			candidates = append(candidates, &document.VectorMatch{U: unit, Sim: float64(res.Scores[i])})
		}
	}
	return candidates, nil
}

// ScanDocMeta executes the exact-match metadata scan: a non-scored boolean
// query over doc_meta units, bounded by limit, retrieving stored content and
// metadata but no vectors.
func (ix *Index) ScanDocMeta(ctx context.Context, tokens []string, limit int) ([]document.Candidate, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, ix.cfg.SearchTimeout)
	defer cancel()

	rs, err := ix.client.Raw().Query(
		ctx, ix.cfg.Collection, nil, docMetaScanExpr(tokens),
		[]string{fieldText, fieldMetadata},
		client.WithLimit(int64(limit)),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMetadataScanFailed, "milvus scan failed")
	}

	textCol := rs.GetColumn(fieldText)
	metaCol := rs.GetColumn(fieldMetadata)
	if textCol == nil {
		return nil, nil
	}

	var candidates []document.Candidate
	for i := 0; i < textCol.Len(); i++ {
		unit, err := decodeUnit(textCol, metaCol, i)
		if err != nil {
			ix.logger.Warn("skipping undecodable scan hit", logging.Err(err))
			continue
		}
		candidates = append(candidates, &document.ExactMatch{U: unit})
	}
	return candidates, nil
}

// decodeUnit reconstructs a Unit from the stored text and metadata columns at
// row i.
func decodeUnit(textCol, metaCol entity.Column, i int) (*document.Unit, error) {
	raw, err := textCol.GetAsString(i)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to read text column")
	}

	var md document.Metadata
	if metaCol != nil {
		mdRaw, err := metaCol.GetAsString(i)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to read metadata column")
		}
		if err := json.Unmarshal([]byte(mdRaw), &md); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode unit metadata")
		}
	}

	return &document.Unit{Text: recoverText(raw), Metadata: md}, nil
}

// recoverText unwraps a JSON-encoded envelope around stored unit content.
// Older ingests stored the text wrapped as {"text": "..."}; newer ones store
// it raw.  A JSON-shaped payload without a "text" field is returned as is.
func recoverText(raw string) string {
	if !strings.HasPrefix(strings.TrimSpace(raw), "{") {
		return raw
	}
	var envelope struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil || envelope.Text == nil {
		return raw
	}
	return *envelope.Text
}
