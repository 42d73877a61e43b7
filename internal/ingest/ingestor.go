package ingest

import (
	"context"
	"time"

	"github.com/turtacn/KeyIP-Chat/internal/domain/document"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

// Source abstracts where raw documents are read from: a local directory or an
// object-storage bucket.
type Source interface {
	// List returns the names of the documents available for ingestion.
	List(ctx context.Context) ([]string, error)

	// Read returns the raw text of one document.
	Read(ctx context.Context, name string) (string, error)
}

// Embedder computes dense vectors for unit texts.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// UnitIndex is the write side of the unit index.  ReplaceSource atomically
// replaces every unit previously ingested from the same source, so
// re-ingestion never leaves stale units behind.
type UnitIndex interface {
	ReplaceSource(ctx context.Context, source string, units []document.Unit, vectors [][]float32) error
}

// Event records the outcome of ingesting one document.
type Event struct {
	Source     string    `json:"source"`
	UnitCount  int       `json:"unit_count"`
	Skipped    bool      `json:"skipped"`
	FinishedAt time.Time `json:"finished_at"`
}

// EventPublisher emits per-document ingestion events for downstream
// consumers.  Implementations must tolerate being called concurrently.
type EventPublisher interface {
	PublishIngested(ctx context.Context, ev Event) error
}

// Tally is the per-run success/failure summary of a batch ingestion.
type Tally struct {
	Succeeded int
	Skipped   int
	Failed    int
	// FailedSources lists the documents that could not be ingested.
	FailedSources []string
}

// Ingestor drives batch ingestion: read, parse, embed, index, one document at
// a time.  A failure is fatal only for its own document; the run continues and
// the tally reports the outcome.
type Ingestor struct {
	source    Source
	embedder  Embedder
	index     UnitIndex
	publisher EventPublisher       // optional
	metrics   *prommetrics.Metrics // optional
	log       logging.Logger
}

// NewIngestor constructs an Ingestor.  publisher may be nil when event
// publication is disabled; metrics may be nil outside a served process.
func NewIngestor(source Source, embedder Embedder, index UnitIndex, publisher EventPublisher, metrics *prommetrics.Metrics, log logging.Logger) *Ingestor {
	return &Ingestor{
		source:    source,
		embedder:  embedder,
		index:     index,
		publisher: publisher,
		metrics:   metrics,
		log:       log.Named("ingest"),
	}
}

// Run ingests every document the source lists.  It returns an error only when
// the source itself cannot be listed; per-document failures are recorded in
// the tally.
func (ing *Ingestor) Run(ctx context.Context) (Tally, error) {
	names, err := ing.source.List(ctx)
	if err != nil {
		return Tally{}, errors.Wrap(err, errors.ErrCodeFileUnreadable, "failed to list ingestion source")
	}

	var tally Tally
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return tally, err
		}
		unitCount, skipped, err := ing.ingestOne(ctx, name)
		switch {
		case err != nil:
			tally.Failed++
			tally.FailedSources = append(tally.FailedSources, name)
			ing.log.Error("document ingestion failed",
				logging.String("source", name),
				logging.Err(err),
			)
			ing.observe("failed", 0)
		case skipped:
			tally.Skipped++
			ing.observe("skipped", 0)
		default:
			tally.Succeeded++
			ing.observe("succeeded", unitCount)
		}
	}

	ing.log.Info("ingestion run complete",
		logging.Int("succeeded", tally.Succeeded),
		logging.Int("skipped", tally.Skipped),
		logging.Int("failed", tally.Failed),
	)
	return tally, nil
}

func (ing *Ingestor) ingestOne(ctx context.Context, name string) (unitCount int, skipped bool, err error) {
	raw, err := ing.source.Read(ctx, name)
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeFileUnreadable, "failed to read document")
	}

	units := AssembleUnits(name, raw)
	if len(units) == 0 {
		// No recognized sections.  Not an error; the document is skipped.
		ing.log.Warn("document yielded no units, skipping", logging.String("source", name))
		ing.publish(ctx, Event{Source: name, Skipped: true, FinishedAt: time.Now()})
		return 0, true, nil
	}

	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}

	vectors, err := ing.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "failed to embed units")
	}
	if len(vectors) != len(units) {
		return 0, false, errors.Newf(errors.ErrCodeEmbeddingFailed,
			"embedder returned %d vectors for %d units", len(vectors), len(units))
	}

	if err := ing.index.ReplaceSource(ctx, name, units, vectors); err != nil {
		return 0, false, errors.Wrap(err, errors.ErrCodeIndexWriteFailed, "failed to index units")
	}

	ing.log.Info("document ingested",
		logging.String("source", name),
		logging.Int("units", len(units)),
	)
	ing.publish(ctx, Event{Source: name, UnitCount: len(units), FinishedAt: time.Now()})
	return len(units), false, nil
}

// observe records the per-document outcome and, on success, the unit tally.
func (ing *Ingestor) observe(outcome string, units int) {
	if ing.metrics == nil {
		return
	}
	ing.metrics.IngestDocumentsTotal.WithLabelValues(outcome).Inc()
	if units > 0 {
		ing.metrics.IngestUnitsTotal.Add(float64(units))
	}
}

// publish emits an ingestion event if a publisher is configured.  Publication
// failures are logged and dropped; events are advisory, never load-bearing.
func (ing *Ingestor) publish(ctx context.Context, ev Event) {
	if ing.publisher == nil {
		return
	}
	if err := ing.publisher.PublishIngested(ctx, ev); err != nil {
		ing.log.Warn("failed to publish ingestion event",
			logging.String("source", ev.Source),
			logging.Err(err),
		)
	}
}
