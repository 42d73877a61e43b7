package ingest

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Chat/internal/domain/document"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Chat/internal/testutil"
	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

type mapSource struct {
	docs  map[string]string
	order []string
}

func (s *mapSource) List(context.Context) ([]string, error) { return s.order, nil }

func (s *mapSource) Read(_ context.Context, name string) (string, error) {
	raw, ok := s.docs[name]
	if !ok {
		return "", errors.New(errors.ErrCodeFileUnreadable, "no such document")
	}
	return raw, nil
}

type fakeEmbedder struct{ fail bool }

func (e *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if e.fail {
		return nil, errors.New(errors.ErrCodeEmbeddingFailed, "model unavailable")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

type recordingIndex struct {
	replaced map[string][]document.Unit
}

func (r *recordingIndex) ReplaceSource(_ context.Context, source string, units []document.Unit, vectors [][]float32) error {
	if len(units) != len(vectors) {
		return errors.New(errors.ErrCodeIndexWriteFailed, "unit/vector count mismatch")
	}
	if r.replaced == nil {
		r.replaced = make(map[string][]document.Unit)
	}
	r.replaced[source] = units
	return nil
}

type recordingPublisher struct{ events []Event }

func (p *recordingPublisher) PublishIngested(_ context.Context, ev Event) error {
	p.events = append(p.events, ev)
	return nil
}

func TestIngestor_Run_TallyAndContinuation(t *testing.T) {
	src := &mapSource{
		docs: map[string]string{
			"good.txt":  "### ABSTRACT\n요약문.\n",
			"empty.txt": "no section headers here",
			// "missing.txt" absent from docs, Read fails.
		},
		order: []string{"good.txt", "missing.txt", "empty.txt"},
	}
	idx := &recordingIndex{}
	pub := &recordingPublisher{}

	ing := NewIngestor(src, &fakeEmbedder{}, idx, pub, nil, logging.NewNopLogger())
	tally, err := ing.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, tally.Succeeded)
	assert.Equal(t, 1, tally.Skipped)
	assert.Equal(t, 1, tally.Failed)
	assert.Equal(t, []string{"missing.txt"}, tally.FailedSources)

	require.Contains(t, idx.replaced, "good.txt")
	assert.Len(t, idx.replaced["good.txt"], 1)

	// One success event, one skip event; the failed document publishes nothing.
	require.Len(t, pub.events, 2)
	assert.Equal(t, "good.txt", pub.events[0].Source)
	assert.Equal(t, 1, pub.events[0].UnitCount)
	assert.False(t, pub.events[0].Skipped)
	assert.Equal(t, "empty.txt", pub.events[1].Source)
	assert.True(t, pub.events[1].Skipped)
}

func TestIngestor_Run_EmbeddingFailureIsPerFile(t *testing.T) {
	src := &mapSource{
		docs:  map[string]string{"a.txt": "### ABSTRACT\n요약.\n"},
		order: []string{"a.txt"},
	}
	ing := NewIngestor(src, &fakeEmbedder{fail: true}, &recordingIndex{}, nil, nil, logging.NewNopLogger())

	tally, err := ing.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, tally.Failed)
	assert.Zero(t, tally.Succeeded)
}

type failingPublisher struct{}

func (failingPublisher) PublishIngested(context.Context, Event) error {
	return errors.New(errors.ErrCodeServiceUnavailable, "broker down")
}

func TestIngestor_Run_PublisherFailureIsLoggedNotFatal(t *testing.T) {
	src := &mapSource{
		docs:  map[string]string{"a.txt": "### ABSTRACT\n요약.\n"},
		order: []string{"a.txt"},
	}
	log := testutil.NewMockLogger()
	ing := NewIngestor(src, &fakeEmbedder{}, &recordingIndex{}, failingPublisher{}, nil, log)

	tally, err := ing.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, tally.Succeeded)
	assert.True(t, log.HasMessage("warn", "failed to publish ingestion event"))
}

func TestIngestor_Run_RecordsMetrics(t *testing.T) {
	src := &mapSource{
		docs: map[string]string{
			"good.txt":  "### ABSTRACT\n요약문.\n\n### CLAIMS\n[Claim 1]\n청구항.\n",
			"empty.txt": "no section headers here",
		},
		order: []string{"good.txt", "missing.txt", "empty.txt"},
	}
	metrics := prommetrics.NewMetrics(prometheus.NewRegistry())
	ing := NewIngestor(src, &fakeEmbedder{}, &recordingIndex{}, nil, metrics, logging.NewNopLogger())

	_, err := ing.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.IngestDocumentsTotal.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.IngestDocumentsTotal.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.IngestDocumentsTotal.WithLabelValues("failed")))
	// good.txt assembles one abstract unit and one claim unit.
	assert.Equal(t, 2.0, promtestutil.ToFloat64(metrics.IngestUnitsTotal))
}

func TestIngestor_Run_NilPublisherSafe(t *testing.T) {
	src := &mapSource{
		docs:  map[string]string{"a.txt": "### ABSTRACT\n요약.\n"},
		order: []string{"a.txt"},
	}
	ing := NewIngestor(src, &fakeEmbedder{}, &recordingIndex{}, nil, nil, logging.NewNopLogger())

	tally, err := ing.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, tally.Succeeded)
}
