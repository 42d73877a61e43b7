package chat

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/KeyIP-Chat/internal/config"
	"github.com/turtacn/KeyIP-Chat/internal/domain/document"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Chat/internal/retrieval"
)

// FailureAnswer is returned to the user when any retrieval or synthesis stage
// fails mid-turn.  The turn is still persisted with this text as the
// assistant message so the session history reflects the attempt.
const FailureAnswer = "데이터를 처리하는 중 오류가 발생했습니다."

// historyContextPairs is how many trailing question/answer pairs of the
// session are handed to the synthesizer as conversational context.
const historyContextPairs = 3

// Synthesizer produces the final answer text from the original query, the
// merged prefixed context units, and recent conversation history.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, contextTexts []string, history []Message) (string, error)
}

// Result is the outcome of one chat turn.  ContextCount is the number of
// merged context units handed to synthesis; it feeds metrics and is not part
// of the response body.
type Result struct {
	Answer       string            `json:"answer"`
	Sources      []document.Source `json:"sources"`
	SessionID    string            `json:"session_id"`
	ContextCount int               `json:"-"`
}

// Engine orchestrates one chat turn end to end: query normalization, the two
// concurrent retrieval paths, merge and prefixing, answer synthesis and
// session persistence.  Construct once per process; all handles are
// read-mostly and safe for concurrent turns across sessions.
type Engine struct {
	retriever retrieval.VectorRetriever
	reranker  retrieval.Reranker
	scanner   retrieval.MetadataScanner
	synth     Synthesizer
	store     Store
	cfg       config.ChatConfig
	log       logging.Logger
}

// NewEngine constructs the chat engine.  cfg is read once here; changing it
// later has no effect on a running engine.
func NewEngine(
	retriever retrieval.VectorRetriever,
	reranker retrieval.Reranker,
	scanner retrieval.MetadataScanner,
	synth Synthesizer,
	store Store,
	cfg config.ChatConfig,
	log logging.Logger,
) *Engine {
	return &Engine{
		retriever: retriever,
		reranker:  reranker,
		scanner:   scanner,
		synth:     synth,
		store:     store,
		cfg:       cfg,
		log:       log.Named("chat"),
	}
}

// Ask runs one chat turn.  Stage failures never surface as errors: the engine
// records a failure turn and answers with FailureAnswer instead, so sessions
// stay consistent (always paired messages) even when a backend is down.
func (e *Engine) Ask(ctx context.Context, query, sessionID string) (Result, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var reranked, metaCands []document.Candidate

	// The vector+rerank path and the metadata path are independent; run them
	// concurrently.  Reranking waits on retrieval inside its own goroutine
	// since it consumes the candidate set.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cands, err := e.retriever.Retrieve(gctx, query, e.cfg.RetrieverTopK)
		if err != nil {
			return err
		}
		reranked, err = e.reranker.Rerank(gctx, query, cands, e.cfg.RerankerTopK)
		return err
	})
	g.Go(func() error {
		var err error
		metaCands, err = retrieval.SearchMetadata(gctx, e.scanner, query, e.cfg.MetadataTopK)
		return err
	})
	if err := g.Wait(); err != nil {
		e.log.Error("retrieval failed", logging.String("session_id", sessionID), logging.Err(err))
		return e.failTurn(ctx, sessionID, query), nil
	}

	merged := retrieval.MergeCandidates(reranked, metaCands)
	retrieval.ApplyMetaPrefix(merged)
	sources := retrieval.ExtractSources(merged)

	texts := make([]string, len(merged))
	for i, c := range merged {
		texts[i] = c.Unit().Text
	}

	answer, err := e.synth.Synthesize(ctx, query, texts, e.recentHistory(ctx, sessionID))
	if err != nil {
		e.log.Error("synthesis failed", logging.String("session_id", sessionID), logging.Err(err))
		return e.failTurn(ctx, sessionID, query), nil
	}

	// The answer is already computed; a persistence failure is logged, not
	// surfaced.  Losing one history pair is an accepted trade-off.
	if err := e.store.SaveMessage(ctx, sessionID, query, answer); err != nil {
		e.log.Error("failed to persist chat turn",
			logging.String("session_id", sessionID),
			logging.Err(err),
		)
	}

	return Result{Answer: answer, Sources: sources, SessionID: sessionID, ContextCount: len(merged)}, nil
}

// failTurn persists a failure pair and builds the containment result.
func (e *Engine) failTurn(ctx context.Context, sessionID, query string) Result {
	if err := e.store.SaveMessage(ctx, sessionID, query, FailureAnswer); err != nil {
		e.log.Error("failed to persist failure turn",
			logging.String("session_id", sessionID),
			logging.Err(err),
		)
	}
	return Result{Answer: FailureAnswer, SessionID: sessionID}
}

// recentHistory fetches the trailing question/answer pairs used as
// conversational context.  History is advisory; a store error degrades to an
// empty context rather than failing the turn.
func (e *Engine) recentHistory(ctx context.Context, sessionID string) []Message {
	history, err := e.store.GetHistory(ctx, sessionID)
	if err != nil {
		e.log.Warn("failed to load session history",
			logging.String("session_id", sessionID),
			logging.Err(err),
		)
		return nil
	}
	if max := historyContextPairs * 2; len(history) > max {
		history = history[len(history)-max:]
	}
	return history
}
