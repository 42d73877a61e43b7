// Package inference adapts external model services: the Ollama server for
// answer synthesis and embeddings, and the cross-encoder reranking service.
package inference

import (
	"context"
	"strings"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/turtacn/KeyIP-Chat/internal/chat"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

// OllamaConfig holds the model-server parameters.
type OllamaConfig struct {
	BaseURL        string
	LLMModel       string
	EmbedModel     string
	RequestTimeout time.Duration
}

// OllamaClient serves both model roles against one Ollama server: answer
// synthesis with the LLM model and vector computation with the embedding
// model.  It implements the chat synthesizer contract and both embedding
// contracts (document batches for ingestion, single queries for retrieval).
type OllamaClient struct {
	llm      *ollama.LLM
	embedder *embeddings.EmbedderImpl
	cfg      OllamaConfig
	logger   logging.Logger
}

// NewOllamaClient constructs the adapter.  No connection is established here;
// Ollama is reached per request.
func NewOllamaClient(cfg OllamaConfig, logger logging.Logger) (*OllamaClient, error) {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 5 * time.Minute
	}

	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.LLMModel),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build ollama llm client")
	}

	embedLLM, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.EmbedModel),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build ollama embedding client")
	}
	embedder, err := embeddings.NewEmbedder(embedLLM)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build embedder")
	}

	return &OllamaClient{llm: llm, embedder: embedder, cfg: cfg, logger: logger.Named("ollama")}, nil
}

// EmbedDocuments computes vectors for a batch of unit texts.
func (c *OllamaClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	vecs, err := c.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "ollama embedding failed")
	}
	return vecs, nil
}

// EmbedQuery computes the vector for one search query.
func (c *OllamaClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	vec, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "ollama query embedding failed")
	}
	return vec, nil
}

// Synthesize produces the final answer from the query, the merged prefixed
// context units and recent conversation history.
func (c *OllamaClient) Synthesize(ctx context.Context, query string, contextTexts []string, history []chat.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	prompt := buildPrompt(query, contextTexts, history)
	answer, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.Wrap(err, errors.ErrCodeModelTimeout, "ollama generation timed out")
		}
		return "", errors.Wrap(err, errors.ErrCodeSynthesisFailed, "ollama generation failed")
	}
	return strings.TrimSpace(answer), nil
}

// buildPrompt assembles the synthesis prompt: instructions, retrieved context
// blocks, recent conversation turns, then the question.
func buildPrompt(query string, contextTexts []string, history []chat.Message) string {
	var b strings.Builder
	b.WriteString("당신은 특허 문서 검색 비서입니다. 아래 참고 문서만 근거로 질문에 답하십시오. ")
	b.WriteString("근거가 없으면 모른다고 답하십시오.\n\n")

	if len(contextTexts) > 0 {
		b.WriteString("[참고 문서]\n")
		for i, text := range contextTexts {
			if i > 0 {
				b.WriteString("\n---\n")
			}
			b.WriteString(text)
		}
		b.WriteString("\n\n")
	}

	if len(history) > 0 {
		b.WriteString("[이전 대화]\n")
		for _, m := range history {
			switch m.Role {
			case chat.RoleUser:
				b.WriteString("사용자: ")
			case chat.RoleAssistant:
				b.WriteString("비서: ")
			}
			b.WriteString(m.Content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("[질문]\n")
	b.WriteString(query)
	b.WriteString("\n\n[답변]\n")
	return b.String()
}
