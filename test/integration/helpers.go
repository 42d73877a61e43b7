// Integration test helpers.  The environment wires the real chat engine,
// session store, handlers and router together in-process; only the model
// backends (embedding, rerank, synthesis) and the vector index are stubbed,
// so every HTTP round trip exercises the production wiring.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/turtacn/KeyIP-Chat/internal/chat"
	"github.com/turtacn/KeyIP-Chat/internal/config"
	"github.com/turtacn/KeyIP-Chat/internal/domain/document"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/prometheus"
	httpiface "github.com/turtacn/KeyIP-Chat/internal/interfaces/http"
	"github.com/turtacn/KeyIP-Chat/internal/interfaces/http/handlers"
)

// corpusRetriever serves vector matches from a fixed in-memory corpus,
// ranked by naive substring overlap with the query.
type corpusRetriever struct {
	units []document.Unit
}

func (r *corpusRetriever) Retrieve(_ context.Context, query string, topK int) ([]document.Candidate, error) {
	var out []document.Candidate
	for i := range r.units {
		u := &r.units[i]
		score := 0.5
		for _, tok := range strings.Fields(query) {
			if strings.Contains(u.Text, tok) {
				score += 0.1
			}
		}
		out = append(out, &document.VectorMatch{U: u, Sim: score})
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

func (r *corpusRetriever) ScanDocMeta(_ context.Context, tokens []string, limit int) ([]document.Candidate, error) {
	var out []document.Candidate
	for i := range r.units {
		u := &r.units[i]
		if u.Metadata.Section != document.SectionDocMeta {
			continue
		}
		for _, tok := range tokens {
			if matchesParty(u, tok) {
				out = append(out, &document.ExactMatch{U: u})
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func matchesParty(u *document.Unit, tok string) bool {
	for _, lists := range [][]string{u.Metadata.Applicants, u.Metadata.Inventors, u.Metadata.Agents} {
		for _, v := range lists {
			if v == tok {
				return true
			}
		}
	}
	return u.Metadata.PatentNo == tok || u.Metadata.ApplicationNumber == tok
}

// passthroughReranker keeps the incoming order and truncates to topN.
type passthroughReranker struct{}

func (passthroughReranker) Rerank(_ context.Context, _ string, cands []document.Candidate, topN int) ([]document.Candidate, error) {
	if len(cands) > topN {
		cands = cands[:topN]
	}
	return cands, nil
}

// echoSynthesizer returns a deterministic answer that embeds the first
// context unit, so tests can assert the prefixed context reached the model.
type echoSynthesizer struct{}

func (echoSynthesizer) Synthesize(_ context.Context, query string, contextTexts []string, history []chat.Message) (string, error) {
	first := ""
	if len(contextTexts) > 0 {
		first = contextTexts[0]
	}
	return fmt.Sprintf("answer(%s|ctx=%d|hist=%d|%s)", query, len(contextTexts), len(history), first), nil
}

// TestEnv is the shared in-process environment for one test.
type TestEnv struct {
	Server *httptest.Server
	Store  chat.Store
	Units  []document.Unit
}

// SetupTestEnvironment builds the full HTTP stack over stub model backends.
func SetupTestEnvironment(t *testing.T) *TestEnv {
	t.Helper()

	units := seedUnits()
	retriever := &corpusRetriever{units: units}
	store := chat.NewMemoryStore(time.Hour)

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Server.Mode = "test"

	engine := chat.NewEngine(retriever, passthroughReranker{}, retriever, echoSynthesizer{}, store, cfg.Chat, logging.NewNopLogger())

	metrics := prommetrics.NewMetrics(prometheus.NewRegistry())
	router := httpiface.NewRouter(
		cfg.Server,
		handlers.NewChatHandler(engine, metrics),
		handlers.NewSessionHandler(store, metrics),
		nil,
		handlers.NewHealthHandler(nil),
		metrics,
		logging.NewNopLogger(),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &TestEnv{Server: srv, Store: store, Units: units}
}

func seedUnits() []document.Unit {
	return []document.Unit{
		{
			Text: "공개번호: 1020230000001",
			Metadata: document.Metadata{
				Source:            "p1.txt",
				Title:             "시트 보수재 조성물",
				PatentNo:          "1020230000001",
				ApplicationNumber: "1020220000001",
				Applicants:        []string{"대한화학"},
				Inventors:         []string{"김철수"},
				Section:           document.SectionDocMeta,
			},
		},
		{
			Text: "본 발명은 시트 보수재에 관한 것이다.",
			Metadata: document.Metadata{
				Source:   "p1.txt",
				Title:    "시트 보수재 조성물",
				PatentNo: "1020230000001",
				Section:  document.SectionAbstract,
			},
		},
		{
			Text: "내열성 코팅층을 포함하는 보수재.",
			Metadata: document.Metadata{
				Source:   "p2.txt",
				Title:    "내열 코팅 조성물",
				PatentNo: "1020230000002",
				Section:  document.SectionClaim,
				ClaimNo:  document.IntPtr(1),
			},
		},
	}
}

// PostJSON sends body as JSON and decodes the response into out.
func (env *TestEnv) PostJSON(t *testing.T, path string, body, out any) int {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(env.Server.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	decodeBody(t, resp.Body, out)
	return resp.StatusCode
}

// GetJSON fetches path and decodes the response into out.
func (env *TestEnv) GetJSON(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	decodeBody(t, resp.Body, out)
	return resp.StatusCode
}

// Do sends an arbitrary request with a JSON body and decodes the response.
func (env *TestEnv) Do(t *testing.T, method, path string, body, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, env.Server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	decodeBody(t, resp.Body, out)
	return resp.StatusCode
}

func decodeBody(t *testing.T, r io.Reader, out any) {
	t.Helper()
	if out == nil {
		_, _ = io.Copy(io.Discard, r)
		return
	}
	if err := json.NewDecoder(r).Decode(out); err != nil && err != io.EOF {
		t.Fatalf("decode response: %v", err)
	}
}
