// Integration test: multi-turn chat over the full HTTP stack.  Validates
// answer synthesis with attributed sources, session continuity, history
// retrieval and session management end to end.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postChat(baseURL, query string) (string, error) {
	raw, _ := json.Marshal(map[string]string{"query": query})
	resp, err := http.Post(baseURL+"/api/v1/chat", "application/json", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var res chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", err
	}
	return res.SessionID, nil
}

type chatResponse struct {
	Answer  string `json:"answer"`
	Sources []struct {
		PatentNo      string `json:"patent_no"`
		ApplicationNo string `json:"application_no"`
		Title         string `json:"title"`
	} `json:"sources"`
	SessionID string `json:"session_id"`
}

func TestChatFlow_SingleTurn(t *testing.T) {
	env := SetupTestEnvironment(t)

	var res chatResponse
	status := env.PostJSON(t, "/api/v1/chat", map[string]string{"query": "시트 보수재 특허 알려줘"}, &res)
	require.Equal(t, http.StatusOK, status)

	assert.NotEmpty(t, res.SessionID)
	assert.Contains(t, res.Answer, "시트 보수재 특허 알려줘")
	// First context text carries the metadata block ahead of the unit body.
	assert.Contains(t, res.Answer, "[META]")

	require.NotEmpty(t, res.Sources)
	titles := make([]string, 0, len(res.Sources))
	for _, s := range res.Sources {
		titles = append(titles, s.Title)
	}
	assert.Contains(t, titles, "시트 보수재 조성물")
}

func TestChatFlow_MultiTurnSessionContinuity(t *testing.T) {
	env := SetupTestEnvironment(t)

	var first chatResponse
	env.PostJSON(t, "/api/v1/chat", map[string]string{"query": "보수재 조성물"}, &first)
	require.NotEmpty(t, first.SessionID)

	var second chatResponse
	status := env.PostJSON(t, "/api/v1/chat", map[string]string{
		"query":      "그 특허의 출원인은 누구야",
		"session_id": first.SessionID,
	}, &second)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, first.SessionID, second.SessionID)

	// The second turn sees the first question/answer pair as history.
	assert.Contains(t, second.Answer, "hist=2")

	var hist struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	status = env.GetJSON(t, "/api/v1/sessions/"+first.SessionID+"/history", &hist)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, hist.Messages, 4)
	assert.Equal(t, "user", hist.Messages[0].Role)
	assert.Equal(t, "보수재 조성물", hist.Messages[0].Content)
	assert.Equal(t, "assistant", hist.Messages[1].Role)
	assert.Equal(t, "user", hist.Messages[2].Role)
}

func TestChatFlow_ExactMatchByApplicant(t *testing.T) {
	env := SetupTestEnvironment(t)

	var res chatResponse
	status := env.PostJSON(t, "/api/v1/chat", map[string]string{"query": "대한화학 특허"}, &res)
	require.Equal(t, http.StatusOK, status)

	// The doc_meta unit matched by applicant contributes its source.
	var found bool
	for _, s := range res.Sources {
		if s.PatentNo == "1020230000001" && s.ApplicationNo == "1020220000001" {
			found = true
		}
	}
	assert.True(t, found, "expected exact-match source in %v", res.Sources)
}

func TestChatFlow_SessionManagement(t *testing.T) {
	env := SetupTestEnvironment(t)

	var res chatResponse
	env.PostJSON(t, "/api/v1/chat", map[string]string{"query": strings.Repeat("가", 30)}, &res)
	require.NotEmpty(t, res.SessionID)

	var list struct {
		Sessions []struct {
			SessionID string `json:"session_id"`
			Title     string `json:"title"`
		} `json:"sessions"`
	}
	status := env.GetJSON(t, "/api/v1/sessions", &list)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list.Sessions, 1)
	// Titles derived from long queries are truncated with an ellipsis.
	assert.Equal(t, strings.Repeat("가", 25)+"...", list.Sessions[0].Title)

	var renamed struct {
		Renamed bool `json:"renamed"`
	}
	status = env.Do(t, http.MethodPatch, "/api/v1/sessions/"+res.SessionID, map[string]string{"title": "보수재 검토"}, &renamed)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, renamed.Renamed)

	var stats struct {
		ActiveSessions int64 `json:"active_sessions"`
	}
	status = env.GetJSON(t, "/api/v1/sessions/stats", &stats)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), stats.ActiveSessions)

	var deleted struct {
		Deleted bool `json:"deleted"`
	}
	status = env.Do(t, http.MethodDelete, "/api/v1/sessions/"+res.SessionID, nil, &deleted)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, deleted.Deleted)

	status = env.GetJSON(t, "/api/v1/sessions", &list)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list.Sessions)
}

func TestChatFlow_ConcurrentSessions(t *testing.T) {
	env := SetupTestEnvironment(t)

	const sessions = 5
	done := make(chan string, sessions)
	for i := 0; i < sessions; i++ {
		go func(i int) {
			// Plain HTTP client here: test helpers may not fail a test
			// from a spawned goroutine.
			id, err := postChat(env.Server.URL, fmt.Sprintf("질문 %d 보수재", i))
			if err != nil {
				id = ""
			}
			done <- id
		}(i)
	}

	seen := make(map[string]bool)
	for i := 0; i < sessions; i++ {
		id := <-done
		require.NotEmpty(t, id)
		seen[id] = true
	}
	assert.Len(t, seen, sessions)

	var stats struct {
		ActiveSessions int64 `json:"active_sessions"`
	}
	env.GetJSON(t, "/api/v1/sessions/stats", &stats)
	assert.Equal(t, int64(sessions), stats.ActiveSessions)
}
