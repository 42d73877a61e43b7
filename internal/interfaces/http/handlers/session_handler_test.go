package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Chat/internal/chat"
)

func sessionRouter(store chat.Store) *gin.Engine {
	h := NewSessionHandler(store, nil)
	r := gin.New()
	r.GET("/api/v1/sessions", h.List)
	r.GET("/api/v1/sessions/stats", h.Stats)
	r.GET("/api/v1/sessions/:id/history", h.History)
	r.GET("/api/v1/sessions/:id/stats", h.Describe)
	r.PATCH("/api/v1/sessions/:id", h.Rename)
	r.DELETE("/api/v1/sessions/:id", h.Delete)
	return r
}

func seededStore(t *testing.T) *chat.MemoryStore {
	t.Helper()
	store := chat.NewMemoryStore(time.Hour)
	require.NoError(t, store.SaveMessage(context.Background(), "s1", "첫 질문", "첫 답변"))
	return store
}

func TestSessionHandler_List(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?limit=5", nil)
	sessionRouter(seededStore(t)).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Sessions []chat.Summary `json:"sessions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Sessions, 1)
	assert.Equal(t, "s1", body.Sessions[0].SessionID)
	assert.Equal(t, "첫 질문", body.Sessions[0].Title)
}

func TestSessionHandler_List_BadLimit(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions?limit=zero", nil)
	sessionRouter(seededStore(t)).ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_History(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1/history", nil)
	sessionRouter(seededStore(t)).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Messages []chat.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Messages, 2)
	assert.Equal(t, chat.RoleUser, body.Messages[0].Role)
}

func TestSessionHandler_History_UnknownSessionIsEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/ghost/history", nil)
	sessionRouter(seededStore(t)).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Messages []chat.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Messages)
}

func TestSessionHandler_Rename(t *testing.T) {
	store := seededStore(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/sessions/s1",
		strings.NewReader(`{"title": "새 제목"}`))
	req.Header.Set("Content-Type", "application/json")
	sessionRouter(store).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	list, err := store.ListSessions(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, "새 제목", list[0].Title)
}

func TestSessionHandler_Rename_NotFound(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/sessions/ghost",
		strings.NewReader(`{"title": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	sessionRouter(seededStore(t)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_Delete(t *testing.T) {
	router := sessionRouter(seededStore(t))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/s1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted": true}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/s1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted": false}`, w.Body.String())
}

func TestSessionHandler_Describe(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1/stats", nil)
	sessionRouter(seededStore(t)).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var detail chat.Detail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "s1", detail.SessionID)
	assert.Equal(t, "첫 질문", detail.Title)
	assert.Equal(t, 2, detail.MessageCount)
}

func TestSessionHandler_Describe_NotFound(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/ghost/stats", nil)
	sessionRouter(seededStore(t)).ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_Stats(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/stats", nil)
	sessionRouter(seededStore(t)).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var stats chat.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.ActiveSessions)
}
