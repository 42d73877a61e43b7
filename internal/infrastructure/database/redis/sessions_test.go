package redis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
)

func testStore() *SessionStore {
	return &SessionStore{
		keyPrefix: "keyipchat:",
		ttl:       time.Hour,
		logger:    logging.NewNopLogger(),
	}
}

func TestSessionStore_KeyLayout(t *testing.T) {
	s := testStore()
	assert.Equal(t, "keyipchat:session:abc", s.sessionKey("abc"))
	assert.Equal(t, "keyipchat:sessions:recent", s.recentKey())
}

func TestSessionRecord_DecodesLuaShape(t *testing.T) {
	// The shape cjson produces inside the append script.
	raw := `{"title":"첫 질문","created_at":1700000000.5,"updated_at":1700000100.5,` +
		`"messages":[{"role":"user","content":"q","timestamp":1700000100.5},` +
		`{"role":"assistant","content":"a","timestamp":1700000100.5}]}`

	var rec sessionRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	assert.Equal(t, "첫 질문", rec.Title)
	require.Len(t, rec.Messages, 2)
	assert.Equal(t, "user", rec.Messages[0].Role)
	assert.Equal(t, "assistant", rec.Messages[1].Role)
	assert.Equal(t, 1700000100.5, rec.Messages[1].Timestamp)
}

func TestUnixFloatToTime(t *testing.T) {
	ts := unixFloatToTime(1700000000.25)
	assert.Equal(t, int64(1700000000), ts.Unix())
	assert.Equal(t, 250*time.Millisecond, time.Duration(ts.Nanosecond()))
}
