package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/KeyIP-Chat/internal/chat"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

// appendPairScript atomically upserts a session and appends one user/assistant
// message pair.  Doing the read-modify-write inside Redis keeps concurrent
// turns on the same session from interleaving their pairs, and refreshes the
// key TTL and the recency index in the same step.
//
// KEYS[1] session key, KEYS[2] recency zset.
// ARGV: session id, user query, assistant answer, now (unix seconds, float),
// ttl seconds, title for first write.
var appendPairScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
local sess
local now = tonumber(ARGV[4])
if raw then
  sess = cjson.decode(raw)
else
  sess = {title = ARGV[6], created_at = now, messages = {}}
end
local msgs = sess.messages
msgs[#msgs + 1] = {role = 'user', content = ARGV[2], timestamp = now}
msgs[#msgs + 1] = {role = 'assistant', content = ARGV[3], timestamp = now}
sess.messages = msgs
sess.updated_at = now
redis.call('SET', KEYS[1], cjson.encode(sess), 'EX', tonumber(ARGV[5]))
redis.call('ZADD', KEYS[2], now, ARGV[1])
return #msgs
`)

// renameScript replaces the title of an existing session, preserving the key
// TTL.  Returns 0 when the session does not exist.
var renameScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if not raw then
  return 0
end
local sess = cjson.decode(raw)
sess.title = ARGV[1]
redis.call('SET', KEYS[1], cjson.encode(sess), 'KEEPTTL')
return 1
`)

// sessionRecord is the JSON shape stored under each session key.  Timestamps
// are Unix seconds to match the Lua script's arithmetic.
type sessionRecord struct {
	Title     string         `json:"title"`
	CreatedAt float64        `json:"created_at"`
	UpdatedAt float64        `json:"updated_at"`
	Messages  []chat.Message `json:"messages"`
}

// SessionStore is the Redis implementation of chat.Store.  Expiry is native:
// each session key carries a TTL refreshed on every append; the recency index
// may briefly hold members whose key already expired, and those are reaped
// lazily during listing.
type SessionStore struct {
	client    *Client
	keyPrefix string
	ttl       time.Duration
	logger    logging.Logger
}

// NewSessionStore constructs the store.  keyPrefix namespaces all keys, ttl
// is the session lifetime refreshed on every turn.
func NewSessionStore(client *Client, keyPrefix string, ttl time.Duration, logger logging.Logger) *SessionStore {
	return &SessionStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		logger:    logger.Named("sessions"),
	}
}

func (s *SessionStore) sessionKey(id string) string { return s.keyPrefix + "session:" + id }
func (s *SessionStore) recentKey() string           { return s.keyPrefix + "sessions:recent" }

func (s *SessionStore) SaveMessage(ctx context.Context, sessionID, userQuery, aiAnswer string) error {
	now := float64(time.Now().UnixNano()) / float64(time.Second)
	err := appendPairScript.Run(ctx, s.client.Raw(),
		[]string{s.sessionKey(sessionID), s.recentKey()},
		sessionID, userQuery, aiAnswer, now, int64(s.ttl.Seconds()), chat.DeriveTitle(userQuery),
	).Err()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSessionStoreFailed, "failed to append message pair")
	}
	return nil
}

func (s *SessionStore) GetHistory(ctx context.Context, sessionID string) ([]chat.Message, error) {
	raw, err := s.client.Raw().Get(ctx, s.sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return []chat.Message{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSessionStoreFailed, "failed to load session")
	}

	var rec sessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode session record")
	}
	return rec.Messages, nil
}

func (s *SessionStore) ListSessions(ctx context.Context, limit int) ([]chat.Summary, error) {
	rdb := s.client.Raw()

	// Over-fetch: some recency members may point at keys Redis has already
	// expired; those are reaped below and must not eat into the limit.
	ids, err := rdb.ZRevRange(ctx, s.recentKey(), 0, int64(limit)*2).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSessionStoreFailed, "failed to list sessions")
	}

	summaries := make([]chat.Summary, 0, limit)
	for _, id := range ids {
		if len(summaries) >= limit {
			break
		}
		raw, err := rdb.Get(ctx, s.sessionKey(id)).Result()
		if err == redis.Nil {
			// Key expired under the index entry; reap lazily.
			if remErr := rdb.ZRem(ctx, s.recentKey(), id).Err(); remErr != nil {
				s.logger.Warn("failed to reap expired session from index",
					logging.String("session_id", id),
					logging.Err(remErr),
				)
			}
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSessionStoreFailed, "failed to load session")
		}

		var rec sessionRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			s.logger.Warn("skipping undecodable session record",
				logging.String("session_id", id),
				logging.Err(err),
			)
			continue
		}
		summaries = append(summaries, chat.Summary{
			SessionID: id,
			Title:     rec.Title,
			UpdatedAt: unixFloatToTime(rec.UpdatedAt),
		})
	}
	return summaries, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	rdb := s.client.Raw()

	deleted, err := rdb.Del(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeSessionStoreFailed, "failed to delete session")
	}
	if err := rdb.ZRem(ctx, s.recentKey(), sessionID).Err(); err != nil {
		s.logger.Warn("failed to remove session from recency index",
			logging.String("session_id", sessionID),
			logging.Err(err),
		)
	}
	return deleted > 0, nil
}

func (s *SessionStore) RenameSession(ctx context.Context, sessionID, title string) error {
	n, err := renameScript.Run(ctx, s.client.Raw(),
		[]string{s.sessionKey(sessionID)}, title,
	).Int64()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSessionStoreFailed, "failed to rename session")
	}
	if n == 0 {
		return errors.New(errors.ErrCodeSessionNotFound, "session not found")
	}
	return nil
}

func (s *SessionStore) SessionStats(ctx context.Context) (chat.Stats, error) {
	rdb := s.client.Raw()

	ids, err := rdb.ZRange(ctx, s.recentKey(), 0, -1).Result()
	if err != nil {
		return chat.Stats{}, errors.Wrap(err, errors.ErrCodeSessionStoreFailed, "failed to read session index")
	}

	var live int64
	for _, id := range ids {
		n, err := rdb.Exists(ctx, s.sessionKey(id)).Result()
		if err != nil {
			return chat.Stats{}, errors.Wrap(err, errors.ErrCodeSessionStoreFailed, "failed to check session key")
		}
		live += n
	}
	return chat.Stats{ActiveSessions: live}, nil
}

func (s *SessionStore) DescribeSession(ctx context.Context, sessionID string) (chat.Detail, error) {
	raw, err := s.client.Raw().Get(ctx, s.sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return chat.Detail{}, errors.New(errors.ErrCodeSessionNotFound, "session not found")
	}
	if err != nil {
		return chat.Detail{}, errors.Wrap(err, errors.ErrCodeSessionStoreFailed, "failed to load session")
	}

	var rec sessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return chat.Detail{}, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode session record")
	}
	return chat.Detail{
		SessionID:       sessionID,
		Title:           rec.Title,
		MessageCount:    len(rec.Messages),
		CreatedAt:       unixFloatToTime(rec.CreatedAt),
		UpdatedAt:       unixFloatToTime(rec.UpdatedAt),
		DurationSeconds: rec.UpdatedAt - rec.CreatedAt,
	}, nil
}

func unixFloatToTime(sec float64) time.Time {
	return time.Unix(0, int64(sec*float64(time.Second)))
}
