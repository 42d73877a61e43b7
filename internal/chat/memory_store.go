package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

type memorySession struct {
	title     string
	messages  []Message
	createdAt time.Time
	updatedAt time.Time
	expiresAt time.Time
}

// MemoryStore is the in-memory Store implementation.  Expiry is passive: a
// session past its expires_at is reaped lazily on the next operation that
// touches the map, never by a timer.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*memorySession
	now      func() time.Time
}

// NewMemoryStore constructs a MemoryStore with the given session TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*memorySession),
		now:      time.Now,
	}
}

// reapExpired removes every session whose expiry has passed.  Caller holds mu.
func (s *MemoryStore) reapExpired(now time.Time) {
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

func (s *MemoryStore) SaveMessage(_ context.Context, sessionID, userQuery, aiAnswer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.reapExpired(now)

	ts := float64(now.UnixNano()) / float64(time.Second)
	pair := []Message{
		{Role: RoleUser, Content: userQuery, Timestamp: ts},
		{Role: RoleAssistant, Content: aiAnswer, Timestamp: ts},
	}

	sess, ok := s.sessions[sessionID]
	if !ok {
		s.sessions[sessionID] = &memorySession{
			title:     DeriveTitle(userQuery),
			messages:  pair,
			createdAt: now,
			updatedAt: now,
			expiresAt: now.Add(s.ttl),
		}
		return nil
	}

	sess.messages = append(sess.messages, pair...)
	sess.updatedAt = now
	sess.expiresAt = now.Add(s.ttl)
	return nil
}

func (s *MemoryStore) ListSessions(_ context.Context, limit int) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reapExpired(s.now())

	summaries := make([]Summary, 0, len(s.sessions))
	for id, sess := range s.sessions {
		summaries = append(summaries, Summary{
			SessionID: id,
			Title:     sess.title,
			UpdatedAt: sess.updatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func (s *MemoryStore) GetHistory(_ context.Context, sessionID string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reapExpired(s.now())

	sess, ok := s.sessions[sessionID]
	if !ok {
		return []Message{}, nil
	}
	out := make([]Message, len(sess.messages))
	copy(out, sess.messages)
	return out, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reapExpired(s.now())

	if _, ok := s.sessions[sessionID]; !ok {
		return false, nil
	}
	delete(s.sessions, sessionID)
	return true, nil
}

func (s *MemoryStore) RenameSession(_ context.Context, sessionID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reapExpired(s.now())

	sess, ok := s.sessions[sessionID]
	if !ok {
		return errors.New(errors.ErrCodeSessionNotFound, "session not found")
	}
	sess.title = title
	sess.updatedAt = s.now()
	sess.expiresAt = sess.updatedAt.Add(s.ttl)
	return nil
}

func (s *MemoryStore) SessionStats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reapExpired(s.now())
	return Stats{ActiveSessions: int64(len(s.sessions))}, nil
}

func (s *MemoryStore) DescribeSession(_ context.Context, sessionID string) (Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reapExpired(s.now())

	sess, ok := s.sessions[sessionID]
	if !ok {
		return Detail{}, errors.New(errors.ErrCodeSessionNotFound, "session not found")
	}
	return Detail{
		SessionID:       sessionID,
		Title:           sess.title,
		MessageCount:    len(sess.messages),
		CreatedAt:       sess.createdAt,
		UpdatedAt:       sess.updatedAt,
		DurationSeconds: sess.updatedAt.Sub(sess.createdAt).Seconds(),
	}, nil
}
