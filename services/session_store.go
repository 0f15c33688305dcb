// services/session_store.go - Storage for in-flight minigame sessions
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"cryptobay/models"
)

// ErrInvalidSession is returned when a completion arrives without a live
// matching generation, or after the session expired.
var ErrInvalidSession = errors.New("invalid or expired minigame session")

// DefaultSessionTTL bounds how long a generated puzzle stays completable.
const DefaultSessionTTL = 15 * time.Minute

// SessionStore holds the server-side half of the generate → complete
// handshake. One session per (user, challenge, game_type); issuing a new
// puzzle overwrites any previous one for the same tuple.
type SessionStore interface {
	Put(ctx context.Context, session *models.MinigameSession) error
	Get(ctx context.Context, userID uint, challengeID, gameType string) (*models.MinigameSession, error)
	Delete(ctx context.Context, userID uint, challengeID, gameType string) error
}

// NewMinigameSession builds an Issued-state session with a fresh token.
func NewMinigameSession(userID uint, challengeID, gameType, keyPart string, partIndex int, ttl time.Duration) *models.MinigameSession {
	now := time.Now().UTC()
	return &models.MinigameSession{
		Token:       uuid.New().String(),
		UserID:      userID,
		ChallengeID: challengeID,
		GameType:    gameType,
		KeyPart:     keyPart,
		PartIndex:   partIndex,
		IssuedAt:    now,
		ExpiresAt:   now.Add(ttl),
	}
}

func sessionKey(userID uint, challengeID, gameType string) string {
	return fmt.Sprintf("minigame:%d:%s:%s", userID, challengeID, gameType)
}

// MemorySessionStore keeps sessions in a mutex-guarded map. Expired entries
// are rejected on read and purged by the cleanup service's Sweep calls.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.MinigameSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*models.MinigameSession)}
}

func (s *MemorySessionStore) Put(_ context.Context, session *models.MinigameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionKey(session.UserID, session.ChallengeID, session.GameType)] = session
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, userID uint, challengeID, gameType string) (*models.MinigameSession, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionKey(userID, challengeID, gameType)]
	s.mu.RUnlock()

	if !ok || session.Expired(time.Now().UTC()) {
		return nil, ErrInvalidSession
	}
	return session, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, userID uint, challengeID, gameType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(userID, challengeID, gameType))
	return nil
}

// Sweep removes sessions that expired before now.
func (s *MemorySessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, key)
			removed++
		}
	}
	return removed
}

// RedisSessionStore persists sessions in Redis with a TTL, surviving process
// restarts. Expiry is delegated to Redis.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Put(ctx context.Context, session *models.MinigameSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	key := sessionKey(session.UserID, session.ChallengeID, session.GameType)
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, userID uint, challengeID, gameType string) (*models.MinigameSession, error) {
	data, err := s.client.Get(ctx, sessionKey(userID, challengeID, gameType)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}

	var session models.MinigameSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	if session.Expired(time.Now().UTC()) {
		return nil, ErrInvalidSession
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID uint, challengeID, gameType string) error {
	return s.client.Del(ctx, sessionKey(userID, challengeID, gameType)).Err()
}
