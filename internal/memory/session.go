package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/aletheia-intel/aletheia/config"
)

// Turn is one exchange in a strategist conversation.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// SessionStore keeps per-session conversation windows.
type SessionStore interface {
	Append(ctx context.Context, sessionID string, turn *Turn) error
	// Window returns the last k turns, oldest first.
	Window(ctx context.Context, sessionID string, k int) ([]*Turn, error)
	Clear(ctx context.Context, sessionID string) error
}

const sessionTTL = 24 * time.Hour

// RedisSessionStore persists conversation windows in Redis lists.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore connects to Redis and verifies connectivity.
func NewRedisSessionStore(ctx context.Context, cfg *config.Config) (*RedisSessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisSessionStore{client: client}, nil
}

// Ping verifies the Redis connection.
func (ss *RedisSessionStore) Ping(ctx context.Context) error {
	return ss.client.Ping(ctx).Err()
}

func sessionKey(sessionID string) string {
	return "aletheia:session:" + sessionID
}

// Append pushes a turn onto the session list and trims it to a bounded
// history.
func (ss *RedisSessionStore) Append(ctx context.Context, sessionID string, turn *Turn) error {
	if turn.At.IsZero() {
		turn.At = time.Now().UTC()
	}
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	key := sessionKey(sessionID)
	pipe := ss.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -200, -1)
	pipe.Expire(ctx, key, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

// Window returns the last k turns, oldest first.
func (ss *RedisSessionStore) Window(ctx context.Context, sessionID string, k int) ([]*Turn, error) {
	if k <= 0 {
		k = 10
	}
	raw, err := ss.client.LRange(ctx, sessionKey(sessionID), int64(-k), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session window: %w", err)
	}

	turns := make([]*Turn, 0, len(raw))
	for _, item := range raw {
		var turn Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("skipping malformed turn")
			continue
		}
		turns = append(turns, &turn)
	}
	return turns, nil
}

// Clear drops a session's history.
func (ss *RedisSessionStore) Clear(ctx context.Context, sessionID string) error {
	return ss.client.Del(ctx, sessionKey(sessionID)).Err()
}

// InMemorySessionStore is the fallback when Redis is not configured,
// and the store used by tests.
type InMemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string][]*Turn
}

// NewInMemorySessionStore creates an empty in-process store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string][]*Turn)}
}

func (ss *InMemorySessionStore) Append(_ context.Context, sessionID string, turn *Turn) error {
	if turn.At.IsZero() {
		turn.At = time.Now().UTC()
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	turns := append(ss.sessions[sessionID], turn)
	if len(turns) > 200 {
		turns = turns[len(turns)-200:]
	}
	ss.sessions[sessionID] = turns
	return nil
}

func (ss *InMemorySessionStore) Window(_ context.Context, sessionID string, k int) ([]*Turn, error) {
	if k <= 0 {
		k = 10
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	turns := ss.sessions[sessionID]
	if len(turns) > k {
		turns = turns[len(turns)-k:]
	}
	out := make([]*Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (ss *InMemorySessionStore) Clear(_ context.Context, sessionID string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, sessionID)
	return nil
}
