package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/crs-platform/orchestrator/internal/metrics"
)

// Message is one stored conversation turn.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a conversation owned by one caller. History is ordered oldest
// first and holds only user and assistant turns.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	History   []Message `json:"history"`
}

// Manager handles session persistence in Redis.
type Manager struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewManager connects to Redis and verifies the connection.
func NewManager(redisAddr string, ttl time.Duration, logger *zap.Logger) (*Manager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{client: client, ttl: ttl, logger: logger}, nil
}

// GetOrCreate loads the session with the given ID, creating a fresh one when
// the ID is empty or unknown. Reads refresh the TTL.
func (m *Manager) GetOrCreate(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID != "" {
		sess, err := m.load(ctx, sessionID)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, redis.Nil) {
			return nil, err
		}
		// Unknown ID: honor it so the caller's handle stays stable.
	}

	sess := &Session{
		ID:        sessionID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		History:   make([]Message, 0),
	}
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if err := m.save(ctx, sess); err != nil {
		return nil, err
	}

	metrics.SessionsCreated.Inc()
	m.logger.Info("Session created", zap.String("session_id", sess.ID))
	return sess, nil
}

// AddTurn appends one turn to the session history and persists it.
func (m *Manager) AddTurn(ctx context.Context, sessionID, role, content string) error {
	sess, err := m.GetOrCreate(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.History = append(sess.History, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	sess.UpdatedAt = time.Now()
	return m.save(ctx, sess)
}

// History returns the stored turns for a session, oldest first. A missing
// session yields an empty history.
func (m *Manager) History(ctx context.Context, sessionID string) ([]Message, error) {
	sess, err := m.load(ctx, sessionID)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess.History, nil
}

// Ping probes the Redis backend for health checks.
func (m *Manager) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (m *Manager) Close() error {
	return m.client.Close()
}

func (m *Manager) load(ctx context.Context, sessionID string) (*Session, error) {
	data, err := m.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", sessionID, err)
	}
	// Sliding expiry on access.
	m.client.Expire(ctx, sessionKey(sessionID), m.ttl)
	return &sess, nil
}

func (m *Manager) save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := m.client.Set(ctx, sessionKey(sess.ID), data, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return "session:" + id
}
