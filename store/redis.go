package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	conversationKeyPrefix = "conversation:"
	messagesKeyPrefix     = "messages:"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis stores conversation records as JSON values and messages as lists.
type Redis struct {
	client *redis.Client
}

// NewRedisFromEnv builds a Redis store from REDIS_ADDR / REDIS_PASSWORD /
// REDIS_DB. Returns nil (no error) when REDIS_ADDR is unset so callers can
// fall back to the in-memory store.
func NewRedisFromEnv() (*Redis, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil, nil
	}
	db := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", raw, err)
		}
		db = parsed
	}
	return NewRedis(RedisConfig{Addr: addr, Password: os.Getenv("REDIS_PASSWORD"), DB: db})
}

// NewRedis creates a Redis store and verifies connectivity.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Ping to verify
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return &Redis{client: client}, nil
}

// Close closes the underlying Redis client
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Find(ctx context.Context, id string) (*ConversationRecord, error) {
	raw, err := r.client.Get(ctx, conversationKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get conversation %s: %w", id, err)
	}
	var rec ConversationRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode conversation %s: %w", id, err)
	}
	return &rec, nil
}

func (r *Redis) UpdateContact(ctx context.Context, id string, update ContactUpdate) (*ConversationRecord, error) {
	rec, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	rec.LastContactedAt = update.ContactedAt
	if update.RecordingURL != "" {
		rec.RecordingURL = update.RecordingURL
	}
	if update.RecordingDuration > 0 {
		rec.RecordingDuration = update.RecordingDuration
	}
	if err := r.put(ctx, *rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Redis) CreateConversation(ctx context.Context, rec ConversationRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if err := r.put(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (r *Redis) SendMessage(ctx context.Context, conversationID, subject, body string) error {
	if _, err := r.Find(ctx, conversationID); err != nil {
		return err
	}
	msg := Message{
		ConversationID: conversationID,
		Subject:        subject,
		Body:           body,
		SentAt:         time.Now(),
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := r.client.RPush(ctx, messagesKeyPrefix+conversationID, raw).Err(); err != nil {
		return fmt.Errorf("redis push message: %w", err)
	}
	return nil
}

func (r *Redis) ListConversations(ctx context.Context) ([]ConversationRecord, error) {
	var out []ConversationRecord
	iter := r.client.Scan(ctx, 0, conversationKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := r.client.Get(ctx, iter.Val()).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get %s: %w", iter.Val(), err)
		}
		var rec ConversationRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", iter.Val(), err)
		}
		out = append(out, rec)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan conversations: %w", err)
	}
	return out, nil
}

func (r *Redis) put(ctx context.Context, rec ConversationRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode conversation %s: %w", rec.ID, err)
	}
	if err := r.client.Set(ctx, conversationKeyPrefix+rec.ID, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set conversation %s: %w", rec.ID, err)
	}
	return nil
}
