package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stockwatch/backend/internal/domain/watch"
)

// RedisStore implements watch.CheckpointStore using Redis.
// This is suitable for distributed deployments where a restarted or
// rescheduled instance must resume from the last saved baseline.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisStore creates a new Redis-based checkpoint store
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client:    client,
		keyPrefix: "watch:checkpoint:",
	}, nil
}

// NewRedisStoreWithClient creates a store with an existing Redis client.
// This is useful for testing or when sharing a client across components
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "watch:checkpoint:"
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Load returns the stored checkpoint for a job, or a zero-value checkpoint
// when the key does not exist
func (s *RedisStore) Load(ctx context.Context, jobID uuid.UUID) (watch.Checkpoint, error) {
	key := s.keyPrefix + jobID.String()

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return watch.Checkpoint{}, nil
	}
	if err != nil {
		return watch.Checkpoint{}, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	var cp watch.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return watch.Checkpoint{}, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	return cp, nil
}

// Save replaces the stored checkpoint for a job. Checkpoints have no TTL;
// they stay until the job is deregistered.
func (s *RedisStore) Save(ctx context.Context, jobID uuid.UUID, cp watch.Checkpoint) error {
	key := s.keyPrefix + jobID.String()

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Delete removes a job's checkpoint
func (s *RedisStore) Delete(ctx context.Context, jobID uuid.UUID) error {
	key := s.keyPrefix + jobID.String()

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisStore) GetClient() *redis.Client {
	return s.client
}

// Ensure RedisStore implements CheckpointStore
var _ watch.CheckpointStore = (*RedisStore)(nil)
