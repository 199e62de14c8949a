package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/petpalfinder/backend/internal/models"
)

const defaultRedisPrefix = "petpal:geocode:"

// RedisStore shares geocode results between processes. Keys have no expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisConfig configures NewRedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("geocode: redis address required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("geocode: redis ping failed: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) key(query string) string {
	return s.prefix + query
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (models.Coordinate, bool, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Coordinate{}, false, nil
		}
		return models.Coordinate{}, false, err
	}
	var coord models.Coordinate
	if err := json.Unmarshal(raw, &coord); err != nil {
		return models.Coordinate{}, false, fmt.Errorf("geocode: decode cached coordinate: %w", err)
	}
	return coord, true, nil
}

// Set implements Store. Existing entries are left as they are.
func (s *RedisStore) Set(ctx context.Context, key string, coord models.Coordinate) error {
	data, err := json.Marshal(coord)
	if err != nil {
		return err
	}
	return s.client.SetNX(ctx, s.key(key), data, 0).Err()
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
