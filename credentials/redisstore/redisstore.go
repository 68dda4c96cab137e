package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-store-admin/credentials"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "storeadmin:credentials:"

// Config captures connection options.
type Config struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

var _ credentials.Store = (*Store)(nil)

// Store keeps tokens in redis, one key per token, without expiry.
type Store struct {
	client *redis.Client
	prefix string
}

// New connects to redis and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, errors.New("[redisstore New] redis address required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[redisstore New] redis ping failed: %w", err)
	}
	return NewWithClient(client, cfg.Prefix), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("[redisstore Get] %w", err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("[redisstore Set] %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("[redisstore Remove] %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
