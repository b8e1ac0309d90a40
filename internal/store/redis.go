package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gmllt/prepboard/internal/board"
	"github.com/gmllt/prepboard/internal/config"
)

// Redis keeps each board as a JSON string under <prefix><name>.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to redisURL and pings it.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisWithClient(client, cfg.Prefix), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (s *Redis) key(name string) string {
	return s.prefix + name
}

func (s *Redis) Load(ctx context.Context, name string) (board.Board, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return board.Board{}, ErrNotFound
	}
	if err != nil {
		return board.Board{}, fmt.Errorf("load board %s: %w", name, err)
	}
	return decode(data)
}

func (s *Redis) Persist(ctx context.Context, name string, b board.Board) error {
	data, err := encode(b)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("save board %s: %w", name, err)
	}
	return nil
}

func (s *Redis) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Redis) Close() error {
	return s.client.Close()
}
