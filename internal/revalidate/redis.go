package revalidate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a RedisSink.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// RedisSink publishes each path on a pub/sub channel for the rendering tier.
type RedisSink struct {
	client  *redis.Client
	channel string
}

// NewRedisSink connects and pings the server.
func NewRedisSink(ctx context.Context, cfg RedisConfig) (*RedisSink, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("redis addr is required")
	}
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		return nil, errors.New("redis channel is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisSink{client: client, channel: channel}, nil
}

func (s *RedisSink) Revalidate(ctx context.Context, path string) error {
	if err := s.client.Publish(ctx, s.channel, path).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", path, err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
