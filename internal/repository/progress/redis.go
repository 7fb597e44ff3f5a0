package progress

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
	}, nil
}

var _ Store = (*RedisStore)(nil)

// Values are "seeded" or "failed:<reason>", one hash per layer and zoom.
func encodeStatus(status Status, reason string) string {
	if reason == "" {
		return string(status)
	}
	return string(status) + ":" + reason
}

func decodeStatus(v string) Status {
	status, _, _ := strings.Cut(v, ":")
	return Status(status)
}

func (s *RedisStore) set(ctx context.Context, k Key, value string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, k.Bucket(), k.Field(), value)
	pipe.Expire(ctx, k.Bucket(), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

func (s *RedisStore) MarkSeeded(ctx context.Context, k Key) error {
	return s.set(ctx, k, encodeStatus(StatusSeeded, ""))
}

func (s *RedisStore) MarkFailed(ctx context.Context, k Key, reason string) error {
	return s.set(ctx, k, encodeStatus(StatusFailed, reason))
}

func (s *RedisStore) IsSeeded(ctx context.Context, k Key) (bool, error) {
	v, err := s.client.HGet(ctx, k.Bucket(), k.Field()).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("redis get error: %w", err)
	}
	return decodeStatus(v) == StatusSeeded, nil
}

func (s *RedisStore) Stats(ctx context.Context, layer string, zoom int) (Stats, error) {
	values, err := s.client.HVals(ctx, Key{Layer: layer, Zoom: zoom}.Bucket()).Result()
	if err != nil {
		return Stats{}, fmt.Errorf("redis stats error: %w", err)
	}
	return countStatuses(values), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func countStatuses(values []string) Stats {
	var stats Stats
	for _, v := range values {
		switch decodeStatus(v) {
		case StatusSeeded:
			stats.Seeded++
		case StatusFailed:
			stats.Failed++
		}
	}
	return stats
}
