package settings

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type hashClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// RedisProvider keeps the settings in a single redis hash.
type RedisProvider struct {
	client hashClient
	key    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

func NewRedisProvider(cfg RedisConfig) (*RedisProvider, *redis.Client) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisProvider{client: client, key: cfg.Key}, client
}

func (p *RedisProvider) Fetch(ctx context.Context) (Settings, error) {
	raw, err := p.Raw(ctx)
	if err != nil {
		return Settings{}, err
	}
	return FromMap(raw), nil
}

func (p *RedisProvider) Raw(ctx context.Context) (map[string]string, error) {
	raw, err := p.client.HGetAll(ctx, p.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read redis hash %s: %w", p.key, err)
	}
	return raw, nil
}

func (p *RedisProvider) Set(ctx context.Context, key, value string) error {
	if err := p.client.HSet(ctx, p.key, key, value).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis hash %s: %w", key, p.key, err)
	}
	return nil
}
