// Package cache 提供 Redis 缓存功能
package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/redis/go-redis/v9"
)

// 缓存键前缀
const (
	KeyPrefixRestaurantDomain = "restaurant:domain:"
	KeyPrefixRateLimit        = "ratelimit:"
)

// Init 初始化 Redis 连接
func Init(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	return client, nil
}

// IsMiss 判断是否为缓存未命中
func IsMiss(err error) bool {
	return stderrors.Is(err, redis.Nil)
}

// BuildKey 构建缓存键
func BuildKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return strings.TrimSuffix(prefix, ":")
	}
	return prefix + strings.Join(parts, ":")
}

// Store 基于指定客户端的 JSON 缓存，client 为 nil 时所有操作都是空操作
type Store struct {
	client *redis.Client
}

// NewStore 创建缓存存储
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Enabled 是否启用缓存
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

// SetJSON 以 JSON 形式写入缓存
func (s *Store) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return s.client.Set(ctx, key, data, expiration).Err()
}

// GetJSON 读取 JSON 缓存，未命中时返回 redis.Nil
func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) error {
	if !s.Enabled() {
		return redis.Nil
	}
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete 删除缓存
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if !s.Enabled() || len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Incr 自增计数，首次创建时设置过期时间
func (s *Store) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}
