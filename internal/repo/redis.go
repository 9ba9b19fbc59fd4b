package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"drivepro-backend/internal/domain"
)

const DefaultNotificationsKey = "drivepro:notifications"

// RedisNotificationRepo 通知日志存为 Redis list，RPUSH 追加、LRANGE 读取，天然只追加
type RedisNotificationRepo struct {
	rdb *redis.Client
	key string
}

func NewRedisNotificationRepo(rdb *redis.Client, key string) *RedisNotificationRepo {
	if key == "" {
		key = DefaultNotificationsKey
	}
	return &RedisNotificationRepo{rdb: rdb, key: key}
}

func (r *RedisNotificationRepo) Append(ctx context.Context, n *domain.Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := r.rdb.RPush(ctx, r.key, b).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisNotificationRepo) List(ctx context.Context) ([]domain.Notification, error) {
	raw, err := r.rdb.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", r.key, err)
	}
	out := make([]domain.Notification, 0, len(raw))
	for _, s := range raw {
		var n domain.Notification
		if err := json.Unmarshal([]byte(s), &n); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}
