package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"drivepro-backend/internal/core/auth"
	"drivepro-backend/internal/core/cache"
	"drivepro-backend/internal/domain"
)

type Repos struct {
	Users         domain.UserRepository
	Lessons       domain.LessonRepository
	Notifications domain.NotificationRepository
}

// Services 所有业务服务共享同一把写锁：检查后写入、级联删除这类多步操作按请求原子执行
type Services struct {
	Auth          *AuthService
	Users         *UserService
	Lessons       *LessonService
	Notifications *NotificationService
	Stats         *StatsService
}

type base struct {
	repos Repos
	mu    *sync.Mutex
	log   *zap.Logger
	now   func() time.Time
	newID func() string

	statsCache *cache.Cache // 仅在启用统计缓存时非空
}

type Option func(*options)

type options struct {
	now        func() time.Time
	newID      func() string
	statsCache *cache.Cache
	statsTTL   time.Duration
}

func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }
func WithIDGen(f func() string) Option      { return func(o *options) { o.newID = f } }

// WithStatsCache ttl<=0 时不缓存
func WithStatsCache(c *cache.Cache, ttl time.Duration) Option {
	return func(o *options) { o.statsCache, o.statsTTL = c, ttl }
}

func New(repos Repos, codec *auth.Codec, log *zap.Logger, opts ...Option) *Services {
	o := options{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	if log == nil {
		log = zap.NewNop()
	}
	b := base{repos: repos, mu: &sync.Mutex{}, log: log, now: o.now, newID: o.newID}
	if o.statsCache != nil && o.statsTTL > 0 {
		b.statsCache = o.statsCache
	}

	stats := &StatsService{base: b, ttl: o.statsTTL}
	return &Services{
		Auth:          &AuthService{base: b, codec: codec},
		Users:         &UserService{base: b},
		Lessons:       &LessonService{base: b},
		Notifications: &NotificationService{base: b},
		Stats:         stats,
	}
}

func requireAnyRole(caller *domain.User, roles ...domain.Role) error {
	if caller == nil {
		return domain.Unauthorized("Invalid auth token")
	}
	if !slices.Contains(roles, caller.Role) {
		return domain.Forbidden("Forbidden")
	}
	return nil
}

// statsChanged 写操作成功后递增统计缓存版本；失败只记日志，旧缓存最终按 TTL 过期
func (b *base) statsChanged(ctx context.Context) {
	if b.statsCache == nil {
		return
	}
	if err := b.statsCache.Bump(ctx, statsVersionKey); err != nil {
		b.log.Warn("stats cache invalidate failed", zap.Error(err))
	}
}
