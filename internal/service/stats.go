package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"drivepro-backend/internal/core/cache"
	"drivepro-backend/internal/domain"
)

// 缓存 key 带版本号：写操作只递增版本，回源慢于写入的旧结果落在旧 key 上不会再被读到
const (
	statsCacheKey   = "drivepro:stats"
	statsVersionKey = "drivepro:stats:ver"
)

type Stats struct {
	TotalStudents    int `json:"totalStudents"`
	TotalInstructors int `json:"totalInstructors"`
	TodaysLessons    int `json:"todaysLessons"`
	PendingActions   int `json:"pendingActions"`
}

type StatsService struct {
	base
	ttl time.Duration
}

func (s *StatsService) Compute(ctx context.Context) (*Stats, error) {
	if s.statsCache == nil {
		return s.compute(ctx)
	}
	ver, err := s.statsCache.Version(ctx, statsVersionKey)
	if err != nil {
		s.log.Warn("stats cache unavailable", zap.Error(err))
		return s.compute(ctx)
	}
	key := fmt.Sprintf("%s:v%d", statsCacheKey, ver)
	st, err := cache.GetOrLoadJSON(s.statsCache, ctx, key, s.ttl, s.compute)
	if err != nil {
		// Redis 不可用时直接计算
		s.log.Warn("stats cache unavailable", zap.Error(err))
		return s.compute(ctx)
	}
	return st, nil
}

// compute 今日课程按 UTC 日期比较，排除已取消；待处理为全部 scheduled 课程
func (s *StatsService) compute(ctx context.Context) (*Stats, error) {
	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	lessons, err := s.repos.Lessons.List(ctx, domain.LessonFilter{})
	if err != nil {
		return nil, err
	}

	var st Stats
	for _, u := range users {
		switch u.Role {
		case domain.RoleStudent:
			st.TotalStudents++
		case domain.RoleInstructor:
			st.TotalInstructors++
		}
	}
	today := s.now().UTC().Format("2006-01-02")
	for i := range lessons {
		l := &lessons[i]
		if l.Day() == today && l.Status != domain.StatusCancelled {
			st.TodaysLessons++
		}
		if l.Status == domain.StatusScheduled {
			st.PendingActions++
		}
	}
	return &st, nil
}
