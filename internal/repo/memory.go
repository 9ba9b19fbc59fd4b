package repo

import (
	"context"
	"strings"
	"sync"

	"drivepro-backend/internal/domain"
)

// 内存实现：切片保存插入顺序，读写均返回副本，调用方拿到的指针不会和存储共享

type MemoryUserRepo struct {
	mu    sync.RWMutex
	users []domain.User
}

func NewMemoryUserRepo() *MemoryUserRepo { return &MemoryUserRepo{} }

func (r *MemoryUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == u.ID {
			return domain.Conflict("User id already exists")
		}
		if strings.EqualFold(r.users[i].Email, u.Email) {
			return domain.Conflict("Email already in use")
		}
	}
	r.users = append(r.users, *u)
	return nil
}

func (r *MemoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if strings.EqualFold(r.users[i].Email, email) {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.User(nil), r.users...), nil
}

func (r *MemoryUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == u.ID {
			r.users[i] = *u
			return nil
		}
	}
	return domain.NotFound("User not found")
}

func (r *MemoryUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("User not found")
}

type MemoryLessonRepo struct {
	mu      sync.RWMutex
	lessons []domain.Lesson
}

func NewMemoryLessonRepo() *MemoryLessonRepo { return &MemoryLessonRepo{} }

func (r *MemoryLessonRepo) Create(_ context.Context, l *domain.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lessons = append(r.lessons, *l)
	return nil
}

func (r *MemoryLessonRepo) FindByID(_ context.Context, id string) (*domain.Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.lessons {
		if r.lessons[i].ID == id {
			l := r.lessons[i]
			return &l, nil
		}
	}
	return nil, nil
}

func (r *MemoryLessonRepo) List(_ context.Context, f domain.LessonFilter) ([]domain.Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Lesson, 0, len(r.lessons))
	for i := range r.lessons {
		if f.Match(&r.lessons[i]) {
			out = append(out, r.lessons[i])
		}
	}
	return out, nil
}

func (r *MemoryLessonRepo) Update(_ context.Context, l *domain.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.lessons {
		if r.lessons[i].ID == l.ID {
			r.lessons[i] = *l
			return nil
		}
	}
	return domain.NotFound("Lesson not found")
}

func (r *MemoryLessonRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.lessons {
		if r.lessons[i].ID == id {
			r.lessons = append(r.lessons[:i], r.lessons[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("Lesson not found")
}

func (r *MemoryLessonRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.lessons[:0]
	var n int64
	for _, l := range r.lessons {
		if l.StudentID == userID || l.InstructorID == userID {
			n++
			continue
		}
		kept = append(kept, l)
	}
	r.lessons = kept
	return n, nil
}

type MemoryNotificationRepo struct {
	mu    sync.RWMutex
	items []domain.Notification
}

func NewMemoryNotificationRepo() *MemoryNotificationRepo { return &MemoryNotificationRepo{} }

func (r *MemoryNotificationRepo) Append(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *n)
	return nil
}

func (r *MemoryNotificationRepo) List(_ context.Context) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Notification(nil), r.items...), nil
}
