package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"drivepro-backend/internal/core/auth"
	"drivepro-backend/internal/domain"
	"drivepro-backend/internal/repo"
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *Services
	repos Repos
	seq   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{repos: Repos{
		Users:         repo.NewMemoryUserRepo(),
		Lessons:       repo.NewMemoryLessonRepo(),
		Notifications: repo.NewMemoryNotificationRepo(),
	}}
	codec := &auth.Codec{Mode: auth.ModeHS256, Secret: []byte("test-secret"), Issuer: "test"}
	f.svc = New(f.repos, codec, nil,
		WithClock(func() time.Time { return testNow }),
		WithIDGen(func() string { f.seq++; return fmt.Sprintf("id-%d", f.seq) }),
	)
	return f
}

func (f *fixture) addUser(t *testing.T, name string, role domain.Role, active bool) *domain.User {
	t.Helper()
	f.seq++
	u := &domain.User{
		ID:       fmt.Sprintf("%s-%d", role, f.seq),
		Name:     name,
		Email:    fmt.Sprintf("%s%d@drivepro.com", role, f.seq),
		Password: "password123",
		Role:     role,
		IsActive: active,
	}
	if err := f.repos.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func expectKind(t *testing.T, err, kind error, msg string) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
	if msg != "" && err.Error() != msg {
		t.Fatalf("expected message %q, got %q", msg, err.Error())
	}
}
