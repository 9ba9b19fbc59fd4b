package seed

import (
	"context"
	"time"

	"github.com/google/uuid"

	"drivepro-backend/internal/domain"
	"drivepro-backend/internal/service"
)

const DemoPassword = "password123"

// Demo 用户表为空时写入演示数据，可重复调用
func Demo(ctx context.Context, repos service.Repos, now time.Time) (bool, error) {
	existing, err := repos.Users.List(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	now = now.UTC()
	student := domain.User{ID: uuid.NewString(), Name: "Sarah Student", Email: "student@drivepro.com", Role: domain.RoleStudent}
	instructor := domain.User{ID: uuid.NewString(), Name: "Ivan Instructor", Email: "instructor@drivepro.com", Role: domain.RoleInstructor}
	admin := domain.User{ID: uuid.NewString(), Name: "Alice Admin", Email: "admin@drivepro.com", Role: domain.RoleAdmin}
	for i, u := range []*domain.User{&student, &instructor, &admin} {
		u.Password = DemoPassword
		u.IsActive = true
		// 保证 SQL 存储下也按此顺序列出
		u.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		if err := repos.Users.Create(ctx, u); err != nil {
			return false, err
		}
	}

	lessons := []domain.Lesson{
		{Type: "Practical#1", Date: now.Format(time.RFC3339), Time: "10:00"},
		{Type: "Theory#1", Date: now.AddDate(0, 0, 1).Format(time.RFC3339), Time: "14:00"},
	}
	for i := range lessons {
		l := &lessons[i]
		l.ID = uuid.NewString()
		l.Status = domain.StatusScheduled
		l.StudentID = student.ID
		l.InstructorID = instructor.ID
		l.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		if err := repos.Lessons.Create(ctx, l); err != nil {
			return false, err
		}
	}
	return true, nil
}
