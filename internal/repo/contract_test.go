package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"drivepro-backend/internal/domain"
)

// 以下校验对内存与 SQL 实现通用

var base = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func user(id, email string, role domain.Role, i int) *domain.User {
	return &domain.User{
		ID: id, Name: id, Email: email, Password: "pw", Role: role, IsActive: true,
		CreatedAt: base.Add(time.Duration(i) * time.Second),
	}
}

func testUserRepo(t *testing.T, r domain.UserRepository) {
	ctx := context.Background()
	for i, u := range []*domain.User{
		user("u1", "Alice@drivepro.com", domain.RoleStudent, 1),
		user("u2", "bob@drivepro.com", domain.RoleInstructor, 2),
		user("u3", "carol@drivepro.com", domain.RoleAdmin, 3),
	} {
		if err := r.Create(ctx, u); err != nil {
			t.Fatalf("create #%d: %v", i, err)
		}
	}
	if err := r.Create(ctx, user("u4", "ALICE@drivepro.com", domain.RoleStudent, 4)); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}

	u, err := r.FindByEmail(ctx, "alice@DRIVEPRO.com")
	if err != nil || u == nil || u.ID != "u1" {
		t.Fatalf("find by email: %v %v", u, err)
	}
	if u, err := r.FindByID(ctx, "missing"); err != nil || u != nil {
		t.Fatalf("missing id should be (nil, nil), got %v %v", u, err)
	}

	u.Name, u.IsActive = "Alice A.", false
	if err := r.Update(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := r.FindByID(ctx, "u1")
	if got.Name != "Alice A." || got.IsActive {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := r.Delete(ctx, "u2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.Delete(ctx, "u2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	all, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != "u1" || all[1].ID != "u3" {
		t.Fatalf("unexpected list %+v", all)
	}
}

// 同一时刻创建的用户仍按插入先后列出，与 id 大小无关
func testUserInsertionOrder(t *testing.T, r domain.UserRepository) {
	ctx := context.Background()
	first := user("zz-instructor", "zz@drivepro.com", domain.RoleInstructor, 0)
	second := user("aa-instructor", "aa@drivepro.com", domain.RoleInstructor, 0)
	for _, u := range []*domain.User{first, second} {
		if err := r.Create(ctx, u); err != nil {
			t.Fatalf("create %s: %v", u.ID, err)
		}
	}
	all, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var order []string
	for _, u := range all {
		if u.ID == first.ID || u.ID == second.ID {
			order = append(order, u.ID)
		}
	}
	if len(order) != 2 || order[0] != first.ID {
		t.Fatalf("expected %s listed first, got %v", first.ID, order)
	}
}

func lesson(id, student, instructor string, i int) *domain.Lesson {
	return &domain.Lesson{
		ID: id, Type: "Practical", Date: "2024-01-02", Time: "10:00", Status: domain.StatusScheduled,
		StudentID: student, InstructorID: instructor,
		CreatedAt: base.Add(time.Duration(i) * time.Second),
	}
}

func testLessonRepo(t *testing.T, r domain.LessonRepository) {
	ctx := context.Background()
	for i, l := range []*domain.Lesson{
		lesson("l1", "s1", "i1", 1),
		lesson("l2", "s2", "i1", 2),
		lesson("l3", "s1", "i2", 3),
	} {
		if err := r.Create(ctx, l); err != nil {
			t.Fatalf("create #%d: %v", i, err)
		}
	}

	ls, err := r.List(ctx, domain.LessonFilter{StudentID: "s1"})
	if err != nil || len(ls) != 2 || ls[0].ID != "l1" || ls[1].ID != "l3" {
		t.Fatalf("student filter: %+v %v", ls, err)
	}
	ls, _ = r.List(ctx, domain.LessonFilter{InstructorID: "i1"})
	if len(ls) != 2 || ls[0].ID != "l1" || ls[1].ID != "l2" {
		t.Fatalf("instructor filter: %+v", ls)
	}

	l, err := r.FindByID(ctx, "l2")
	if err != nil || l == nil {
		t.Fatalf("find: %v %v", l, err)
	}
	l.Status = domain.StatusCompleted
	if err := r.Update(ctx, l); err != nil {
		t.Fatalf("update: %v", err)
	}
	if l, _ := r.FindByID(ctx, "l2"); l.Status != domain.StatusCompleted {
		t.Fatalf("status not persisted: %+v", l)
	}

	n, err := r.DeleteByUser(ctx, "i1")
	if err != nil || n != 2 {
		t.Fatalf("delete by user: %d %v", n, err)
	}
	ls, _ = r.List(ctx, domain.LessonFilter{})
	if len(ls) != 1 || ls[0].ID != "l3" {
		t.Fatalf("after cascade: %+v", ls)
	}
	if err := r.Delete(ctx, "l1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := r.Delete(ctx, "l3"); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func testNotificationRepo(t *testing.T, r domain.NotificationRepository) {
	ctx := context.Background()
	for i, subj := range []string{"first", "second", "third"} {
		n := &domain.Notification{
			ID: subj, FromUserID: "u1", FromUserName: "Alice", FromRole: domain.RoleStudent,
			ToRole: string(domain.RoleAdmin), Subject: subj, Body: "b",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := r.Append(ctx, n); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	ns, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ns) != 3 || ns[0].Subject != "first" || ns[2].Subject != "third" {
		t.Fatalf("unexpected order %+v", ns)
	}
	if !ns[1].CreatedAt.Equal(base.Add(time.Second)) {
		t.Fatalf("createdAt not kept: %v", ns[1].CreatedAt)
	}
}
