package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"drivepro-backend/internal/domain"
)

// AutoMigrate 建表（users / lessons / notifications）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.Lesson{}, &domain.Notification{})
}

type GormUserRepo struct{ db *gorm.DB }

func NewGormUserRepo(db *gorm.DB) *GormUserRepo { return &GormUserRepo{db: db} }

// Create 唯一索引区分大小写，先查 id 再按小写邮箱查重
func (r *GormUserRepo) Create(ctx context.Context, u *domain.User) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", u.ID).Count(&n).Error; err != nil {
		return fmt.Errorf("check id: %w", err)
	}
	if n > 0 {
		return domain.Conflict("User id already exists")
	}
	if err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("LOWER(email) = ?", strings.ToLower(u.Email)).Count(&n).Error; err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if n > 0 {
		return domain.Conflict("Email already in use")
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("Email already in use")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *GormUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &u, nil
}

func (r *GormUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "LOWER(email) = ?", strings.ToLower(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (r *GormUserRepo) List(ctx context.Context) ([]domain.User, error) {
	var us []domain.User
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&us).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return us, nil
}

func (r *GormUserRepo) Update(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Omit("Seq").Save(u).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("Email already in use")
		}
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	return nil
}

func (r *GormUserRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("User not found")
	}
	return nil
}

type GormLessonRepo struct{ db *gorm.DB }

func NewGormLessonRepo(db *gorm.DB) *GormLessonRepo { return &GormLessonRepo{db: db} }

func (r *GormLessonRepo) Create(ctx context.Context, l *domain.Lesson) error {
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

func (r *GormLessonRepo) FindByID(ctx context.Context, id string) (*domain.Lesson, error) {
	var l domain.Lesson
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find lesson %s: %w", id, err)
	}
	return &l, nil
}

func (r *GormLessonRepo) List(ctx context.Context, f domain.LessonFilter) ([]domain.Lesson, error) {
	q := r.db.WithContext(ctx).Model(&domain.Lesson{})
	if f.StudentID != "" {
		q = q.Where("student_id = ?", f.StudentID)
	}
	if f.InstructorID != "" {
		q = q.Where("instructor_id = ?", f.InstructorID)
	}
	var ls []domain.Lesson
	if err := q.Order("seq ASC").Find(&ls).Error; err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return ls, nil
}

func (r *GormLessonRepo) Update(ctx context.Context, l *domain.Lesson) error {
	if err := r.db.WithContext(ctx).Omit("Seq").Save(l).Error; err != nil {
		return fmt.Errorf("update lesson %s: %w", l.ID, err)
	}
	return nil
}

func (r *GormLessonRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Lesson{})
	if res.Error != nil {
		return fmt.Errorf("delete lesson %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("Lesson not found")
	}
	return nil
}

func (r *GormLessonRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("student_id = ? OR instructor_id = ?", userID, userID).
		Delete(&domain.Lesson{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete lessons of %s: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

type GormNotificationRepo struct{ db *gorm.DB }

func NewGormNotificationRepo(db *gorm.DB) *GormNotificationRepo {
	return &GormNotificationRepo{db: db}
}

func (r *GormNotificationRepo) Append(ctx context.Context, n *domain.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("append notification: %w", err)
	}
	return nil
}

func (r *GormNotificationRepo) List(ctx context.Context) ([]domain.Notification, error) {
	var ns []domain.Notification
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&ns).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return ns, nil
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
