package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return r, true
	}
	return "", false
}

// User 密码字段永不序列化，任何接口返回的 User 即为公开视图
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:128" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:191" json:"email"`
	Password  string    `gorm:"size:191" json:"-"`
	Role      Role      `gorm:"size:16;index" json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `gorm:"index" json:"-"`
	// Seq SQL 存储的插入序号，列表按它排序；内存存储不使用
	Seq uint64 `gorm:"autoIncrement;uniqueIndex" json:"-"`
}

// UserRepository FindByID/FindByEmail 查不到时返回 (nil, nil)
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error) // 大小写不敏感
	List(ctx context.Context) ([]User, error)                      // 按插入顺序
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}
