package domain

import (
	"context"
	"time"
)

// AudienceAll 发给所有角色
const AudienceAll = "all"

type Notification struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	FromUserID   string    `gorm:"size:36" json:"fromUserId"`
	FromUserName string    `gorm:"size:128" json:"fromUserName"`
	FromRole     Role      `gorm:"size:16" json:"fromRole"`
	ToRole       string    `gorm:"size:16;index" json:"toRole"`
	Subject      string    `gorm:"size:255" json:"subject"`
	Body         string    `gorm:"type:text" json:"body"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
	Seq          uint64    `gorm:"autoIncrement;uniqueIndex" json:"-"`
}

// VisibleTo admin 可见全部；其他角色只见 all 或本角色
func (n *Notification) VisibleTo(r Role) bool {
	return r == RoleAdmin || n.ToRole == AudienceAll || n.ToRole == string(r)
}

type NotificationRepository interface {
	Append(ctx context.Context, n *Notification) error
	List(ctx context.Context) ([]Notification, error) // 按追加顺序
}
