package domain

import (
	"context"
	"time"
)

type LessonStatus string

const (
	StatusScheduled LessonStatus = "scheduled"
	StatusCompleted LessonStatus = "completed"
	StatusCancelled LessonStatus = "cancelled"
)

func ParseLessonStatus(s string) (LessonStatus, bool) {
	switch st := LessonStatus(s); st {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

type Lesson struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	Type         string       `gorm:"size:64" json:"type"`
	Date         string       `gorm:"size:40" json:"date"`
	Time         string       `gorm:"size:16" json:"time"`
	Status       LessonStatus `gorm:"size:16;index" json:"status"`
	StudentID    string       `gorm:"size:36;index" json:"studentId"`
	InstructorID string       `gorm:"size:36;index" json:"instructorId"`
	CreatedAt    time.Time    `gorm:"index" json:"-"`
	Seq          uint64       `gorm:"autoIncrement;uniqueIndex" json:"-"`
}

// Day 返回日期的日历日部分（YYYY-MM-DD），兼容完整 ISO 时间戳
func (l *Lesson) Day() string {
	if len(l.Date) < 10 {
		return l.Date
	}
	return l.Date[:10]
}

// LessonView 对外返回的课程：学员/教练 id 替换为用户对象，无法解析时为 null
type LessonView struct {
	ID         string       `json:"id"`
	Type       string       `json:"type"`
	Date       string       `json:"date"`
	Time       string       `json:"time"`
	Status     LessonStatus `json:"status"`
	Student    *User        `json:"studentId"`
	Instructor *User        `json:"instructorId"`
}

// LessonFilter 空字段表示不过滤
type LessonFilter struct {
	StudentID    string
	InstructorID string
}

func (f LessonFilter) Match(l *Lesson) bool {
	if f.StudentID != "" && l.StudentID != f.StudentID {
		return false
	}
	if f.InstructorID != "" && l.InstructorID != f.InstructorID {
		return false
	}
	return true
}

type LessonRepository interface {
	Create(ctx context.Context, l *Lesson) error
	FindByID(ctx context.Context, id string) (*Lesson, error)
	List(ctx context.Context, f LessonFilter) ([]Lesson, error)
	Update(ctx context.Context, l *Lesson) error
	Delete(ctx context.Context, id string) error
	// DeleteByUser 删除以该用户为学员或教练的全部课程，返回删除条数
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
