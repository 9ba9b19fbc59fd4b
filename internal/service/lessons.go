package service

import (
	"context"

	"go.uber.org/zap"

	"drivepro-backend/internal/domain"
)

type LessonService struct{ base }

type CreateLessonInput struct {
	StudentID    string `json:"studentId"`
	InstructorID string `json:"instructorId"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Type         string `json:"type"`
}

type BookLessonInput struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	Type         string `json:"type"`
	StudentID    string `json:"studentId"`
	InstructorID string `json:"instructorId"`
}

type UpdateLessonInput struct {
	Date   *string `json:"date"`
	Time   *string `json:"time"`
	Type   *string `json:"type"`
	Status *string `json:"status"`
}

type AttendanceInput struct {
	Status string `json:"status"`
}

func parseStatus(s string) (domain.LessonStatus, error) {
	st, ok := domain.ParseLessonStatus(s)
	if !ok {
		return "", domain.Invalid("Invalid status")
	}
	return st, nil
}

// List 学员只看自己上的课，教练只看自己带的课，管理员看全部
func (s *LessonService) List(ctx context.Context, caller *domain.User) ([]domain.LessonView, error) {
	if caller == nil {
		return nil, domain.Unauthorized("Invalid auth token")
	}
	var f domain.LessonFilter
	switch caller.Role {
	case domain.RoleStudent:
		f.StudentID = caller.ID
	case domain.RoleInstructor:
		f.InstructorID = caller.ID
	}
	ls, err := s.repos.Lessons.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, ls)
}

func (s *LessonService) Create(ctx context.Context, caller *domain.User, in CreateLessonInput) (*domain.LessonView, error) {
	if err := requireAnyRole(caller, domain.RoleAdmin, domain.RoleInstructor); err != nil {
		return nil, err
	}
	if in.StudentID == "" || in.InstructorID == "" || in.Date == "" || in.Time == "" || in.Type == "" {
		return nil, domain.Invalid("studentId, instructorId, date, time and type are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	student, err := s.repos.Users.FindByID(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	instructor, err := s.repos.Users.FindByID(ctx, in.InstructorID)
	if err != nil {
		return nil, err
	}
	if student == nil || instructor == nil {
		return nil, domain.Invalid("Invalid studentId or instructorId")
	}
	return s.insert(ctx, caller, student, instructor, in.Date, in.Time, in.Type)
}

// Book 学员自助预约时 studentId 默认取自己；未指定教练时按创建顺序取第一个在职教练
func (s *LessonService) Book(ctx context.Context, caller *domain.User, in BookLessonInput) (*domain.LessonView, error) {
	if err := requireAnyRole(caller, domain.RoleStudent, domain.RoleAdmin, domain.RoleInstructor); err != nil {
		return nil, err
	}
	if in.Date == "" || in.Time == "" || in.Type == "" {
		return nil, domain.Invalid("date, time and type are required")
	}
	studentID := in.StudentID
	if studentID == "" && caller.Role == domain.RoleStudent {
		studentID = caller.ID
	}
	if studentID == "" {
		return nil, domain.Invalid("studentId is required when not booking as a student")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	student, err := s.repos.Users.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if student == nil || student.Role != domain.RoleStudent {
		return nil, domain.Invalid("Invalid studentId")
	}

	var instructor *domain.User
	if in.InstructorID != "" {
		if instructor, err = s.repos.Users.FindByID(ctx, in.InstructorID); err != nil {
			return nil, err
		}
		if instructor == nil || instructor.Role != domain.RoleInstructor {
			return nil, domain.Invalid("Invalid instructorId")
		}
	} else {
		if instructor, err = s.firstActiveInstructor(ctx); err != nil {
			return nil, err
		}
		if instructor == nil {
			return nil, domain.Invalid("No available instructor to assign")
		}
	}
	return s.insert(ctx, caller, student, instructor, in.Date, in.Time, in.Type)
}

func (s *LessonService) firstActiveInstructor(ctx context.Context) (*domain.User, error) {
	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Role == domain.RoleInstructor && users[i].IsActive {
			return &users[i], nil
		}
	}
	return nil, nil
}

func (s *LessonService) insert(ctx context.Context, caller, student, instructor *domain.User, date, tm, typ string) (*domain.LessonView, error) {
	l := &domain.Lesson{
		ID:           s.newID(),
		Type:         typ,
		Date:         date,
		Time:         tm,
		Status:       domain.StatusScheduled,
		StudentID:    student.ID,
		InstructorID: instructor.ID,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repos.Lessons.Create(ctx, l); err != nil {
		return nil, err
	}
	s.statsChanged(ctx)
	s.log.Info("lesson created",
		zap.String("lesson", l.ID),
		zap.String("student", l.StudentID),
		zap.String("instructor", l.InstructorID),
		zap.String("by", caller.ID),
	)
	return viewOf(l, student, instructor), nil
}

func (s *LessonService) find(ctx context.Context, id string) (*domain.Lesson, error) {
	l, err := s.repos.Lessons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, domain.NotFound("Lesson not found")
	}
	return l, nil
}

func (s *LessonService) Update(ctx context.Context, caller *domain.User, id string, in UpdateLessonInput) (*domain.LessonView, error) {
	if err := requireAnyRole(caller, domain.RoleAdmin, domain.RoleInstructor); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	var status domain.LessonStatus
	if in.Status != nil {
		if status, err = parseStatus(*in.Status); err != nil {
			return nil, err
		}
	}
	if in.Date != nil {
		l.Date = *in.Date
	}
	if in.Time != nil {
		l.Time = *in.Time
	}
	if in.Type != nil {
		l.Type = *in.Type
	}
	if status != "" {
		l.Status = status
	}
	if err := s.repos.Lessons.Update(ctx, l); err != nil {
		return nil, err
	}
	s.statsChanged(ctx)
	return s.view(ctx, l)
}

// MarkAttendance 未传状态时记为 completed
func (s *LessonService) MarkAttendance(ctx context.Context, caller *domain.User, id string, in AttendanceInput) (*domain.LessonView, error) {
	if err := requireAnyRole(caller, domain.RoleAdmin, domain.RoleInstructor); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	status := domain.StatusCompleted
	if in.Status != "" {
		if status, err = parseStatus(in.Status); err != nil {
			return nil, err
		}
	}
	l.Status = status
	if err := s.repos.Lessons.Update(ctx, l); err != nil {
		return nil, err
	}
	s.statsChanged(ctx)
	return s.view(ctx, l)
}

// Delete 学员只能取消自己的课程
func (s *LessonService) Delete(ctx context.Context, caller *domain.User, id string) error {
	if err := requireAnyRole(caller, domain.RoleAdmin, domain.RoleInstructor, domain.RoleStudent); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if caller.Role == domain.RoleStudent && l.StudentID != caller.ID {
		return domain.Forbidden("You can only cancel your own lessons")
	}
	if err := s.repos.Lessons.Delete(ctx, id); err != nil {
		return err
	}
	s.statsChanged(ctx)
	s.log.Info("lesson deleted", zap.String("lesson", id), zap.String("by", caller.ID))
	return nil
}

func viewOf(l *domain.Lesson, student, instructor *domain.User) *domain.LessonView {
	return &domain.LessonView{
		ID:         l.ID,
		Type:       l.Type,
		Date:       l.Date,
		Time:       l.Time,
		Status:     l.Status,
		Student:    student,
		Instructor: instructor,
	}
}

func (s *LessonService) view(ctx context.Context, l *domain.Lesson) (*domain.LessonView, error) {
	student, err := s.repos.Users.FindByID(ctx, l.StudentID)
	if err != nil {
		return nil, err
	}
	instructor, err := s.repos.Users.FindByID(ctx, l.InstructorID)
	if err != nil {
		return nil, err
	}
	return viewOf(l, student, instructor), nil
}

func (s *LessonService) views(ctx context.Context, ls []domain.Lesson) ([]domain.LessonView, error) {
	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	out := make([]domain.LessonView, 0, len(ls))
	for i := range ls {
		out = append(out, *viewOf(&ls[i], byID[ls[i].StudentID], byID[ls[i].InstructorID]))
	}
	return out, nil
}
