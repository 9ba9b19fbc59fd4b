package service

import (
	"context"

	"go.uber.org/zap"

	"drivepro-backend/internal/domain"
)

const DefaultPassword = "password123"

type UserService struct{ base }

type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
	IsActive *bool  `json:"isActive"`
}

type UpdateUserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

type ListUsersQuery struct {
	Role string `form:"role"`
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("User not found")
	}
	return u, nil
}

// List 不含管理员
func (s *UserService) List(ctx context.Context, q ListUsersQuery) ([]domain.User, error) {
	all, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(all))
	for _, u := range all {
		if u.Role == domain.RoleAdmin {
			continue
		}
		if q.Role != "" && string(u.Role) != q.Role {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func parseManagedRole(s string) (domain.Role, error) {
	r, ok := domain.ParseRole(s)
	if !ok || r == domain.RoleAdmin {
		return "", domain.Invalid("role must be student or instructor")
	}
	return r, nil
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if in.Name == "" || in.Email == "" || in.Role == "" {
		return nil, domain.Invalid("name, email and role are required")
	}
	role, err := parseManagedRole(in.Role)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dup, err := s.repos.Users.FindByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if dup != nil {
		return nil, domain.Conflict("Email already in use")
	}

	u := &domain.User{
		ID:        s.newID(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  in.Password,
		Role:      role,
		IsActive:  in.IsActive == nil || *in.IsActive,
		CreatedAt: s.now().UTC(),
	}
	if u.Password == "" {
		u.Password = DefaultPassword
	}
	if err := s.repos.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.statsChanged(ctx)
	s.log.Info("user created", zap.String("user", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Role == domain.RoleAdmin {
		return nil, domain.NotFound("User not found")
	}

	if in.Email != nil && *in.Email != u.Email {
		other, err := s.repos.Users.FindByEmail(ctx, *in.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, domain.Conflict("Email already in use")
		}
	}
	// 角色只能在学员与教练之间切换，传 admin 直接忽略
	var role domain.Role
	if in.Role != nil && *in.Role != string(domain.RoleAdmin) {
		if role, err = parseManagedRole(*in.Role); err != nil {
			return nil, err
		}
	}

	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if role != "" {
		u.Role = role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if err := s.repos.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.statsChanged(ctx)
	return u, nil
}

// Delete 先删除该用户参与的全部课程，再删除用户；管理员账号视为不存在
func (s *UserService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.repos.Users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil || u.Role == domain.RoleAdmin {
		return domain.NotFound("User not found")
	}
	n, err := s.repos.Lessons.DeleteByUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.Users.Delete(ctx, id); err != nil {
		return err
	}
	s.statsChanged(ctx)
	s.log.Info("user deleted", zap.String("user", id), zap.Int64("lessons_removed", n))
	return nil
}
