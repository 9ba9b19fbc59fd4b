package service

import (
	"context"

	"drivepro-backend/internal/domain"
)

type NotificationService struct{ base }

type PostInput struct {
	ToRole  string `json:"toRole"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (s *NotificationService) Post(ctx context.Context, caller *domain.User, in PostInput) (*domain.Notification, error) {
	if err := requireAnyRole(caller, domain.RoleAdmin, domain.RoleInstructor, domain.RoleStudent); err != nil {
		return nil, err
	}
	if in.Subject == "" || in.Body == "" {
		return nil, domain.Invalid("subject and body are required")
	}
	to := in.ToRole
	if to == "" {
		to = string(domain.RoleAdmin)
	}
	if _, ok := domain.ParseRole(to); !ok && to != domain.AudienceAll {
		return nil, domain.Invalid("toRole must be student, instructor, admin or all")
	}

	n := &domain.Notification{
		ID:           s.newID(),
		FromUserID:   caller.ID,
		FromUserName: caller.Name,
		FromRole:     caller.Role,
		ToRole:       to,
		Subject:      in.Subject,
		Body:         in.Body,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repos.Notifications.Append(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NotificationService) List(ctx context.Context, caller *domain.User) ([]domain.Notification, error) {
	if caller == nil {
		return nil, domain.Unauthorized("Invalid auth token")
	}
	all, err := s.repos.Notifications.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(all))
	for i := range all {
		if all[i].VisibleTo(caller.Role) {
			out = append(out, all[i])
		}
	}
	return out, nil
}
