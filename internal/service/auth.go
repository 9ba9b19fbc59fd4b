package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"drivepro-backend/internal/core/auth"
	"drivepro-backend/internal/domain"
)

type AuthService struct {
	base
	codec *auth.Codec
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Email == "" || in.Password == "" || in.UserType == "" {
		return nil, domain.Invalid("email, password and userType are required in the request body")
	}
	u, err := s.repos.Users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	// 角色不匹配与密码错误返回同样的提示
	if u == nil || string(u.Role) != in.UserType || u.Password != in.Password {
		return nil, domain.Unauthorized("Invalid credentials")
	}
	if !u.IsActive {
		return nil, domain.Forbidden("Account is inactive")
	}
	tok, err := s.Issue(u)
	if err != nil {
		return nil, err
	}
	s.log.Info("login", zap.String("user", u.ID), zap.String("role", string(u.Role)))
	return &LoginResult{Token: tok, User: u}, nil
}

func (s *AuthService) Issue(u *domain.User) (string, error) {
	tok, err := s.codec.Issue(u.ID, u.Name, u.Email, string(u.Role))
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

// Resolve 解析 token 并查找当前用户；任何失败都只记日志并返回 nil
func (s *AuthService) Resolve(ctx context.Context, token string) *domain.User {
	claims, err := s.codec.Parse(token)
	if err != nil {
		s.log.Warn("token parse failed", zap.Error(err))
		return nil
	}
	u, err := s.repos.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		s.log.Warn("token user lookup failed", zap.String("id", claims.UserID), zap.Error(err))
		return nil
	}
	if u == nil {
		s.log.Warn("token user not found", zap.String("id", claims.UserID))
		return nil
	}
	return u
}
