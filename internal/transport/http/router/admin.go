package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"drivepro-backend/internal/domain"
	"drivepro-backend/internal/service"
	httpez "drivepro-backend/internal/transport/http/ez"
)

var adminOnly = []domain.Role{domain.RoleAdmin}

func mountAdminActions(ez *httpez.EZ, svc *service.Services) {
	stats := func(c *gin.Context, _ *struct{}) (*service.Stats, error) {
		return svc.Stats.Compute(c.Request.Context())
	}
	for _, p := range []string{"/admin/stats", "/dashboard/stats"} {
		httpez.RegisterAction(ez, httpez.Action[struct{}, *service.Stats]{
			Method:  http.MethodGet,
			Path:    p,
			Roles:   adminOnly,
			Handler: stats,
		})
	}

	// --- 学员/教练管理 ---
	httpez.RegisterAction(ez, httpez.Action[service.ListUsersQuery, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, in *service.ListUsersQuery) ([]domain.User, error) {
			return svc.Users.List(c.Request.Context(), *in)
		},
	})
	httpez.RegisterAction(ez, httpez.Action[service.CreateUserInput, *domain.User]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, in *service.CreateUserInput) (*domain.User, error) {
			return svc.Users.Create(c.Request.Context(), *in)
		},
	})
	httpez.RegisterAction(ez, httpez.Action[service.UpdateUserInput, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, in *service.UpdateUserInput) (*domain.User, error) {
			return svc.Users.Update(c.Request.Context(), c.Param("id"), *in)
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Status: http.StatusNoContent,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			return struct{}{}, svc.Users.Delete(c.Request.Context(), c.Param("id"))
		},
	})
}
