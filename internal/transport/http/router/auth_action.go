package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"drivepro-backend/internal/domain"
	"drivepro-backend/internal/service"
	httpez "drivepro-backend/internal/transport/http/ez"
	mdw "drivepro-backend/internal/transport/http/middleware"
)

// /login 与 /auth/login 等价，前者兼容旧前端
func mountAuthActions(public, authed *httpez.EZ, svc *service.Services) {
	login := func(c *gin.Context, in *service.LoginInput) (*service.LoginResult, error) {
		return svc.Auth.Login(c.Request.Context(), *in)
	}
	for _, p := range []string{"/login", "/auth/login"} {
		httpez.RegisterAction(public, httpez.Action[service.LoginInput, *service.LoginResult]{
			Method:  http.MethodPost,
			Path:    p,
			Binder:  httpez.BindJSON,
			Handler: login,
		})
	}

	httpez.RegisterAction(authed, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/profile",
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return svc.Users.Get(c.Request.Context(), mdw.CurrentUser(c).ID)
		},
	})
}
