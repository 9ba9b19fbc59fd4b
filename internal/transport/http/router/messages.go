package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"drivepro-backend/internal/domain"
	"drivepro-backend/internal/service"
	httpez "drivepro-backend/internal/transport/http/ez"
	mdw "drivepro-backend/internal/transport/http/middleware"
)

// messages 与 notifications 共用同一份通知记录
func mountMessageActions(ez *httpez.EZ, svc *service.Services) {
	post := func(c *gin.Context, in *service.PostInput) (*domain.Notification, error) {
		return svc.Notifications.Post(c.Request.Context(), mdw.CurrentUser(c), *in)
	}
	list := func(c *gin.Context, _ *struct{}) ([]domain.Notification, error) {
		return svc.Notifications.List(c.Request.Context(), mdw.CurrentUser(c))
	}
	for _, p := range []string{"/messages", "/notifications"} {
		httpez.RegisterAction(ez, httpez.Action[service.PostInput, *domain.Notification]{
			Method:  http.MethodPost,
			Path:    p,
			Binder:  httpez.BindJSON,
			Status:  http.StatusCreated,
			Roles:   everyone,
			Handler: post,
		})
		httpez.RegisterAction(ez, httpez.Action[struct{}, []domain.Notification]{
			Method:  http.MethodGet,
			Path:    p,
			Roles:   everyone,
			Handler: list,
		})
	}
}
