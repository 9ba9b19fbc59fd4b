package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"drivepro-backend/internal/domain"
	"drivepro-backend/internal/service"
	httpez "drivepro-backend/internal/transport/http/ez"
	mdw "drivepro-backend/internal/transport/http/middleware"
)

var (
	staff    = []domain.Role{domain.RoleAdmin, domain.RoleInstructor}
	everyone = []domain.Role{domain.RoleAdmin, domain.RoleInstructor, domain.RoleStudent}
)

func mountLessonActions(ez *httpez.EZ, svc *service.Services) {
	ls := svc.Lessons

	httpez.RegisterAction(ez, httpez.Action[struct{}, []domain.LessonView]{
		Method: http.MethodGet,
		Path:   "/lessons",
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.LessonView, error) {
			return ls.List(c.Request.Context(), mdw.CurrentUser(c))
		},
	})
	httpez.RegisterAction(ez, httpez.Action[service.CreateLessonInput, *domain.LessonView]{
		Method: http.MethodPost,
		Path:   "/lessons",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Roles:  staff,
		Handler: func(c *gin.Context, in *service.CreateLessonInput) (*domain.LessonView, error) {
			return ls.Create(c.Request.Context(), mdw.CurrentUser(c), *in)
		},
	})
	httpez.RegisterAction(ez, httpez.Action[service.BookLessonInput, *domain.LessonView]{
		Method: http.MethodPost,
		Path:   "/lessons/book",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Roles:  everyone,
		Handler: func(c *gin.Context, in *service.BookLessonInput) (*domain.LessonView, error) {
			return ls.Book(c.Request.Context(), mdw.CurrentUser(c), *in)
		},
	})
	httpez.RegisterAction(ez, httpez.Action[service.UpdateLessonInput, *domain.LessonView]{
		Method: http.MethodPut,
		Path:   "/lessons/:id",
		Binder: httpez.BindJSON,
		Roles:  staff,
		Handler: func(c *gin.Context, in *service.UpdateLessonInput) (*domain.LessonView, error) {
			return ls.Update(c.Request.Context(), mdw.CurrentUser(c), c.Param("id"), *in)
		},
	})
	httpez.RegisterAction(ez, httpez.Action[service.AttendanceInput, *domain.LessonView]{
		Method: http.MethodPost,
		Path:   "/lessons/:id/attendance",
		Binder: httpez.BindJSON,
		Roles:  staff,
		Handler: func(c *gin.Context, in *service.AttendanceInput) (*domain.LessonView, error) {
			return ls.MarkAttendance(c.Request.Context(), mdw.CurrentUser(c), c.Param("id"), *in)
		},
	})
	httpez.RegisterAction(ez, httpez.Action[struct{}, struct{}]{
		Method: http.MethodDelete,
		Path:   "/lessons/:id",
		Status: http.StatusNoContent,
		Roles:  everyone,
		Handler: func(c *gin.Context, _ *struct{}) (struct{}, error) {
			return struct{}{}, ls.Delete(c.Request.Context(), mdw.CurrentUser(c), c.Param("id"))
		},
	})
}
