package ez

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"drivepro-backend/internal/domain"
	mdw "drivepro-backend/internal/transport/http/middleware"
	resp "drivepro-backend/internal/transport/http/response"
)

type Binder int

const (
	BindNone Binder = iota
	BindJSON
	BindQuery
)

// Action 一个接口 = 输入类型 + 处理函数，绑定/鉴权/错误映射由 ez 统一处理
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Status  int           // 成功状态码，默认 200；204 不写响应体
	Roles   []domain.Role // 非空时要求登录用户属于其中之一
	Handler func(c *gin.Context, in *I) (O, error)
}

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) *EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return &EZ{g: g, log: l}
}

func RegisterAction[I any, O any](ez *EZ, a Action[I, O]) {
	handlers := make([]gin.HandlerFunc, 0, 2)
	if len(a.Roles) > 0 {
		handlers = append(handlers, mdw.RequireAnyRole(a.Roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		in := new(I)
		if err := bind(c, a.Binder, in); err != nil {
			if mdw.IsBodyTooLarge(err) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, resp.Status(http.StatusRequestEntityTooLarge))
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, resp.Message(resp.MsgBadBody))
			return
		}

		out, err := a.Handler(c, in)
		if err != nil {
			code, body := resp.FromError(err)
			if code >= http.StatusInternalServerError {
				ez.log.Error("handler failed",
					zap.String("method", a.Method), zap.String("path", a.Path), zap.Error(err))
				_ = c.Error(err)
			}
			c.AbortWithStatusJSON(code, body)
			return
		}

		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		if status == http.StatusNoContent {
			c.Status(status)
			return
		}
		c.JSON(status, out)
	})
	ez.g.Handle(a.Method, a.Path, handlers...)
}

func bind(c *gin.Context, b Binder, in any) error {
	switch b {
	case BindJSON:
		// 空 body 按 {} 处理
		if err := c.ShouldBindJSON(in); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	case BindQuery:
		return c.ShouldBindQuery(in)
	}
	return nil
}
