package router

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"drivepro-backend/internal/core/config"
	"drivepro-backend/internal/core/server"
	"drivepro-backend/internal/service"
	httpez "drivepro-backend/internal/transport/http/ez"
	mdw "drivepro-backend/internal/transport/http/middleware"
	resp "drivepro-backend/internal/transport/http/response"
)

type Deps struct {
	Log       *zap.Logger
	Svc       *service.Services
	Limits    config.Limits
	PublicDir string // 空则不托管静态资源
}

func NewAPIEngine(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := server.NewRouter(d.Log)

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(d.Limits.RPS), d.Limits.Burst),
		mdw.ConcurrencyLimit(d.Limits.Concurrency),
		mdw.MaxBodyBytes(d.Limits.MaxBodyBytes),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "DrivePro backend is running"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	authed := api.Group("")
	authed.Use(mdw.Authenticate(d.Svc.Auth))

	mountAuthActions(httpez.New(api, d.Log), httpez.New(authed, d.Log), d.Svc)
	mountAdminActions(httpez.New(authed, d.Log), d.Svc)
	mountLessonActions(httpez.New(authed, d.Log), d.Svc)
	mountMessageActions(httpez.New(authed, d.Log), d.Svc)

	r.NoRoute(notFound(d.PublicDir))
	return r
}

// notFound /api 下一律 JSON 404，其余路径先尝试静态目录
func notFound(publicDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if publicDir != "" && !strings.HasPrefix(p, "/api/") && p != "/api" &&
			(c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead) {
			if f, ok := staticFile(publicDir, p); ok {
				c.File(f)
				return
			}
		}
		c.JSON(http.StatusNotFound, resp.Message(resp.MsgRouteNotFound))
	}
}

func staticFile(dir, urlPath string) (string, bool) {
	name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+urlPath)))
	fi, err := os.Stat(name)
	if err != nil {
		return "", false
	}
	if fi.IsDir() {
		name = filepath.Join(name, "index.html")
		if fi, err = os.Stat(name); err != nil || fi.IsDir() {
			return "", false
		}
	}
	return name, true
}
