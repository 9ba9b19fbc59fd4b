package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"drivepro-backend/internal/core/auth"
	"drivepro-backend/internal/core/cache"
	"drivepro-backend/internal/core/config"
	"drivepro-backend/internal/core/database"
	"drivepro-backend/internal/core/logger"
	"drivepro-backend/internal/core/server"
	"drivepro-backend/internal/repo"
	"drivepro-backend/internal/seed"
	"drivepro-backend/internal/service"
	"drivepro-backend/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad("")

	log, cleanup := logger.Build(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: !cfg.Log.JSON,
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.File.Enable,
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	defer cleanup()
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	repos, rdb, closeRepos := mustOpenRepos(cfg, log)
	defer closeRepos()

	codec := &auth.Codec{
		Mode:   cfg.Auth.Mode,
		Secret: []byte(cfg.Auth.Secret),
		Issuer: cfg.Auth.Issuer,
		TTL:    time.Duration(cfg.Auth.TokenTTLMin) * time.Minute,
	}
	if cfg.WeakSecret() {
		log.Warn("auth.secret is empty or the public default, tokens can be forged; set APP_AUTH_SECRET")
	}
	if strings.EqualFold(codec.Mode, auth.ModeNone) {
		log.Warn("auth.mode=none: tokens are unsigned and can be forged")
	}

	var opts []service.Option
	if rdb != nil && cfg.Stats.CacheTTLSec > 0 {
		opts = append(opts, service.WithStatsCache(cache.New(rdb), time.Duration(cfg.Stats.CacheTTLSec)*time.Second))
	}
	svc := service.New(repos, codec, log, opts...)

	if cfg.App.SeedDemo {
		seeded, err := seed.Demo(context.Background(), repos, time.Now())
		if err != nil {
			log.Fatal("seed demo data failed", zap.Error(err))
		}
		if seeded {
			log.Info("demo data seeded", zap.String("password", seed.DemoPassword))
		}
	}

	r := router.NewAPIEngine(router.Deps{
		Log:       log,
		Svc:       svc,
		Limits:    cfg.Limits,
		PublicDir: cfg.App.PublicDir,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("drivepro api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
		zap.String("store", storeName(cfg)),
		zap.String("authMode", cfg.Auth.Mode),
	)

	// 异步启动
	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("drivepro api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("drivepro api stopped gracefully")
}

func storeName(cfg *config.Config) string {
	if cfg.DB.Driver == "" {
		return "memory"
	}
	return cfg.DB.Driver
}

// mustOpenRepos db.driver 为空时全部走内存；配置了 redis 时通知日志写 redis
func mustOpenRepos(cfg *config.Config, l *zap.Logger) (service.Repos, *redis.Client, func()) {
	repos := service.Repos{
		Users:         repo.NewMemoryUserRepo(),
		Lessons:       repo.NewMemoryLessonRepo(),
		Notifications: repo.NewMemoryNotificationRepo(),
	}
	closers := []func(){}

	if cfg.DB.Driver != "" {
		w, err := logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel)
		if err != nil {
			l.Fatal("gorm logger", zap.Error(err))
		}
		db, err := database.NewGorm(database.Opts{
			Driver:             cfg.DB.Driver,
			DSN:                cfg.DB.DSN,
			Username:           cfg.DB.Username,
			Password:           cfg.DB.Password,
			MaxOpenConns:       cfg.DB.MaxOpenConns,
			MaxIdleConns:       cfg.DB.MaxIdleConns,
			ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
			LogLevel:           cfg.DB.LogLevel,
			Writer:             w,
		})
		if err != nil {
			l.Fatal("db open", zap.Error(err))
		}
		l.Info("database connected", zap.String("driver", cfg.DB.Driver))
		if cfg.DB.AutoMigrate {
			if err := repo.AutoMigrate(db); err != nil {
				l.Fatal("automigrate failed", zap.Error(err))
			}
			l.Info("automigrate done")
		}
		repos.Users = repo.NewGormUserRepo(db)
		repos.Lessons = repo.NewGormLessonRepo(db)
		repos.Notifications = repo.NewGormNotificationRepo(db)
		if sqlDB, err := db.DB(); err == nil {
			closers = append(closers, func() { _ = sqlDB.Close() })
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			l.Fatal("redis ping", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
		repos.Notifications = repo.NewRedisNotificationRepo(rdb, repo.DefaultNotificationsKey)
		closers = append(closers, func() { _ = rdb.Close() })
	}

	return repos, rdb, func() {
		for _, c := range closers {
			c()
		}
	}
}
