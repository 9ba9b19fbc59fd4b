package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name      string
	Env       string
	PublicDir string // 前端静态资源目录，空则不托管
	SeedDemo  bool
	HTTP      HTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type Auth struct {
	Mode        string // hs256 | none
	Secret      string
	Issuer      string
	TokenTTLMin int // 0 不过期
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// DB Driver 为空时使用内存存储
type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Stats struct {
	CacheTTLSec int
}

type Limits struct {
	RPS          float64
	Burst        int
	Concurrency  int64
	MaxBodyBytes int64
}

type Config struct {
	App    App
	Log    Log
	Auth   Auth
	DB     DB
	Redis  Redis `mapstructure:"redis"`
	Stats  Stats
	Limits Limits
}

// DefaultSecret 仓库里公开的占位密钥，prod 环境禁止使用
const DefaultSecret = "change-me"

var ErrWeakSecret = errors.New("auth.secret is empty or the public default; set APP_AUTH_SECRET")

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "drivepro")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.publicDir", "")
	v.SetDefault("app.seedDemo", true)
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 4000)
	v.SetDefault("app.http.readTimeoutSec", 10)
	v.SetDefault("app.http.writeTimeoutSec", 10)
	v.SetDefault("app.http.idleTimeoutSec", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/drivepro.log")
	v.SetDefault("log.file.maxSizeMB", 50)
	v.SetDefault("log.file.maxBackups", 5)
	v.SetDefault("log.file.maxAgeDays", 14)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("auth.mode", "hs256")
	v.SetDefault("auth.secret", DefaultSecret)
	v.SetDefault("auth.issuer", "drivepro")
	v.SetDefault("auth.tokenTTLMin", 0)

	v.SetDefault("db.driver", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("stats.cacheTTLSec", 0)

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.concurrency", 300)
	v.SetDefault("limits.maxBodyBytes", 1<<20)
}

// Load 读取顺序：默认值 < yaml 文件 < APP_ 前缀环境变量；PORT 覆盖监听端口。
// path 为空时依次尝试 CONFIG_PATH 与 ./configs/config.local.yaml，文件不存在则只用默认值。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("app.http.port", "APP_APP_HTTP_PORT", "PORT")

	if _, err := os.Stat(path); err != nil && !explicit && errors.Is(err, os.ErrNotExist) {
		log.Printf("config file %s not found, using defaults", path)
	} else if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// WeakSecret hs256 模式下密钥为空或仍是默认值，任何读过仓库的人都能伪造 token
func (c *Config) WeakSecret() bool {
	if strings.EqualFold(c.Auth.Mode, "none") {
		return false
	}
	return c.Auth.Secret == "" || c.Auth.Secret == DefaultSecret
}

func (c *Config) Validate() error {
	if c.App.Env == "prod" && c.WeakSecret() {
		return ErrWeakSecret
	}
	return nil
}

func MustLoad(path string) *Config {
	c, err := Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}
