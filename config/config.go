package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Log       LogConfig       `mapstructure:"log"`
	Janitor   JanitorConfig   `mapstructure:"janitor"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	BaseURL      string     `mapstructure:"base_url"`
	Timezone     string     `mapstructure:"timezone"`       // 截止日期仅给出日期时按该时区的当日结束计算
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"` // 非上传接口的请求体上限
	CORS         CORSConfig `mapstructure:"cors"`
}

// Location 返回业务时区，解析失败时回退 UTC
func (c *ServerConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（Token 黑名单、登录限流）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
	UserCookieName  string        `mapstructure:"user_cookie_name"`
	AdminCookieName string        `mapstructure:"admin_cookie_name"`
	Cookie          CookieConfig  `mapstructure:"cookie"`
	CSRF            CSRFConfig    `mapstructure:"csrf"`
}

// CookieConfig Cookie 安全配置
type CookieConfig struct {
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"`
	Domain   string `mapstructure:"domain"`
}

// SameSiteMode 解析 same_site 配置，大小写不敏感，未知值回退为浏览器默认
func (c CookieConfig) SameSiteMode() http.SameSite {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteDefaultMode
	}
}

// CSRFConfig 双重提交 Cookie 校验配置
type CSRFConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	CookieName string `mapstructure:"cookie_name"`
	HeaderName string `mapstructure:"header_name"`
}

// StorageConfig 文件存储配置
type StorageConfig struct {
	Driver         string      `mapstructure:"driver"` // local | oss | b2
	MaxUploadBytes int64       `mapstructure:"max_upload_bytes"`
	Local          LocalConfig `mapstructure:"local"`
	OSS            OSSConfig   `mapstructure:"oss"`
	B2             B2Config    `mapstructure:"b2"`
}

// LocalConfig 本地磁盘存储
type LocalConfig struct {
	Root      string `mapstructure:"root"`
	PublicURL string `mapstructure:"public_url"`
}

// OSSConfig 阿里云 OSS 存储
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	Bucket          string `mapstructure:"bucket"`
	PublicURL       string `mapstructure:"public_url"`
}

// B2Config Backblaze B2 存储
type B2Config struct {
	AccountID string `mapstructure:"account_id"`
	AppKey    string `mapstructure:"app_key"`
	Bucket    string `mapstructure:"bucket"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// JanitorConfig 孤儿文件清理任务配置
type JanitorConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Spec    string        `mapstructure:"spec"`  // cron 表达式
	Grace   time.Duration `mapstructure:"grace"` // 新上传文件的保护期，避免误删尚未落库的文件
	DryRun  bool          `mapstructure:"dry_run"`
}

// RateLimitConfig 登录限流配置
type RateLimitConfig struct {
	LoginLimit  int           `mapstructure:"login_limit"`
	LoginWindow time.Duration `mapstructure:"login_window"`
}

// Load 从 .env、配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("读取 .env 失败: %w", err)
	}

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.timezone", "UTC")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "lms")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.token_ttl", "168h")
	v.SetDefault("auth.user_cookie_name", "auth-token")
	v.SetDefault("auth.admin_cookie_name", "admin-auth-token")
	v.SetDefault("auth.cookie.secure", true)
	v.SetDefault("auth.cookie.same_site", "None")
	v.SetDefault("auth.csrf.enabled", true)
	v.SetDefault("auth.csrf.cookie_name", "XSRF-TOKEN")
	v.SetDefault("auth.csrf.header_name", "X-XSRF-TOKEN")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.max_upload_bytes", 10<<20)
	v.SetDefault("storage.local.root", "./storage/app/public")
	v.SetDefault("storage.local.public_url", "http://localhost:8000/storage")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("janitor.enabled", false)
	v.SetDefault("janitor.spec", "30 3 * * *")
	v.SetDefault("janitor.grace", "24h")
	v.SetDefault("janitor.dry_run", false)

	v.SetDefault("rate_limit.login_limit", 10)
	v.SetDefault("rate_limit.login_window", "1m")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("LMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("配置校验失败: auth.token_ttl 必须大于 0")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Storage.Driver {
	case "local", "oss", "b2":
	default:
		return fmt.Errorf("配置校验失败: 不支持的 storage.driver %q", c.Storage.Driver)
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("配置校验失败: storage.max_upload_bytes 必须大于 0")
	}
	return nil
}
