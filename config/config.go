package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
	Scheduling SchedulingConfig `mapstructure:"scheduling"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int        `mapstructure:"port"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// 支持的数据库驱动
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// DatabaseConfig 数据库配置（默认 MySQL，兼容 PostgreSQL）
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"` // 仅 PostgreSQL
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
	ConnectTimeout  int    `mapstructure:"connect_timeout"`    // 建连超时（秒）
	QueryTimeout    int    `mapstructure:"query_timeout"`      // 读写超时（秒）
}

// DSN 按驱动生成连接字符串
//
// MySQL 固定 parseTime=true&loc=UTC，时间统一按 UTC 存取；
// clientFoundRows=true 让 UPDATE 返回匹配行数而非变更行数，
// 仓储层依赖该语义区分"记录不存在"和"字段未变化"。
func (c *DatabaseConfig) DSN() string {
	switch c.Driver {
	case DriverPostgres:
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC connect_timeout=%d",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.ConnectTimeout,
		)
	default:
		params := url.Values{}
		params.Set("charset", "utf8mb4")
		params.Set("parseTime", "true")
		params.Set("loc", "UTC")
		params.Set("clientFoundRows", "true")
		params.Set("multiStatements", "true") // 迁移文件含多条语句
		params.Set("timeout", fmt.Sprintf("%ds", c.ConnectTimeout))
		params.Set("readTimeout", fmt.Sprintf("%ds", c.QueryTimeout))
		params.Set("writeTimeout", fmt.Sprintf("%ds", c.QueryTimeout))
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			c.User, c.Password, c.Host, c.Port, c.Name, params.Encode())
	}
}

// RedisConfig Redis 配置（限流与 Token 黑名单，可选）
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SchedulingConfig 排班与请假策略配置
type SchedulingConfig struct {
	Timezone               string `mapstructure:"timezone"`
	UpcomingDays           int    `mapstructure:"upcoming_days"`
	AttentionDays          int    `mapstructure:"attention_days"`
	BlockLeaveOverlaps     bool   `mapstructure:"block_leave_overlaps"`
	BlockScheduleConflicts bool   `mapstructure:"block_schedule_conflicts"`
	ICSHorizonWeeks        int    `mapstructure:"ics_horizon_weeks"`
}

// Location 返回排班时区；Validate 已保证可解析
func (c *SchedulingConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RateLimitConfig 写接口限流配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值；工作目录下的 .env 会先注入环境变量
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_bytes", 5<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.driver", DriverMySQL)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.name", "school_management")
	v.SetDefault("db.user", "root")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 60)  // 60分钟
	v.SetDefault("db.conn_max_idle_time", 30) // 30分钟
	v.SetDefault("db.connect_timeout", 30)
	v.SetDefault("db.query_timeout", 60)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.issuer", "e-library-log")
	v.SetDefault("auth.access_token_ttl", "24h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("scheduling.timezone", "UTC")
	v.SetDefault("scheduling.upcoming_days", 7)
	v.SetDefault("scheduling.attention_days", 3)
	v.SetDefault("scheduling.block_leave_overlaps", false)
	v.SetDefault("scheduling.block_schedule_conflicts", false)
	v.SetDefault("scheduling.ics_horizon_weeks", 20)

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", "1m")

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
	v.SetEnvPrefix("SAMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
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
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("配置校验失败: db.driver 仅支持 mysql / postgres，当前为 %q", c.Database.Driver)
	}
	if _, err := time.LoadLocation(c.Scheduling.Timezone); err != nil {
		return fmt.Errorf("配置校验失败: scheduling.timezone 无效: %w", err)
	}
	if c.Scheduling.UpcomingDays <= 0 {
		return fmt.Errorf("配置校验失败: scheduling.upcoming_days 必须大于 0")
	}
	return nil
}
