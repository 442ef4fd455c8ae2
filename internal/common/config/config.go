// Package config 提供应用配置管理功能
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	globalConfig *Config
	once         sync.Once
)

const defaultJWTSecret = "your-super-secret-key-change-in-production"

// envOnlyKeys 没有默认值、通常只经环境变量注入的配置项
// AutomaticEnv 只覆盖已知的键，这些键需要显式绑定
var envOnlyKeys = []string{
	"database.password",
	"redis.password",
	"mqtt.username",
	"mqtt.password",
	"oss.access_key_id",
	"oss.access_key_secret",
	"oss.bucket",
	"sms.access_key_id",
	"sms.access_key_secret",
	"sms.sign_name",
	"sms.order_ready_template",
}

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OSS       OSSConfig       `mapstructure:"oss"`
	SMS       SMSConfig       `mapstructure:"sms"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Business  BusinessConfig  `mapstructure:"business"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Name            string `mapstructure:"name"`
	Mode            string `mapstructure:"mode"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // postgres, sqlite
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Name            string `mapstructure:"name"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	LogMode         bool   `mapstructure:"log_mode"`
	SlowThreshold   int    `mapstructure:"slow_threshold"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// DSN 返回数据库连接字符串
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode, d.Timezone,
	)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  int    `mapstructure:"dial_timeout"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// Addr 返回 Redis 地址
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MQTTConfig 后厨显示屏 MQTT 配置
type MQTTConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Broker         string `mapstructure:"broker"`
	ClientIDPrefix string `mapstructure:"client_id_prefix"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	KeepAlive      int    `mapstructure:"keep_alive"`
	AutoReconnect  bool   `mapstructure:"auto_reconnect"`
	ConnectTimeout int    `mapstructure:"connect_timeout"`
	QoS            byte   `mapstructure:"qos"`
	Retained       bool   `mapstructure:"retained"`
	TopicPrefix    string `mapstructure:"topic_prefix"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	AccessTokenExpire  int    `mapstructure:"access_token_expire"`
	RefreshTokenExpire int    `mapstructure:"refresh_token_expire"`
	Issuer             string `mapstructure:"issuer"`
}

// AccessTokenDuration 返回访问令牌有效期
func (j *JWTConfig) AccessTokenDuration() time.Duration {
	return time.Duration(j.AccessTokenExpire) * time.Hour
}

// RefreshTokenDuration 返回刷新令牌有效期
func (j *JWTConfig) RefreshTokenDuration() time.Duration {
	return time.Duration(j.RefreshTokenExpire) * time.Hour
}

// OSSConfig 对象存储配置（菜品图片）
type OSSConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	Bucket          string `mapstructure:"bucket"`
	CustomDomain    string `mapstructure:"custom_domain"`
	UploadDir       string `mapstructure:"upload_dir"`
}

// SMSConfig 短信配置（取餐提醒）
type SMSConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	AccessKeyID        string `mapstructure:"access_key_id"`
	AccessKeySecret    string `mapstructure:"access_key_secret"`
	SignName           string `mapstructure:"sign_name"`
	Endpoint           string `mapstructure:"endpoint"`
	OrderReadyTemplate string `mapstructure:"order_ready_template"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	Caller     bool   `mapstructure:"caller"`
}

// MetricsConfig 监控配置
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// TracingConfig 链路追踪配置
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Limit   int  `mapstructure:"limit"`
	Window  int  `mapstructure:"window"` // 秒
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SchedulerConfig 定时任务配置，间隔与超时单位为秒
type SchedulerConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RepairInterval int  `mapstructure:"repair_interval"` // 0 表示不执行店主账号巡检
	TaskTimeout    int  `mapstructure:"task_timeout"`
}

// BusinessConfig 业务配置
type BusinessConfig struct {
	Timezone           string  `mapstructure:"timezone"`
	TaxRate            float64 `mapstructure:"tax_rate"` // 未显式传入税额时按该税率计算
	OrderNumberRetries int     `mapstructure:"order_number_retries"`
	PasswordLength     int     `mapstructure:"password_length"`
	DomainCacheTTL     int     `mapstructure:"domain_cache_ttl"` // 秒
}

// Location 返回营业时区，解析失败时回退到 UTC
func (b *BusinessConfig) Location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	var err error
	once.Do(func() {
		// .env 只是开发便利，不存在时忽略
		if _, statErr := os.Stat(".env"); statErr == nil {
			_ = godotenv.Load()
		}

		v := viper.New()

		if configPath != "" {
			v.SetConfigFile(configPath)
		} else {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath("./configs")
			v.AddConfigPath(".")
		}

		v.AutomaticEnv()
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

		setDefaults(v)
		for _, key := range envOnlyKeys {
			_ = v.BindEnv(key)
		}

		if err = v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return
			}
			err = nil
		}

		cfg := &Config{}
		if err = v.Unmarshal(cfg); err != nil {
			return
		}
		if err = cfg.Validate(); err != nil {
			return
		}
		globalConfig = cfg
	})

	return globalConfig, err
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		globalConfig = &Config{}
		v := viper.New()
		setDefaults(v)
		_ = v.Unmarshal(globalConfig)
	}
	return globalConfig
}

// defaults 按配置段组织的默认值，键相对于所在段
var defaults = map[string]map[string]interface{}{
	"server": {
		"name": "kitchen-pos-backend", "mode": "debug", "port": 8000,
		"read_timeout": 30, "write_timeout": 30, "shutdown_timeout": 10,
		"public_base_url": "http://localhost:3000/menu",
	},
	"database": {
		"driver": "postgres", "host": "localhost", "port": 5432,
		"user": "postgres", "password": "postgres", "name": "kitchen_pos",
		"sslmode": "disable", "timezone": "UTC", "sqlite_path": "kitchen_pos.db",
		"max_idle_conns": 10, "max_open_conns": 100, "conn_max_lifetime": 60,
		"log_mode": true, "slow_threshold": 200, "auto_migrate": true,
	},
	"redis": {
		"enabled": true, "host": "localhost", "port": 6379, "db": 0,
		"pool_size": 100, "min_idle_conns": 10,
		"dial_timeout": 5, "read_timeout": 3, "write_timeout": 3,
	},
	"mqtt": {
		"enabled": false, "broker": "tcp://localhost:1883", "client_id_prefix": "kitchen-pos-",
		"keep_alive": 60, "auto_reconnect": true, "connect_timeout": 10,
		"qos": 1, "retained": false, "topic_prefix": "kitchen-pos/",
	},
	"jwt": {
		"secret": defaultJWTSecret, "issuer": "kitchen-pos",
		"access_token_expire": 12, "refresh_token_expire": 720,
	},
	"oss": {"enabled": false, "upload_dir": "menu-items/"},
	"sms": {"enabled": false, "endpoint": "dysmsapi.aliyuncs.com"},
	"logger": {
		"level": "debug", "format": "console", "output": "stdout",
		"file_path": "./logs/app.log", "max_size": 100, "max_backups": 10,
		"max_age": 30, "compress": true, "caller": true,
	},
	"metrics":   {"enabled": true, "namespace": "kitchen_pos", "path": "/metrics"},
	"tracing":   {"enabled": false, "service_name": "kitchen-pos-backend", "sample_rate": 1.0},
	"ratelimit": {"enabled": true, "limit": 20, "window": 60},
	"cors": {
		"allowed_origins":   []string{"*"},
		"allowed_methods":   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		"allowed_headers":   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		"exposed_headers":   []string{"X-Request-ID"},
		"allow_credentials": true,
		"max_age":           86400,
	},
	"business": {
		"timezone": "UTC", "tax_rate": 0, "order_number_retries": 3,
		"password_length": 12, "domain_cache_ttl": 300,
	},
	"scheduler": {"enabled": false, "repair_interval": 3600, "task_timeout": 300},
}

func setDefaults(v *viper.Viper) {
	for section, values := range defaults {
		for key, value := range values {
			v.SetDefault(section+"."+key, value)
		}
	}
}

// IsRelease 是否为发布模式
func (c *Config) IsRelease() bool {
	return c.Server.Mode == "release"
}

// Validate 校验配置组合，发布模式下拒绝默认密钥
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.IsRelease() && (c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret) {
		return fmt.Errorf("jwt.secret must be set in release mode")
	}
	if c.Business.TaxRate < 0 || c.Business.TaxRate >= 1 {
		return fmt.Errorf("business.tax_rate must be in [0, 1), got %v", c.Business.TaxRate)
	}
	if c.Business.Timezone != "" {
		if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
			return fmt.Errorf("business.timezone: %w", err)
		}
	}
	if c.OSS.Enabled && c.OSS.Bucket == "" {
		return fmt.Errorf("oss.bucket is required when oss is enabled")
	}
	if c.SMS.Enabled && (c.SMS.SignName == "" || c.SMS.OrderReadyTemplate == "") {
		return fmt.Errorf("sms.sign_name and sms.order_ready_template are required when sms is enabled")
	}
	return nil
}
