// Package config 配置管理单元测试
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithDefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "kitchen-pos-backend", cfg.Server.Name)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 3, cfg.Business.OrderNumberRetries)
	assert.Equal(t, 12, cfg.Business.PasswordLength)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 3600, cfg.Scheduler.RepairInterval)
}

func TestLoad_WithConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "test_config.yaml")
	content := `
server:
  name: "test-server"
  port: 9000
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	// sync.Once 下可能返回之前加载的配置，但不应该出错
	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)
}

func TestGet_ReturnsSameInstance(t *testing.T) {
	cfg1 := Get()
	cfg2 := Get()
	assert.Same(t, cfg1, cfg2)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		d := DatabaseConfig{
			Driver:   "postgres",
			Host:     "db.example.com",
			Port:     5433,
			User:     "admin",
			Password: "secret",
			Name:     "pos",
			SSLMode:  "require",
			Timezone: "UTC",
		}
		assert.Equal(t, "host=db.example.com port=5433 user=admin password=secret dbname=pos sslmode=require TimeZone=UTC", d.DSN())
	})

	t.Run("sqlite", func(t *testing.T) {
		d := DatabaseConfig{Driver: "sqlite", SQLitePath: "/tmp/pos.db"}
		assert.Equal(t, "/tmp/pos.db", d.DSN())
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}

func TestJWTConfig_Durations(t *testing.T) {
	j := JWTConfig{AccessTokenExpire: 2, RefreshTokenExpire: 48}
	assert.Equal(t, 2*time.Hour, j.AccessTokenDuration())
	assert.Equal(t, 48*time.Hour, j.RefreshTokenDuration())
}

func TestBusinessConfig_Location(t *testing.T) {
	t.Run("空时区回退UTC", func(t *testing.T) {
		b := BusinessConfig{}
		assert.Equal(t, time.UTC, b.Location())
	})

	t.Run("无效时区回退UTC", func(t *testing.T) {
		b := BusinessConfig{Timezone: "Not/AZone"}
		assert.Equal(t, time.UTC, b.Location())
	})

	t.Run("有效时区", func(t *testing.T) {
		b := BusinessConfig{Timezone: "Asia/Shanghai"}
		assert.Equal(t, "Asia/Shanghai", b.Location().String())
	})
}

func TestConfig_Mode(t *testing.T) {
	c := &Config{Server: ServerConfig{Mode: "release"}}
	assert.True(t, c.IsRelease())
	assert.False(t, (&Config{Server: ServerConfig{Mode: "debug"}}).IsRelease())
}

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Mode: "debug"},
		Database: DatabaseConfig{Driver: "postgres"},
		JWT:      JWTConfig{Secret: defaultJWTSecret},
		Business: BusinessConfig{Timezone: "Europe/Rome", TaxRate: 0.1},
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"未知数据库驱动", func(c *Config) { c.Database.Driver = "mysql" }},
		{"发布模式使用默认密钥", func(c *Config) { c.Server.Mode = "release" }},
		{"税率超出范围", func(c *Config) { c.Business.TaxRate = 1 }},
		{"负税率", func(c *Config) { c.Business.TaxRate = -0.1 }},
		{"无效时区", func(c *Config) { c.Business.Timezone = "Mars/Olympus" }},
		{"启用OSS缺少bucket", func(c *Config) { c.OSS.Enabled = true }},
		{"启用短信缺少模板", func(c *Config) { c.SMS = SMSConfig{Enabled: true, SignName: "Trattoria"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.modify(c)
			assert.Error(t, c.Validate())
		})
	}

	t.Run("发布模式自定义密钥", func(t *testing.T) {
		c := validConfig()
		c.Server.Mode = "release"
		c.JWT.Secret = "s3cr3t"
		assert.NoError(t, c.Validate())
	})
}
