// Package logger 日志模块单元测试
package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit_ConsoleFormat(t *testing.T) {
	err := Init(&config.LoggerConfig{Level: "debug", Format: "console", Output: "stdout", Caller: true})
	require.NoError(t, err)
	assert.NotNil(t, GetLogger())
}

func TestInit_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggerConfig
	}{
		{"未知级别", config.LoggerConfig{Level: "verbose"}},
		{"未知输出", config.LoggerConfig{Output: "syslog"}},
		{"文件输出缺少路径", config.LoggerConfig{Output: OutputBoth}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, Init(&tt.cfg))
		})
	}
}

func TestInit_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")
	err := Init(&config.LoggerConfig{
		Level:      "info",
		Format:     "json",
		Output:     "file",
		FilePath:   logFile,
		MaxSize:    1,
		MaxBackups: 1,
		MaxAge:     1,
	})
	require.NoError(t, err)

	Info("order created", OrderNumber("20240101-0001"))
	_ = Sync()

	_, err = os.Stat(logFile)
	assert.NoError(t, err)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"":      zapcore.InfoLevel,
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	} {
		got, err := parseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestDomainFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))

	With(RestaurantID(7), RevenueCenterID(3)).Info("status changed",
		OrderID(42),
		OrderNumber("20240101-0002"),
		CustomerID(9),
		Role("manager"),
	)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, int64(7), fields["restaurant_id"])
	assert.Equal(t, int64(3), fields["revenue_center_id"])
	assert.Equal(t, int64(42), fields["order_id"])
	assert.Equal(t, "20240101-0002", fields["order_number"])
	assert.Equal(t, int64(9), fields["customer_id"])
	assert.Equal(t, "manager", fields["role"])
}
