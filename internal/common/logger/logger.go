// Package logger 提供结构化日志功能
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dumeirei/kitchen-pos-backend/internal/common/config"
)

// 输出目标
const (
	OutputStdout = "stdout"
	OutputFile   = "file"
	OutputBoth   = "both"
)

var log *zap.Logger

// Init 按配置初始化全局日志器
// output 为 file 或 both 时必须配置 file_path，文件由 lumberjack 轮转
func Init(cfg *config.LoggerConfig) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00"),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	writers, err := buildWriters(cfg)
	if err != nil {
		return err
	}
	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(writers...), level)

	options := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Caller {
		options = append(options, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	log = zap.New(core, options...)
	return nil
}

func buildWriters(cfg *config.LoggerConfig) ([]zapcore.WriteSyncer, error) {
	output := strings.ToLower(cfg.Output)
	if output == "" {
		output = OutputStdout
	}

	var writers []zapcore.WriteSyncer
	switch output {
	case OutputStdout, OutputFile, OutputBoth:
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}
	if output != OutputFile {
		writers = append(writers, zapcore.AddSync(os.Stdout))
	}
	if output != OutputStdout {
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("log output %q requires file_path", output)
		}
		writers = append(writers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}))
	}
	return writers, nil
}

// parseLevel 空值视为 info
func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return l, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// GetLogger 获取全局日志器，未初始化时返回开发模式日志器
func GetLogger() *zap.Logger {
	if log == nil {
		log, _ = zap.NewDevelopment()
	}
	return log
}

// SetLogger 替换全局日志器，测试中用于捕获日志
func SetLogger(l *zap.Logger) {
	log = l
}

// Sync 刷新缓冲
func Sync() error {
	if log != nil {
		return log.Sync()
	}
	return nil
}

func Debug(msg string, fields ...zap.Field) { GetLogger().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { GetLogger().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { GetLogger().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { GetLogger().Error(msg, fields...) }

// With 返回带有固定字段的日志器
func With(fields ...zap.Field) *zap.Logger {
	return GetLogger().With(fields...)
}

// 常用字段构造函数
var (
	String   = zap.String
	Int      = zap.Int
	Int64    = zap.Int64
	Uint64   = zap.Uint64
	Float64  = zap.Float64
	Bool     = zap.Bool
	Any      = zap.Any
	Err      = zap.Error
	Duration = zap.Duration
	Time     = zap.Time
)

// RequestID 请求ID字段
func RequestID(id string) zap.Field {
	return zap.String("request_id", id)
}

// AccountID 身份账号ID字段
func AccountID(id int64) zap.Field {
	return zap.Int64("account_id", id)
}

// Role 调用方角色字段
func Role(role string) zap.Field {
	return zap.String("role", role)
}

// RestaurantID 餐厅ID字段
func RestaurantID(id int64) zap.Field {
	return zap.Int64("restaurant_id", id)
}

// RevenueCenterID 营业点ID字段
func RevenueCenterID(id int64) zap.Field {
	return zap.Int64("revenue_center_id", id)
}

// OrderID 订单ID字段
func OrderID(id int64) zap.Field {
	return zap.Int64("order_id", id)
}

// OrderNumber 订单号字段
func OrderNumber(no string) zap.Field {
	return zap.String("order_number", no)
}

// CustomerID 顾客ID字段
func CustomerID(id int64) zap.Field {
	return zap.Int64("customer_id", id)
}

// Email 邮箱字段
func Email(email string) zap.Field {
	return zap.String("email", email)
}

// Action 操作字段
func Action(name string) zap.Field {
	return zap.String("action", name)
}

// Latency 延迟字段
func Latency(d time.Duration) zap.Field {
	return zap.Duration("latency", d)
}

// Method HTTP方法字段
func Method(method string) zap.Field {
	return zap.String("method", method)
}

// Path 路径字段
func Path(path string) zap.Field {
	return zap.String("path", path)
}

