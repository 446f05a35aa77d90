package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gamerzord/latihan-magang-lms/config"
)

const serviceName = "lms-api"

// NewLogger 根据配置初始化 Zap 日志实例
// Error 及以上写 stderr，其余写 stdout
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	return build(cfg, zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr))
}

func build(cfg *config.LogConfig, out, errOut zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}

	var encoder zapcore.Encoder
	switch cfg.Format {
	case "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(ec)
	case "json", "":
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "time"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		ec.EncodeDuration = zapcore.MillisDurationEncoder
		encoder = zapcore.NewJSONEncoder(ec)
	default:
		return nil, fmt.Errorf("无效的日志格式 %q", cfg.Format)
	}

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= level && l < zapcore.ErrorLevel })
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= level && l >= zapcore.ErrorLevel })

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, out, low),
		zapcore.NewCore(encoder.Clone(), errOut, high),
	)

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	).With(zap.String("service", serviceName)), nil
}
