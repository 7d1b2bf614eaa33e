package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/palemoky/cartas-online/internal/config"
)

var (
	log     = logrus.New()
	logFile *os.File
)

// Init 根据配置初始化日志：级别、格式，以及可选的日志文件
func Init(cfg config.LogConfig) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	switch cfg.Format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if cfg.File == "" {
		log.SetOutput(os.Stdout)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	Close()
	logFile = f
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return nil
}

// Close 关闭日志文件
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// L 返回全局 logger
func L() *logrus.Logger {
	return log
}

// SetOutput 替换输出（测试用）
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// WithRoom 带房间号的日志条目
func WithRoom(code string) *logrus.Entry {
	return log.WithField("room", code)
}

// WithPlayer 带房间号和玩家的日志条目
func WithPlayer(code, playerID string) *logrus.Entry {
	return log.WithFields(logrus.Fields{"room": code, "player": playerID})
}

// LogInfo logs an info message
func LogInfo(format string, args ...any) {
	log.Infof(format, args...)
}

// LogError logs an error message
func LogError(format string, args ...any) {
	log.Errorf(format, args...)
}

// LogPanic logs a panic with stack trace
func LogPanic(r any) {
	log.WithField("stack", string(debug.Stack())).Errorf("panic: %v", r)
}
