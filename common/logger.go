package common

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// LogLevel 日志级别
type LogLevel string

// 日志级别
const (
	Debug    LogLevel = "debug"
	Info     LogLevel = "info"
	Warn     LogLevel = "warn"
	Error    LogLevel = "error"
	Critical LogLevel = "critical"
)

// 运行环境
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

func (p LogLevel) zapLevel() (zapcore.Level, bool) {
	switch LogLevel(strings.ToLower(string(p))) {
	case Debug:
		return zapcore.DebugLevel, true
	case Info:
		return zapcore.InfoLevel, true
	case Warn:
		return zapcore.WarnLevel, true
	case Error:
		return zapcore.ErrorLevel, true
	case Critical:
		return zapcore.DPanicLevel, true
	}
	return zapcore.InfoLevel, false
}

// Logger 日志接口
type Logger interface {
	Debugf(format string, params ...interface{})
	DebugEnabled() bool
	Infof(format string, params ...interface{})
	InfoEnabled() bool
	Warnf(format string, params ...interface{})
	WarnEnabled() bool
	Errorf(format string, params ...interface{})
	ErrorEnabled() bool
	Criticalf(format string, params ...interface{})
	SetLevel(level LogLevel)
	Sync()
}

var (
	loggerMu sync.RWMutex
	logger   Logger = NewZapLogger(&LogConfig{Env: EnvDevelopment})
)

func currentLogger() Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger replaces the global logger
func SetLogger(l Logger) {
	if l == nil {
		return
	}
	loggerMu.Lock()
	pre := logger
	logger = l
	loggerMu.Unlock()
	pre.Sync()
}

func initLogger(conf *LogConfig) error {
	if conf == nil {
		return nil
	}
	fmt.Fprintf(os.Stderr, "init logger,env:%s,level:%s,file:%s\n", conf.Env, conf.Level, conf.FileName)
	SetLogger(NewZapLogger(conf))
	return nil
}

// SetLogLevel 设置日志级别,无效的级别重置为info
func SetLogLevel(level LogLevel) {
	if _, ok := level.zapLevel(); !ok {
		level = Info
	}
	currentLogger().SetLevel(level)
}

// Debugf debug
func Debugf(format string, params ...interface{}) {
	currentLogger().Debugf(format, params...)
}

// DebugEnabled debug是否开启
func DebugEnabled() bool {
	return currentLogger().DebugEnabled()
}

// Infof info
func Infof(format string, params ...interface{}) {
	currentLogger().Infof(format, params...)
}

// InfoEnabled info是否开启
func InfoEnabled() bool {
	return currentLogger().InfoEnabled()
}

// Warnf warn
func Warnf(format string, params ...interface{}) {
	currentLogger().Warnf(format, params...)
}

// Errorf error
func Errorf(format string, params ...interface{}) {
	currentLogger().Errorf(format, params...)
}

// ErrorEnabled error是否开启
func ErrorEnabled() bool {
	return currentLogger().ErrorEnabled()
}

// Criticalf critical
func Criticalf(format string, params ...interface{}) {
	currentLogger().Criticalf(format, params...)
}

// Logf 按指定的级别输出日志
func Logf(level LogLevel, format string, params ...interface{}) {
	l := currentLogger()
	switch level {
	case Debug:
		l.Debugf(format, params...)
	case Warn:
		l.Warnf(format, params...)
	case Error:
		l.Errorf(format, params...)
	case Critical:
		l.Criticalf(format, params...)
	default:
		l.Infof(format, params...)
	}
}

// SyncLogger flush缓冲的日志
func SyncLogger() {
	currentLogger().Sync()
}
