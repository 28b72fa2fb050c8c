package common

import (
	"fmt"
	"github.com/lni/dragonboat/v4/logger"
	"log"
	"os"
	"strings"
)

// LoggerNames are the package loggers configured by InitLoggers
var LoggerNames = []string{
	"rpc",
	"rpc/client",
	"rpc/server",
	"transport/amqp",
	"transport/memory",
}

// --------------------------------------------------------------------------
// Line Logger
// --------------------------------------------------------------------------

// mqLogger writes one line per entry: timestamp, level, package and message.
// It is installed as the dragonboat logger.ILogger of every package logger.
type mqLogger struct {
	name   string
	level  logger.LogLevel
	logger *log.Logger
}

// levelNames are the labels of the log levels in the output
var levelNames = map[logger.LogLevel]string{
	logger.DEBUG:   "DEBUG",
	logger.INFO:    "INFO",
	logger.WARNING: "WARN",
	logger.ERROR:   "ERROR",
}

func (l *mqLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *mqLogger) Debugf(format string, args ...interface{}) {
	l.logf(logger.DEBUG, format, args...)
}

func (l *mqLogger) Infof(format string, args ...interface{}) {
	l.logf(logger.INFO, format, args...)
}

func (l *mqLogger) Warningf(format string, args ...interface{}) {
	l.logf(logger.WARNING, format, args...)
}

func (l *mqLogger) Errorf(format string, args ...interface{}) {
	l.logf(logger.ERROR, format, args...)
}

// Panicf panics regardless of the level
func (l *mqLogger) Panicf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// logf writes the entry with fixed width level and package columns if level is enabled
func (l *mqLogger) logf(level logger.LogLevel, format string, args ...interface{}) {
	if l.level < level {
		return
	}
	l.logger.Printf("%-5s | %-16s | %s", levelNames[level], l.name, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Factory
// --------------------------------------------------------------------------

// CreateLogger returns a stdout logger for pkgName, starting at level info
func CreateLogger(pkgName string) logger.ILogger {
	stdLogger := log.New(os.Stdout, "", log.Ldate|log.Ltime)

	return &mqLogger{
		name:   pkgName,
		level:  logger.INFO,
		logger: stdLogger,
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel maps a --log-level value to a logger.LogLevel. The empty string means info.
func ParseLogLevel(level string) (logger.LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logger.DEBUG, nil
	case "info", "":
		return logger.INFO, nil
	case "warning", "warn":
		return logger.WARNING, nil
	case "error":
		return logger.ERROR, nil
	default:
		return logger.INFO, fmt.Errorf("unknown log level %q (use debug, info, warn or error)", level)
	}
}

// InitLoggers installs the custom logger factory and sets all package loggers to level
func InitLoggers(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	logger.SetLoggerFactory(CreateLogger)

	for _, name := range LoggerNames {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
