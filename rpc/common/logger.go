package common

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/lni/dragonboat/v4/logger"
)

// --------------------------------------------------------------------------
// Custom Logger (implements dragonboats logger.ILogger)
// --------------------------------------------------------------------------

// dynLogger implements the ILogger interface with custom formatting
type dynLogger struct {
	name   string
	level  logger.LogLevel
	logger *log.Logger
}

func (l *dynLogger) SetLevel(level logger.LogLevel) {
	l.level = level
}

func (l *dynLogger) Debugf(format string, args ...interface{}) {
	if l.level >= logger.DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *dynLogger) Infof(format string, args ...interface{}) {
	if l.level >= logger.INFO {
		l.log("INFO", format, args...)
	}
}

func (l *dynLogger) Warningf(format string, args ...interface{}) {
	if l.level >= logger.WARNING {
		l.log("WARN", format, args...)
	}
}

func (l *dynLogger) Errorf(format string, args ...interface{}) {
	if l.level >= logger.ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *dynLogger) Panicf(format string, args ...interface{}) {
	if l.level >= logger.CRITICAL {
		panic(fmt.Sprintf(format, args...))
	}
}

// log formats and writes a log message
func (l *dynLogger) log(levelStr string, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("%-5s | %-15s | %s", levelStr, l.name, message)
}

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

// CreateLogger implements the logger.Factory interface.
// Logs go to stderr so command output on stdout stays machine readable.
func CreateLogger(pkgName string) logger.ILogger {
	stdLogger := log.New(os.Stderr, "", log.Ldate|log.Ltime)

	return &dynLogger{
		name:   pkgName,
		level:  logger.INFO,
		logger: stdLogger,
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// ParseLogLevel converts a string level to logger.LogLevel
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
		return 0, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// loggerNames lists every logger of the application
var loggerNames = []string{
	"recordstore",
	"slot",
	"command",
	"rpc",
	"transport/rpc",
	"cli",
}

// InitLoggers installs the custom log format and sets the level of all loggers
func InitLoggers(level string) error {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return err
	}

	logger.SetLoggerFactory(CreateLogger)

	for _, name := range loggerNames {
		logger.GetLogger(name).SetLevel(lvl)
	}
	return nil
}
