package logs

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat/go-file-rotatelogs"
	"github.com/mgutz/ansi"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"medals_reward/config"
)

const (
	logFileName     = "medals_reward.log"
	logRotationTime = 24 * time.Hour
	logMaxAge       = 30 * 24 * time.Hour
	logTimeFormat   = "2006-01-02 15:04:05"
)

var (
	logger  *logrus.Logger
	logOnce sync.Once
)

type consoleFormatter struct {
	colored bool
}

func (f *consoleFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	level := entry.Level.String()
	if f.colored {
		switch entry.Level {
		case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
			level = ansi.Color(level, "red")
		case logrus.WarnLevel:
			level = ansi.Color(level, "yellow")
		case logrus.InfoLevel:
			level = ansi.Color(level, "green")
		default:
			level = ansi.Color(level, "cyan")
		}
	}
	line := fmt.Sprintf("[%s] %s %s\n", entry.Time.Format(logTimeFormat), level, entry.Message)
	return []byte(line), nil
}

// StartLogService creates the service logger: leveled console output plus a
// daily-rotated log file when a log path is configured.
func StartLogService() (*logrus.Logger, error) {
	l := logrus.New()
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&consoleFormatter{colored: true})

	logPath := config.GetLogOutputPath()
	if len(logPath) > 0 {
		writer, err := rotatelogs.New(
			filepath.Join(logPath, logFileName)+".%Y%m%d",
			rotatelogs.WithLinkName(filepath.Join(logPath, logFileName)),
			rotatelogs.WithRotationTime(logRotationTime),
			rotatelogs.WithMaxAge(logMaxAge),
		)
		if err != nil {
			return nil, fmt.Errorf("fail to create rotate log writer, the error is %v", err)
		}
		l.AddHook(lfshook.NewHook(
			lfshook.WriterMap{
				logrus.DebugLevel: writer,
				logrus.InfoLevel:  writer,
				logrus.WarnLevel:  writer,
				logrus.ErrorLevel: writer,
				logrus.FatalLevel: writer,
				logrus.PanicLevel: writer,
			},
			&logrus.TextFormatter{TimestampFormat: logTimeFormat},
		))
	}
	logger = l
	return logger, nil
}

// GetLogger returns the service logger, falling back to a plain console
// logger when the log service was never started.
func GetLogger() *logrus.Logger {
	if logger == nil {
		logOnce.Do(func() {
			if logger == nil {
				l := logrus.New()
				l.SetFormatter(&consoleFormatter{colored: true})
				logger = l
			}
		})
	}
	return logger
}
