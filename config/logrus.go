package config

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var logg = newLogger()

func GetLogger() *logrus.Logger {
	return logg
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.ErrorLevel)
	// LOG_LEVEL takes any logrus level name; anything else keeps errors only
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if level, err := logrus.ParseLevel(raw); err == nil {
			l.SetLevel(level)
		}
	}
	return l
}

// LogError writes one structured error line. data is omitted when nil.
func LogError(l *logrus.Logger, module string, funcName string, context string, data any, err error) {
	fields := logrus.Fields{
		"module":   module,
		"funcName": funcName,
		"context":  context,
	}
	if data != nil {
		fields["data"] = data
	}
	l.WithFields(fields).Error(err.Error())
}
