package cascade

import (
	"github.com/sirupsen/logrus"
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows a transient message to the user. It must not block.
type Notifier interface {
	Notify(level Level, message string)
}

type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) {
	f(level, message)
}

// LogNotifier writes notifications as log lines.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n LogNotifier) Notify(level Level, message string) {
	entry := n.Logger.WithField("notification", level.String())
	if level == LevelError {
		entry.Error(message)
		return
	}
	entry.Info(message)
}

func notifierOrDiscard(n Notifier) Notifier {
	if n == nil {
		return NotifierFunc(func(Level, string) {})
	}
	return n
}
