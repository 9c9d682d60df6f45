package notify

import "go.uber.org/zap"

// Notifier is the user-visible notification channel every mutation reports
// through (the toast equivalent). This is a UX contract, not logging: a
// mutation must surface exactly one success or failure message.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Log is a Notifier backed by zap, used by headless entry points (CLI
// commands) where no toast surface exists.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger.Named("notify")}
}

func (l *Log) Success(msg string) { l.logger.Info(msg) }
func (l *Log) Error(msg string)   { l.logger.Warn(msg) }

// Func adapts two callbacks into a Notifier (the TUI wires its status line
// this way).
type Func struct {
	OnSuccess func(string)
	OnError   func(string)
}

func (f Func) Success(msg string) {
	if f.OnSuccess != nil {
		f.OnSuccess(msg)
	}
}

func (f Func) Error(msg string) {
	if f.OnError != nil {
		f.OnError(msg)
	}
}
