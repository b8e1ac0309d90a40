// Package notify delivers user-facing toasts about board persistence.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Level is the severity shown on a toast.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is one toast.
type Notification struct {
	Board   string    `json:"board"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Sink receives toasts. Notify must not block.
type Sink interface {
	Notify(board string, level Level, message string)
}

// Multi fans a toast out to several sinks in order.
type Multi []Sink

func (m Multi) Notify(board string, level Level, message string) {
	for _, s := range m {
		s.Notify(board, level, message)
	}
}

// Logger writes toasts to a zap logger.
type Logger struct {
	log *zap.Logger
}

func NewLogger(log *zap.Logger) *Logger {
	return &Logger{log: log.Named("notify")}
}

func (l *Logger) Notify(board string, level Level, message string) {
	fields := []zap.Field{zap.String("board", board), zap.String("message", message)}
	if level == LevelError {
		l.log.Warn("board notification", fields...)
		return
	}
	l.log.Info("board notification", fields...)
}

// DefaultFeedSize is the number of toasts a Feed keeps per board.
const DefaultFeedSize = 20

// Feed keeps the most recent toasts of every board so polling clients can
// display them. It is safe for concurrent use.
type Feed struct {
	mu    sync.RWMutex
	size  int
	items map[string][]Notification
	now   func() time.Time
}

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{
		size:  size,
		items: make(map[string][]Notification),
		now:   time.Now,
	}
}

func (f *Feed) Notify(board string, level Level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := append(f.items[board], Notification{
		Board:   board,
		Level:   level,
		Message: message,
		At:      f.now().UTC(),
	})
	if len(list) > f.size {
		list = list[len(list)-f.size:]
	}
	f.items[board] = list
}

// Recent returns the toasts of a board, oldest first.
func (f *Feed) Recent(board string) []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Notification, len(f.items[board]))
	copy(out, f.items[board])
	return out
}
