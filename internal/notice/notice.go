package notice

import "time"

// Level mirrors the severity of a transient user-facing notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

// Notice is one toast shown to the user.
type Notice struct {
	ID      int
	Level   Level
	Message string
	At      time.Time
}

// Notifier surfaces transient notices. Implementations must not block.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) {
	f(level, message)
}

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(Level, string) {})
