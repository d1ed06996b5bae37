// Package progress defines the progress/diagnostic event stream shared by
// every pipeline component. Components never print; they emit events into a
// caller-supplied sink (CLI printer, TUI log pane, test recorder).
package progress

import "fmt"

// Level indicates the severity/type of a progress message.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// Event represents a single progress update.
type Event struct {
	Message string
	Level   Level
}

// Func is a sink for progress events. A nil Func discards everything.
type Func func(Event)

// Emit sends a message to the sink. Safe to call on a nil Func.
func (f Func) Emit(level Level, format string, args ...any) {
	if f == nil {
		return
	}
	f(Event{Message: fmt.Sprintf(format, args...), Level: level})
}
