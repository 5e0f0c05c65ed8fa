package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ConsoleLogger is a simple, leveled logging engine writing one line per message.
type ConsoleLogger struct {
	level     Level
	out       io.Writer
	colorized bool
	mutex     sync.Mutex
}

// levelColors maps each level to the color of its label on a terminal.
var levelColors = map[Level]*color.Color{
	Debug: color.New(color.FgCyan),
	Info:  color.New(color.FgGreen),
	Warn:  color.New(color.FgYellow),
	Error: color.New(color.FgRed, color.Bold),
}

// NewConsoleLogger creates a logger writing to standard output, limited to the specified level.
// Only log messages that are less verbose than the specified level are logged. Level labels are
// colorized when standard output is a terminal.
func NewConsoleLogger(level Level) Logger {
	return NewWriterLogger(level, os.Stdout)
}

// NewWriterLogger creates a logger writing to out, limited to the specified level.
func NewWriterLogger(level Level, out io.Writer) Logger {
	colorized := false
	if f, ok := out.(*os.File); ok {
		colorized = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return &ConsoleLogger{
		level:     level,
		out:       out,
		colorized: colorized,
	}
}

// Debug logs a debug message, if permitted by the current level.
func (l *ConsoleLogger) Debug(format string, v ...interface{}) {
	l.log(Debug, format, v...)
}

// Info logs an informational message, if permitted by the current level.
func (l *ConsoleLogger) Info(format string, v ...interface{}) {
	l.log(Info, format, v...)
}

// Warn logs a warning message, if permitted by the current level.
func (l *ConsoleLogger) Warn(format string, v ...interface{}) {
	l.log(Warn, format, v...)
}

// Error logs an error message, if permitted by the current level.
func (l *ConsoleLogger) Error(format string, v ...interface{}) {
	l.log(Error, format, v...)
}

// Level reads the current logging level.
func (l *ConsoleLogger) Level() Level {
	return l.level
}

// log writes a message with a timestamp and level indicator, if permitted by the current level.
func (l *ConsoleLogger) log(level Level, format string, v ...interface{}) {
	if !l.level.Enables(level) {
		return
	}

	label := level.String()
	if l.colorized {
		label = levelColors[level].Sprint(label)
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	fmt.Fprintf(
		l.out,
		"%s %s\t%s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		label,
		fmt.Sprintf(format, v...),
	)
}
