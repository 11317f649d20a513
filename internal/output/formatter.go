package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// separator frames the header of every external process run.
var separator = strings.Repeat("=", 79)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgCyan, color.Bold)
)

var (
	mu  sync.Mutex
	out io.Writer
)

// SetOutput redirects console output. A nil writer restores stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// Writer returns the current console writer.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	if out == nil {
		return color.Output
	}
	return out
}

// Banner prints header between two separator lines.
func Banner(header string) {
	w := Writer()
	fmt.Fprintln(w, separator)
	_, _ = headerColor.Fprintln(w, header)
	fmt.Fprintln(w, separator)
}

// ExitCode prints the exit status line that closes a process run.
func ExitCode(name string, code int) {
	w := Writer()
	c := successColor
	if code != 0 {
		c = errorColor
	}
	_, _ = c.Fprintf(w, "%s exit code %d\n", name, code)
	fmt.Fprintln(w)
}

// Success prints a success message
func Success(format string, args ...interface{}) {
	_, _ = successColor.Fprintf(Writer(), "✓ "+format+"\n", args...)
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	_, _ = errorColor.Fprintf(Writer(), "✗ "+format+"\n", args...)
}

// Warn prints a warning message
func Warn(format string, args ...interface{}) {
	_, _ = warnColor.Fprintf(Writer(), "! "+format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	_, _ = infoColor.Fprintf(Writer(), "→ "+format+"\n", args...)
}

// Print prints a plain message
func Print(format string, args ...interface{}) {
	fmt.Fprintf(Writer(), format+"\n", args...)
}
