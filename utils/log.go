package utils

import (
	"fmt"
	"io"
	"log"
	"sync/atomic"

	"github.com/fatih/color"
)

var (
	verbose atomic.Bool

	infoLabel  = color.New(color.FgGreen, color.Bold).Sprint("INFO")
	warnLabel  = color.New(color.FgYellow, color.Bold).Sprint("WARN")
	errorLabel = color.New(color.FgRed, color.Bold).Sprint("ERROR")
	debugLabel = color.New(color.FgCyan).Sprint("DEBUG")
)

// SetVerbose turns Debugf output on or off.
func SetVerbose(v bool) {
	verbose.Store(v)
}

// SetLogOutput redirects all leveled logging.
func SetLogOutput(w io.Writer) {
	log.SetOutput(w)
}

// Infof logs an info message.
func Infof(format string, args ...any) {
	log.Printf("%s %s", infoLabel, fmt.Sprintf(format, args...))
}

// Warnf logs a warning message.
func Warnf(format string, args ...any) {
	log.Printf("%s %s", warnLabel, fmt.Sprintf(format, args...))
}

// Errorf logs an error message.
func Errorf(format string, args ...any) {
	log.Printf("%s %s", errorLabel, fmt.Sprintf(format, args...))
}

// Debugf logs only when verbose output is on.
func Debugf(format string, args ...any) {
	if !verbose.Load() {
		return
	}
	log.Printf("%s %s", debugLabel, fmt.Sprintf(format, args...))
}
