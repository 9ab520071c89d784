// Package monitoring holds the process-wide diagnostic logger.
package monitoring

import (
	"fmt"
	"log"
)

// Logf receives every diagnostic emitted by the rigidify packages, including
// deprecation warnings. It defaults to log.Printf.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger redirects diagnostics to f. A nil f discards them.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Capture redirects diagnostics into a slice until the returned restore
// function is called. Intended for tests.
func Capture() (lines *[]string, restore func()) {
	prev := Logf
	var out []string
	Logf = func(format string, v ...interface{}) {
		out = append(out, fmt.Sprintf(format, v...))
	}
	return &out, func() { Logf = prev }
}
