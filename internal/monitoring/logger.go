// Package monitoring holds the process-wide diagnostic logger used around
// room model builds.
package monitoring

import (
	"log"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Timed logs how long a stage of component took. Use it as
//
//	defer monitoring.Timed("roommodel", "plane map")()
func Timed(component, stage string) func() {
	start := time.Now()
	return func() {
		Logf("[%s] %s took %s", component, stage, time.Since(start).Round(time.Microsecond))
	}
}
