package logger

import (
	"fmt"
)

// Require checks an internal invariant. When cond is false, debug builds (built with
// -tags debug) panic, release builds log the failure at error level.
//
// Parameters:
//   - cond: the invariant that must hold
//   - msg: description of the invariant
//   - keyvals: structured context appended to the log entry
//
// Returns:
//   - bool: cond, so callers can skip the offending item in release builds
func Require(cond bool, msg string, keyvals ...any) bool {
	if cond {
		return true
	}
	if DebugAssertions {
		panic(fmt.Sprintf("requirement failed: %s %v", msg, keyvals))
	}
	l := get()
	l.Helper()
	l.Error("requirement failed: "+msg, keyvals...)
	return false
}
