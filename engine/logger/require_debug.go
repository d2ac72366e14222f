//go:build debug

package logger

// DebugAssertions is true when built with the debug tag; failed requirements panic.
const DebugAssertions = true
