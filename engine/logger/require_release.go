//go:build !debug

package logger

// DebugAssertions is false in release builds; failed requirements are logged.
const DebugAssertions = false
