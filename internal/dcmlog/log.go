// Package dcmlog centralizes the recoverable-warning side channel used
// throughout parsing and writing: mismatched BitsAllocated/VR, a missing
// BitsAllocated, unsupported or multi-valued character sets,
// compressed-but-not-encapsulated pixel data, and invalid VRs on write are
// all logged here rather than surfaced as errors. No
// buffer-not-fully-consumed warning exists: the parser reads elements until
// the buffer ends, and an element that runs past the end is an OutOfBounds
// error.
package dcmlog

import "log/slog"

// Warn logs a recoverable condition. Parsing/writing continues.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Debug logs verbose tracing, off by default.
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}
