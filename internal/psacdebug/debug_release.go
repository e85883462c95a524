//go:build psac_release

package psacdebug

// Enabled reports whether assertions are compiled in.
const Enabled = false

// Assert is a no-op in release builds.
func Assert(cond bool, msg string) {}

// Assertf is a no-op in release builds.
func Assertf(cond bool, format string, args ...any) {}
