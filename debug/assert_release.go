//go:build !debug

// Package debug provides assertions that are compiled in with the debug build
// tag and are no-ops otherwise.
//
// The control ROM has no console to report a broken invariant on, so
// assertions are a development aid for the simulator and the tests only.
package debug

// Guard assertions that do work of their own with `if debug.Enabled {...}`,
// otherwise release builds keep paying for them.
const Enabled = false

// Assert panics if b is false.
func Assert(b bool, message string) {}

// AssertErrNil panics if err is not nil.
func AssertErrNil(err error) {}

// AssertRange panics if v is not in [0,n).
func AssertRange(v, n int, what string) {}
