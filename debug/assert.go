//go:build debug

package debug

import "fmt"

// Guard assertions that do work of their own with `if debug.Enabled {...}`,
// otherwise release builds keep paying for them.
const Enabled = true

func Assert(b bool, message string) {
	if !b {
		panic(message)
	}
}

func AssertErrNil(err error) {
	if err != nil {
		panic(err)
	}
}

func AssertRange(v, n int, what string) {
	if v < 0 || v >= n {
		panic(fmt.Sprintf("%s: %d out of range [0,%d)", what, v, n))
	}
}
